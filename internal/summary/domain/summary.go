package domain

import (
	"time"

	authdomain "mailbrief-backend/internal/auth/domain"
)

// Summary status values
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DailySummary is one generated digest of a user's unread mail for one
// calendar day. The (user_id, summary_date) unique index is the only
// mechanism preventing duplicate summaries; every writer must go through it.
type DailySummary struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	UserID       string          `json:"user_id" gorm:"uniqueIndex:idx_user_summary_date;not null"`
	User         authdomain.User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SummaryDate  time.Time       `json:"summary_date" gorm:"type:date;uniqueIndex:idx_user_summary_date;not null"`
	EmailCount   int             `json:"email_count" gorm:"default:0"`
	SummaryText  string          `json:"summary_text" gorm:"type:text;not null"`
	Status       string          `json:"status" gorm:"default:'pending'"`
	ErrorMessage string          `json:"error_message,omitempty"`
	SentAt       *time.Time      `json:"sent_at"`
	SentVia      string          `json:"sent_via" gorm:"default:'web'"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (DailySummary) TableName() string {
	return "email_summaries"
}

// EmailDigest is the reduced representation of one unread message handed to
// the summarizer. Body is plain text, already truncated by the fetcher.
type EmailDigest struct {
	MessageID  string    `json:"message_id"`
	ThreadID   string    `json:"thread_id"`
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	Snippet    string    `json:"snippet"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}
