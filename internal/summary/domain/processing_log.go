package domain

import (
	"time"

	authdomain "mailbrief-backend/internal/auth/domain"
)

// Processing log actions and statuses
const (
	ActionEmailSummary = "email_summary"
	ActionTokenRefresh = "token_refresh"

	LogStatusSuccess = "success"
	LogStatusFailed  = "failed"
)

// ProcessingLog is an append-only record of pipeline outcomes, kept for
// diagnosis only. The user reference is nullable so entries survive user
// deletion. Rows are never updated or read back by the pipeline.
type ProcessingLog struct {
	ID           string           `json:"id" gorm:"primaryKey"`
	UserID       *string          `json:"user_id" gorm:"index"`
	User         *authdomain.User `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Action       string           `json:"action" gorm:"not null"`
	Status       string           `json:"status" gorm:"not null"`
	Metadata     string           `json:"metadata" gorm:"type:jsonb;default:'{}'"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ProcessingLog) TableName() string {
	return "processing_logs"
}
