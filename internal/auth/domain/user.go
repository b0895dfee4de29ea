package domain

import "time"

type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	GoogleID string `json:"-" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`

	// OAuth tokens are stored AES-GCM encrypted, never in plaintext.
	AccessTokenEncrypted  string    `json:"-" gorm:"type:text;not null"`
	RefreshTokenEncrypted string    `json:"-" gorm:"type:text;not null"`
	TokenExpiry           time.Time `json:"-" gorm:"not null"`

	IsActive             bool       `json:"is_active" gorm:"default:true"`
	SummaryEnabled       bool       `json:"summary_enabled" gorm:"default:true"`
	PreferredSummaryTime string     `json:"preferred_summary_time" gorm:"default:'09:00:00'"`
	Timezone             string     `json:"timezone" gorm:"default:'Asia/Seoul'"`
	EmailNotification    bool       `json:"email_notification" gorm:"default:false"`
	LastSummarySent      *time.Time `json:"last_summary_sent" gorm:"type:date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
