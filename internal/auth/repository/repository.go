package repository

import (
	"time"

	authdomain "mailbrief-backend/internal/auth/domain"
)

// UserRepository defines the interface for user credential operations
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByID(id string) (*authdomain.User, error)
	FindByGoogleID(googleID string) (*authdomain.User, error)
	FindByEmail(email string) (*authdomain.User, error)
	Update(user *authdomain.User) error
	// UpdateTokens overwrites the encrypted access token and expiry after a refresh.
	UpdateTokens(id, encryptedAccessToken string, expiry time.Time) error
	// MarkSummarySent records the date of the user's most recent summary.
	MarkSummarySent(id string, date time.Time) error
	// FindEligibleForSummary returns active, summary-enabled users whose
	// credential has not expired as of now.
	FindEligibleForSummary(now time.Time) ([]*authdomain.User, error)
	// FindTokenExpiringWithin returns users whose token expiry falls before
	// now+lookahead, i.e. credentials that need a refresh soon.
	FindTokenExpiringWithin(now time.Time, lookahead time.Duration) ([]*authdomain.User, error)
}
