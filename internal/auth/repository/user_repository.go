package repository

import (
	"errors"
	"time"

	authdomain "mailbrief-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *authdomain.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.LastLogin = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(googleID string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.Save(user).Error
}

func (r *userRepository) UpdateTokens(id, encryptedAccessToken string, expiry time.Time) error {
	return r.db.Model(&authdomain.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token_encrypted": encryptedAccessToken,
		"token_expiry":           expiry,
		"updated_at":             time.Now(),
	}).Error
}

func (r *userRepository) MarkSummarySent(id string, date time.Time) error {
	return r.db.Model(&authdomain.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_summary_sent": date,
		"updated_at":        time.Now(),
	}).Error
}

func (r *userRepository) FindEligibleForSummary(now time.Time) ([]*authdomain.User, error) {
	var users []*authdomain.User
	err := r.db.
		Where("is_active = ? AND summary_enabled = ? AND token_expiry > ?", true, true, now).
		Order("created_at").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindTokenExpiringWithin(now time.Time, lookahead time.Duration) ([]*authdomain.User, error) {
	var users []*authdomain.User
	err := r.db.
		Where("token_expiry < ?", now.Add(lookahead)).
		Order("token_expiry").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
