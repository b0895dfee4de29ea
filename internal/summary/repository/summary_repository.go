package repository

import (
	"errors"
	"time"

	summarydomain "mailbrief-backend/internal/summary/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// summaryRepository implements SummaryRepository interface
type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new instance of summaryRepository
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{
		db: db,
	}
}

func (r *summaryRepository) Create(summary *summarydomain.DailySummary) error {
	summary.ID = uuid.New().String()
	summary.CreatedAt = time.Now()
	summary.UpdatedAt = time.Now()
	err := r.db.Create(summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSummary
		}
		return err
	}
	return nil
}

func (r *summaryRepository) FindByUserAndDate(userID string, date time.Time) (*summarydomain.DailySummary, error) {
	var summary summarydomain.DailySummary
	err := r.db.Where("user_id = ? AND summary_date = ?", userID, date.Format("2006-01-02")).First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

func (r *summaryRepository) FindByID(userID, id string) (*summarydomain.DailySummary, error) {
	var summary summarydomain.DailySummary
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

func (r *summaryRepository) ListByUser(userID string) ([]*summarydomain.DailySummary, error) {
	var summaries []*summarydomain.DailySummary
	err := r.db.Where("user_id = ?", userID).Order("summary_date DESC").Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
