package repository

import (
	"time"

	summarydomain "mailbrief-backend/internal/summary/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// processingLogRepository implements ProcessingLogRepository interface
type processingLogRepository struct {
	db *gorm.DB
}

// NewProcessingLogRepository creates a new instance of processingLogRepository
func NewProcessingLogRepository(db *gorm.DB) ProcessingLogRepository {
	return &processingLogRepository{
		db: db,
	}
}

func (r *processingLogRepository) Append(entry *summarydomain.ProcessingLog) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now()
	if entry.Metadata == "" {
		entry.Metadata = "{}"
	}
	return r.db.Create(entry).Error
}
