package repository

import (
	"errors"
	"time"

	summarydomain "mailbrief-backend/internal/summary/domain"
)

// ErrDuplicateSummary is returned by Create when a summary already exists
// for the same (user, date). Callers treat it as "already done", not a failure.
var ErrDuplicateSummary = errors.New("summary already exists for this user and date")

// SummaryRepository defines the interface for daily summary persistence
type SummaryRepository interface {
	// Create inserts a new summary row. A unique-constraint violation on
	// (user_id, summary_date) is reported as ErrDuplicateSummary.
	Create(summary *summarydomain.DailySummary) error
	FindByUserAndDate(userID string, date time.Time) (*summarydomain.DailySummary, error)
	FindByID(userID, id string) (*summarydomain.DailySummary, error)
	ListByUser(userID string) ([]*summarydomain.DailySummary, error)
}

// ProcessingLogRepository appends pipeline outcome records.
// The log is write-only: there is deliberately no read method.
type ProcessingLogRepository interface {
	Append(entry *summarydomain.ProcessingLog) error
}
