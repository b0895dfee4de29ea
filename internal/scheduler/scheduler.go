package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"mailbrief-backend/pkg/config"

	"github.com/robfig/cron/v3"
)

// SummaryJob runs the daily summary sweep.
type SummaryJob interface {
	GenerateAll(ctx context.Context)
}

// RefreshJob runs the token refresh sweep.
type RefreshJob interface {
	RefreshAll(ctx context.Context)
}

// Scheduler owns the cron instance driving both recurring jobs. Cron
// expressions are evaluated in the configured timezone so the daily
// summary fires at local morning, not UTC morning.
type Scheduler struct {
	cron       *cron.Cron
	summaryJob SummaryJob
	refreshJob RefreshJob
	config     *config.Config
}

// NewScheduler creates a new Scheduler
func NewScheduler(summaryJob SummaryJob, refreshJob RefreshJob, cfg *config.Config) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %v", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		summaryJob: summaryJob,
		refreshJob: refreshJob,
		config:     cfg,
	}, nil
}

// Start registers both jobs and starts the cron loop in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.SummaryCron, func() {
		log.Println("[Scheduler] Running daily summary job")
		s.summaryJob.GenerateAll(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid summary cron %q: %v", s.config.SummaryCron, err)
	}

	if _, err := s.cron.AddFunc(s.config.TokenRefreshCron, func() {
		log.Println("[Scheduler] Running token refresh job")
		s.refreshJob.RefreshAll(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid token refresh cron %q: %v", s.config.TokenRefreshCron, err)
	}

	s.cron.Start()
	log.Printf("[Scheduler] Started: summaries %q, token refresh %q (%s)",
		s.config.SummaryCron, s.config.TokenRefreshCron, s.config.Timezone)
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] Stopped")
}
