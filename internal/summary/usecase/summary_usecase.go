package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	authrepo "mailbrief-backend/internal/auth/repository"
	summarydomain "mailbrief-backend/internal/summary/domain"
	"mailbrief-backend/internal/summary/repository"
)

// summaryUsecase implements SummaryUsecase interface
type summaryUsecase struct {
	userRepo    authrepo.UserRepository
	summaryRepo repository.SummaryRepository
	logRepo     repository.ProcessingLogRepository
	fetcher     MailFetcher
	summarizer  Summarizer
	cipher      TokenDecrypter

	maxMessages int64
	location    *time.Location

	// now is injected so date-boundary behavior is testable.
	now func() time.Time
}

// NewSummaryUsecase creates a new instance of summaryUsecase
func NewSummaryUsecase(
	userRepo authrepo.UserRepository,
	summaryRepo repository.SummaryRepository,
	logRepo repository.ProcessingLogRepository,
	fetcher MailFetcher,
	summarizer Summarizer,
	cipher TokenDecrypter,
	maxMessages int64,
	location *time.Location,
) SummaryUsecase {
	if maxMessages <= 0 {
		maxMessages = 50
	}
	if location == nil {
		location = time.UTC
	}
	return &summaryUsecase{
		userRepo:    userRepo,
		summaryRepo: summaryRepo,
		logRepo:     logRepo,
		fetcher:     fetcher,
		summarizer:  summarizer,
		cipher:      cipher,
		maxMessages: maxMessages,
		location:    location,
		now:         time.Now,
	}
}

func (u *summaryUsecase) GenerateAll(ctx context.Context) {
	users, err := u.userRepo.FindEligibleForSummary(u.now())
	if err != nil {
		log.Printf("[SummaryJob] Error selecting eligible users: %v", err)
		return
	}

	log.Printf("[SummaryJob] Generating summaries for %d users", len(users))

	for _, user := range users {
		// One user's failure must not stop the sweep.
		if err := u.GenerateForUser(ctx, user.ID); err != nil {
			log.Printf("[SummaryJob] Error generating summary for user %s: %v", user.ID, err)
		}
	}

	log.Printf("[SummaryJob] Sweep finished")
}

func (u *summaryUsecase) GenerateForUser(ctx context.Context, userID string) error {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return u.fail(userID, fmt.Sprintf("unable to load user: %v", err))
	}
	if user == nil {
		return u.fail(userID, "user not found")
	}

	today := u.today()

	// Check before any expensive work: one summary per user per day.
	existing, err := u.summaryRepo.FindByUserAndDate(userID, today)
	if err != nil {
		return u.fail(userID, fmt.Sprintf("unable to check existing summary: %v", err))
	}
	if existing != nil {
		log.Printf("[SummaryJob] Summary already exists for user %s today, skipping", userID)
		return nil
	}

	accessToken, err := u.cipher.Decrypt(user.AccessTokenEncrypted)
	if err != nil {
		return u.fail(userID, fmt.Sprintf("unable to decrypt access token: %v", err))
	}

	digests, err := u.fetcher.GetUnreadMessages(ctx, user.Email, accessToken, u.maxMessages)
	if err != nil {
		return u.fail(userID, fmt.Sprintf("unable to fetch unread mail: %v", err))
	}

	if len(digests) == 0 {
		log.Printf("[SummaryJob] No unread emails for user %s, skipping", userID)
		return nil
	}

	summaryText, err := u.summarizer.SummarizeDigests(ctx, digests)
	if err != nil {
		return u.fail(userID, fmt.Sprintf("unable to summarize: %v", err))
	}

	sentAt := u.now()
	summary := &summarydomain.DailySummary{
		UserID:      userID,
		SummaryDate: today,
		EmailCount:  len(digests),
		SummaryText: summaryText,
		Status:      summarydomain.StatusCompleted,
		SentAt:      &sentAt,
		SentVia:     "web",
	}

	if err := u.summaryRepo.Create(summary); err != nil {
		if errors.Is(err, repository.ErrDuplicateSummary) {
			// A concurrent manual trigger won the race; this run becomes a no-op.
			log.Printf("[SummaryJob] Summary for user %s was created concurrently, skipping", userID)
			return nil
		}
		return u.fail(userID, fmt.Sprintf("unable to store summary: %v", err))
	}

	if err := u.userRepo.MarkSummarySent(userID, today); err != nil {
		// The summary row exists; the marker is advisory. Log and move on.
		log.Printf("[SummaryJob] Error updating last summary marker for user %s: %v", userID, err)
	}

	log.Printf("[SummaryJob] Summary generated for user %s (%d emails)", userID, len(digests))
	return nil
}

func (u *summaryUsecase) ListForUser(userID string) ([]*summarydomain.DailySummary, error) {
	return u.summaryRepo.ListByUser(userID)
}

func (u *summaryUsecase) GetForUser(userID, id string) (*summarydomain.DailySummary, error) {
	return u.summaryRepo.FindByID(userID, id)
}

// today returns midnight of the current calendar day in the configured
// timezone, normalized to UTC for the date column.
func (u *summaryUsecase) today() time.Time {
	now := u.now().In(u.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// fail records the failure in the processing log and returns it as an error.
// No summary row is written, so a same-day retry stays possible.
func (u *summaryUsecase) fail(userID, message string) error {
	entry := &summarydomain.ProcessingLog{
		UserID:       &userID,
		Action:       summarydomain.ActionEmailSummary,
		Status:       summarydomain.LogStatusFailed,
		ErrorMessage: message,
	}
	if err := u.logRepo.Append(entry); err != nil {
		log.Printf("[SummaryJob] Error appending processing log for user %s: %v", userID, err)
	}
	return errors.New(message)
}
