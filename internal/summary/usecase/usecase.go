package usecase

import (
	"context"

	summarydomain "mailbrief-backend/internal/summary/domain"
)

// MailFetcher retrieves unread-message digests with a decrypted access token.
// Implemented by pkg/gmail (REST) and pkg/imapfetch (IMAP).
type MailFetcher interface {
	GetUnreadMessages(ctx context.Context, email, accessToken string, maxResults int64) ([]*summarydomain.EmailDigest, error)
}

// Summarizer turns a bounded list of digests into a short summary text.
type Summarizer interface {
	SummarizeDigests(ctx context.Context, digests []*summarydomain.EmailDigest) (string, error)
}

// TokenDecrypter decrypts stored credential values.
type TokenDecrypter interface {
	Decrypt(encrypted string) (string, error)
}

// SummaryUsecase is the daily summary pipeline.
type SummaryUsecase interface {
	// GenerateForUser runs the per-user pipeline: skip if today's summary
	// exists, fetch unread mail, summarize, persist exactly one row. Any
	// failure is appended to the processing log and returned; it must never
	// abort other users' runs.
	GenerateForUser(ctx context.Context, userID string) error
	// GenerateAll runs GenerateForUser sequentially for every eligible user.
	GenerateAll(ctx context.Context)
	ListForUser(userID string) ([]*summarydomain.DailySummary, error)
	GetForUser(userID, id string) (*summarydomain.DailySummary, error)
}
