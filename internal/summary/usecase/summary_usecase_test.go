package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	authdomain "mailbrief-backend/internal/auth/domain"
	summarydomain "mailbrief-backend/internal/summary/domain"
	"mailbrief-backend/internal/summary/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeUserRepo struct {
	users       map[string]*authdomain.User
	eligible    []*authdomain.User
	sentMarkers map[string]time.Time
}

func newFakeUserRepo(users ...*authdomain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*authdomain.User{}, sentMarkers: map[string]time.Time{}}
	for _, u := range users {
		r.users[u.ID] = u
		r.eligible = append(r.eligible, u)
	}
	return r
}

func (r *fakeUserRepo) Create(user *authdomain.User) error  { r.users[user.ID] = user; return nil }
func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	return r.users[id], nil
}
func (r *fakeUserRepo) FindByGoogleID(string) (*authdomain.User, error) { return nil, nil }
func (r *fakeUserRepo) FindByEmail(string) (*authdomain.User, error)    { return nil, nil }
func (r *fakeUserRepo) Update(user *authdomain.User) error              { return nil }
func (r *fakeUserRepo) UpdateTokens(string, string, time.Time) error    { return nil }
func (r *fakeUserRepo) MarkSummarySent(id string, date time.Time) error {
	r.sentMarkers[id] = date
	return nil
}
func (r *fakeUserRepo) FindEligibleForSummary(time.Time) ([]*authdomain.User, error) {
	return r.eligible, nil
}
func (r *fakeUserRepo) FindTokenExpiringWithin(time.Time, time.Duration) ([]*authdomain.User, error) {
	return nil, nil
}

type fakeSummaryRepo struct {
	rows []*summarydomain.DailySummary
}

func (r *fakeSummaryRepo) key(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (r *fakeSummaryRepo) Create(s *summarydomain.DailySummary) error {
	for _, row := range r.rows {
		if r.key(row.UserID, row.SummaryDate) == r.key(s.UserID, s.SummaryDate) {
			return repository.ErrDuplicateSummary
		}
	}
	r.rows = append(r.rows, s)
	return nil
}

func (r *fakeSummaryRepo) FindByUserAndDate(userID string, date time.Time) (*summarydomain.DailySummary, error) {
	for _, row := range r.rows {
		if r.key(row.UserID, row.SummaryDate) == r.key(userID, date) {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakeSummaryRepo) FindByID(userID, id string) (*summarydomain.DailySummary, error) {
	for _, row := range r.rows {
		if row.ID == id && row.UserID == userID {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakeSummaryRepo) ListByUser(userID string) ([]*summarydomain.DailySummary, error) {
	var out []*summarydomain.DailySummary
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	entries []*summarydomain.ProcessingLog
}

func (r *fakeLogRepo) Append(entry *summarydomain.ProcessingLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

type fakeFetcher struct {
	digests []*summarydomain.EmailDigest
	err     error
	calls   int
}

func (f *fakeFetcher) GetUnreadMessages(_ context.Context, _, _ string, _ int64) ([]*summarydomain.EmailDigest, error) {
	f.calls++
	return f.digests, f.err
}

type fakeSummarizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeSummarizer) SummarizeDigests(_ context.Context, _ []*summarydomain.EmailDigest) (string, error) {
	f.calls++
	return f.text, f.err
}

type plainCipher struct{}

func (plainCipher) Decrypt(encrypted string) (string, error) { return encrypted, nil }

// --- helpers ---

func testUser() *authdomain.User {
	return &authdomain.User{
		ID:                    "user-1",
		Email:                 "user@example.com",
		AccessTokenEncrypted:  "access-token",
		RefreshTokenEncrypted: "refresh-token",
		TokenExpiry:           time.Now().Add(time.Hour),
		IsActive:              true,
		SummaryEnabled:        true,
	}
}

func digests(n int) []*summarydomain.EmailDigest {
	out := make([]*summarydomain.EmailDigest, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &summarydomain.EmailDigest{
			Subject: string(rune('A' + i)),
			From:    fmt.Sprintf("sender%d@example.com", i),
			Snippet: "snippet",
		})
	}
	return out
}

type pipeline struct {
	uc         SummaryUsecase
	users      *fakeUserRepo
	summaries  *fakeSummaryRepo
	logs       *fakeLogRepo
	fetcher    *fakeFetcher
	summarizer *fakeSummarizer
}

func newPipeline(users *fakeUserRepo, fetcher *fakeFetcher, summarizer *fakeSummarizer) *pipeline {
	p := &pipeline{
		users:      users,
		summaries:  &fakeSummaryRepo{},
		logs:       &fakeLogRepo{},
		fetcher:    fetcher,
		summarizer: summarizer,
	}
	p.uc = NewSummaryUsecase(users, p.summaries, p.logs, fetcher, summarizer, plainCipher{}, 50, time.UTC)
	return p
}

// --- tests ---

func TestGenerateForUserSuccess(t *testing.T) {
	p := newPipeline(newFakeUserRepo(testUser()), &fakeFetcher{digests: digests(3)}, &fakeSummarizer{text: "T"})

	err := p.uc.GenerateForUser(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, p.summaries.rows, 1)
	row := p.summaries.rows[0]
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, 3, row.EmailCount)
	assert.Equal(t, "T", row.SummaryText)
	assert.Equal(t, summarydomain.StatusCompleted, row.Status)
	assert.NotNil(t, row.SentAt)
	assert.Equal(t, "web", row.SentVia)

	// last-summary marker updated, no failure logs
	assert.Contains(t, p.users.sentMarkers, "user-1")
	assert.Empty(t, p.logs.entries)
}

func TestGenerateForUserIdempotent(t *testing.T) {
	p := newPipeline(newFakeUserRepo(testUser()), &fakeFetcher{digests: digests(3)}, &fakeSummarizer{text: "T"})

	require.NoError(t, p.uc.GenerateForUser(context.Background(), "user-1"))
	require.NoError(t, p.uc.GenerateForUser(context.Background(), "user-1"))

	// Second invocation is a no-op: no second row, no second round of upstream calls.
	assert.Len(t, p.summaries.rows, 1)
	assert.Equal(t, 1, p.fetcher.calls)
	assert.Equal(t, 1, p.summarizer.calls)
}

func TestGenerateForUserNoUnreadMail(t *testing.T) {
	p := newPipeline(newFakeUserRepo(testUser()), &fakeFetcher{digests: nil}, &fakeSummarizer{text: "T"})

	err := p.uc.GenerateForUser(context.Background(), "user-1")
	require.NoError(t, err)

	// No record is created and the summarizer is never called.
	assert.Empty(t, p.summaries.rows)
	assert.Equal(t, 0, p.summarizer.calls)
	assert.Empty(t, p.logs.entries)
}

func TestGenerateForUserSummarizerFailureAllowsRetry(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("model unavailable")}
	p := newPipeline(newFakeUserRepo(testUser()), &fakeFetcher{digests: digests(2)}, summarizer)

	err := p.uc.GenerateForUser(context.Background(), "user-1")
	require.Error(t, err)

	// No summary row, exactly one failed log entry.
	assert.Empty(t, p.summaries.rows)
	require.Len(t, p.logs.entries, 1)
	entry := p.logs.entries[0]
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)
	assert.Equal(t, summarydomain.ActionEmailSummary, entry.Action)
	assert.Equal(t, summarydomain.LogStatusFailed, entry.Status)
	assert.Contains(t, entry.ErrorMessage, "model unavailable")

	// The day's slot was not consumed: a same-day retry succeeds.
	summarizer.err = nil
	summarizer.text = "T"
	require.NoError(t, p.uc.GenerateForUser(context.Background(), "user-1"))
	assert.Len(t, p.summaries.rows, 1)
}

func TestGenerateForUserFetchFailureLogged(t *testing.T) {
	p := newPipeline(newFakeUserRepo(testUser()), &fakeFetcher{err: errors.New("401 unauthorized")}, &fakeSummarizer{})

	err := p.uc.GenerateForUser(context.Background(), "user-1")
	require.Error(t, err)

	assert.Empty(t, p.summaries.rows)
	require.Len(t, p.logs.entries, 1)
	assert.Contains(t, p.logs.entries[0].ErrorMessage, "unable to fetch unread mail")
	assert.Equal(t, 0, p.summarizer.calls)
}

func TestGenerateForUserMissingUser(t *testing.T) {
	p := newPipeline(newFakeUserRepo(), &fakeFetcher{}, &fakeSummarizer{})

	err := p.uc.GenerateForUser(context.Background(), "ghost")
	require.Error(t, err)

	require.Len(t, p.logs.entries, 1)
	assert.Contains(t, p.logs.entries[0].ErrorMessage, "user not found")
	assert.Equal(t, 0, p.fetcher.calls)
}

func TestGenerateForUserConcurrentInsertIsNoOp(t *testing.T) {
	// Simulate losing the insert race: the pre-check sees nothing, but the
	// store already holds a row by the time Create runs.
	users := newFakeUserRepo(testUser())
	summaries := &fakeSummaryRepo{}
	logs := &fakeLogRepo{}
	fetcher := &fakeFetcher{digests: digests(1)}
	summarizer := &fakeSummarizer{text: "T"}

	uc := NewSummaryUsecase(users, &racingSummaryRepo{inner: summaries}, logs, fetcher, summarizer, plainCipher{}, 50, time.UTC)

	err := uc.GenerateForUser(context.Background(), "user-1")
	require.NoError(t, err)

	// Exactly the racing writer's row exists; the loss is not a failure.
	assert.Len(t, summaries.rows, 1)
	assert.Empty(t, logs.entries)
}

// racingSummaryRepo reports no existing summary but inserts a competing row
// right before Create, forcing the uniqueness path.
type racingSummaryRepo struct {
	inner *fakeSummaryRepo
}

func (r *racingSummaryRepo) Create(s *summarydomain.DailySummary) error {
	_ = r.inner.Create(&summarydomain.DailySummary{UserID: s.UserID, SummaryDate: s.SummaryDate, SummaryText: "winner"})
	return r.inner.Create(s)
}
func (r *racingSummaryRepo) FindByUserAndDate(string, time.Time) (*summarydomain.DailySummary, error) {
	return nil, nil
}
func (r *racingSummaryRepo) FindByID(userID, id string) (*summarydomain.DailySummary, error) {
	return r.inner.FindByID(userID, id)
}
func (r *racingSummaryRepo) ListByUser(userID string) ([]*summarydomain.DailySummary, error) {
	return r.inner.ListByUser(userID)
}

func TestGenerateAllContinuesAfterFailure(t *testing.T) {
	bad := testUser()
	bad.ID = "user-bad"
	bad.Email = "bad@example.com"
	good := testUser()
	good.ID = "user-good"
	good.Email = "good@example.com"

	users := newFakeUserRepo(bad, good)
	summaries := &fakeSummaryRepo{}
	logs := &fakeLogRepo{}
	fetcher := &perUserFetcher{failFor: "bad@example.com", digests: digests(2)}
	summarizer := &fakeSummarizer{text: "T"}

	uc := NewSummaryUsecase(users, summaries, logs, fetcher, summarizer, plainCipher{}, 50, time.UTC)
	uc.(*summaryUsecase).now = func() time.Time { return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) }

	uc.GenerateAll(context.Background())

	// The bad user failed and was logged; the good user still got a summary.
	require.Len(t, summaries.rows, 1)
	assert.Equal(t, "user-good", summaries.rows[0].UserID)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), summaries.rows[0].SummaryDate)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "user-bad", *logs.entries[0].UserID)
}

// perUserFetcher fails for one user's mailbox only.
type perUserFetcher struct {
	failFor string
	digests []*summarydomain.EmailDigest
}

func (f *perUserFetcher) GetUnreadMessages(_ context.Context, email, _ string, _ int64) ([]*summarydomain.EmailDigest, error) {
	if email == f.failFor {
		return nil, errors.New("provider error")
	}
	return f.digests, nil
}

func TestDateBoundaryUsesConfiguredTimezone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	users := newFakeUserRepo(testUser())
	summaries := &fakeSummaryRepo{}
	uc := NewSummaryUsecase(users, summaries, &fakeLogRepo{}, &fakeFetcher{digests: digests(1)}, &fakeSummarizer{text: "T"}, plainCipher{}, 50, seoul)

	// 23:30 UTC on the 28th is already the 29th in Seoul.
	uc.(*summaryUsecase).now = func() time.Time { return time.Date(2026, 8, 28, 23, 30, 0, 0, time.UTC) }

	require.NoError(t, uc.GenerateForUser(context.Background(), "user-1"))
	require.Len(t, summaries.rows, 1)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), summaries.rows[0].SummaryDate)
}
