package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	authdomain "mailbrief-backend/internal/auth/domain"
	"mailbrief-backend/internal/auth/repository"
	summarydomain "mailbrief-backend/internal/summary/domain"
	summaryrepo "mailbrief-backend/internal/summary/repository"
	"mailbrief-backend/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenExchanger performs the OAuth2 refresh-token grant.
type TokenExchanger interface {
	Exchange(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// googleExchanger exchanges refresh tokens at Google's token endpoint.
type googleExchanger struct {
	config *oauth2.Config
}

func (e *googleExchanger) Exchange(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := e.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}

// TokenRefresher keeps stored access tokens fresh ahead of their expiry.
// It runs on its own cadence, decoupled from the daily summary job: a user
// whose token is about to expire must be refreshed well before the next
// summary sweep picks them up, and a transient refresh failure must never
// also cost that user their daily summary.
type TokenRefresher struct {
	userRepo  repository.UserRepository
	logRepo   summaryrepo.ProcessingLogRepository
	cipher    TokenCipher
	exchanger TokenExchanger

	lookahead time.Duration
	extendTTL time.Duration

	now func() time.Time
}

// NewTokenRefresher creates a new TokenRefresher
func NewTokenRefresher(
	userRepo repository.UserRepository,
	logRepo summaryrepo.ProcessingLogRepository,
	cipher TokenCipher,
	cfg *config.Config,
) *TokenRefresher {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
	}

	return &TokenRefresher{
		userRepo:  userRepo,
		logRepo:   logRepo,
		cipher:    cipher,
		exchanger: &googleExchanger{config: oauthConfig},
		lookahead: cfg.RefreshLookahead,
		extendTTL: cfg.RefreshExtend,
		now:       time.Now,
	}
}

// RefreshAll refreshes every credential whose expiry falls within the
// lookahead window. One user's failure never blocks the rest of the sweep.
func (r *TokenRefresher) RefreshAll(ctx context.Context) {
	users, err := r.userRepo.FindTokenExpiringWithin(r.now(), r.lookahead)
	if err != nil {
		log.Printf("[TokenRefresh] Error selecting expiring credentials: %v", err)
		return
	}

	log.Printf("[TokenRefresh] Refreshing tokens for %d users", len(users))

	for _, user := range users {
		if err := r.RefreshForUser(ctx, user); err != nil {
			log.Printf("[TokenRefresh] Error refreshing token for user %s: %v", user.ID, err)
		}
	}
}

// RefreshForUser exchanges the stored refresh token for a new access token,
// overwrites the stored credential and advances its expiry by the fixed TTL.
func (r *TokenRefresher) RefreshForUser(ctx context.Context, user *authdomain.User) error {
	refreshToken, err := r.cipher.Decrypt(user.RefreshTokenEncrypted)
	if err != nil {
		return r.fail(user.ID, fmt.Sprintf("unable to decrypt refresh token: %v", err))
	}

	token, err := r.exchanger.Exchange(ctx, refreshToken)
	if err != nil {
		return r.fail(user.ID, fmt.Sprintf("token refresh failed: %v", err))
	}

	encryptedAccess, err := r.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return r.fail(user.ID, fmt.Sprintf("unable to encrypt access token: %v", err))
	}

	expiry := r.now().Add(r.extendTTL)
	if err := r.userRepo.UpdateTokens(user.ID, encryptedAccess, expiry); err != nil {
		return r.fail(user.ID, fmt.Sprintf("unable to store refreshed token: %v", err))
	}

	r.log(user.ID, summarydomain.LogStatusSuccess, "")
	return nil
}

func (r *TokenRefresher) fail(userID, message string) error {
	r.log(userID, summarydomain.LogStatusFailed, message)
	return fmt.Errorf("%s", message)
}

func (r *TokenRefresher) log(userID, status, errorMessage string) {
	entry := &summarydomain.ProcessingLog{
		UserID:       &userID,
		Action:       summarydomain.ActionTokenRefresh,
		Status:       status,
		ErrorMessage: errorMessage,
	}
	if err := r.logRepo.Append(entry); err != nil {
		log.Printf("[TokenRefresh] Error appending processing log for user %s: %v", userID, err)
	}
}
