package usecase

import (
	"context"

	authdomain "mailbrief-backend/internal/auth/domain"
	authdto "mailbrief-backend/internal/auth/dto"
)

// TokenCipher encrypts and decrypts stored credential values.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encrypted string) (string, error)
}

// AuthUsecase handles the Google OAuth flow and app sessions
type AuthUsecase interface {
	// GoogleAuthURL returns the consent-screen URL for the given state.
	GoogleAuthURL(state string) string
	// HandleGoogleCallback exchanges the authorization code, upserts the
	// user with encrypted tokens and returns an app session token.
	HandleGoogleCallback(ctx context.Context, code string) (*authdto.AuthResponse, error)
	ValidateToken(token string) (*authdomain.User, error)
	GetProfile(userID string) (*authdomain.User, error)
	UpdatePreferences(userID string, req *authdto.UpdatePreferencesRequest) (*authdomain.User, error)
}
