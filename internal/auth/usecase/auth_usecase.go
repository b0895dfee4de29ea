package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "mailbrief-backend/internal/auth/domain"
	authdto "mailbrief-backend/internal/auth/dto"
	"mailbrief-backend/internal/auth/repository"
	"mailbrief-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo    repository.UserRepository
	cipher      TokenCipher
	oauthConfig *oauth2.Config
	config      *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cipher TokenCipher, cfg *config.Config) AuthUsecase {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes: []string{
			"openid",
			"email",
			"profile",
			"https://www.googleapis.com/auth/gmail.readonly",
		},
		Endpoint: google.Endpoint,
	}

	return &authUsecase{
		userRepo:    userRepo,
		cipher:      cipher,
		oauthConfig: oauthConfig,
		config:      cfg,
	}
}

func (u *authUsecase) GoogleAuthURL(state string) string {
	// AccessTypeOffline + ApprovalForce so Google always returns a refresh token.
	return u.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (u *authUsecase) HandleGoogleCallback(ctx context.Context, code string) (*authdto.AuthResponse, error) {
	token, err := u.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange authorization code: %v", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(u.oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create userinfo service: %v", err)
	}

	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch user info: %v", err)
	}
	if info.VerifiedEmail == nil || !*info.VerifiedEmail {
		return nil, errors.New("google email is not verified")
	}

	user, err := u.upsertUser(info, token)
	if err != nil {
		return nil, err
	}

	sessionToken, err := u.generateSessionToken(user)
	if err != nil {
		return nil, err
	}

	return &authdto.AuthResponse{
		Token: sessionToken,
		User:  user,
	}, nil
}

func (u *authUsecase) upsertUser(info *oauth2api.Userinfo, token *oauth2.Token) (*authdomain.User, error) {
	encryptedAccess, err := u.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("unable to encrypt access token: %v", err)
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(time.Hour)
	}

	user, err := u.userRepo.FindByGoogleID(info.Id)
	if err != nil {
		return nil, err
	}

	if user == nil {
		if token.RefreshToken == "" {
			return nil, errors.New("google did not return a refresh token")
		}
		encryptedRefresh, err := u.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("unable to encrypt refresh token: %v", err)
		}

		user = &authdomain.User{
			GoogleID:              info.Id,
			Email:                 info.Email,
			Name:                  info.Name,
			Picture:               info.Picture,
			AccessTokenEncrypted:  encryptedAccess,
			RefreshTokenEncrypted: encryptedRefresh,
			TokenExpiry:           expiry,
			IsActive:              true,
			SummaryEnabled:        true,
			PreferredSummaryTime:  "09:00:00",
			Timezone:              u.config.Timezone,
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	// Existing user: update profile and tokens. Google omits the refresh
	// token on re-consent, so keep the stored one in that case.
	user.Email = info.Email
	user.Name = info.Name
	user.Picture = info.Picture
	user.AccessTokenEncrypted = encryptedAccess
	user.TokenExpiry = expiry
	user.LastLogin = time.Now()
	if token.RefreshToken != "" {
		encryptedRefresh, err := u.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("unable to encrypt refresh token: %v", err)
		}
		user.RefreshTokenEncrypted = encryptedRefresh
	}

	if err := u.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) generateSessionToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(u.config.JWTExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}

func (u *authUsecase) GetProfile(userID string) (*authdomain.User, error) {
	return u.userRepo.FindByID(userID)
}

func (u *authUsecase) UpdatePreferences(userID string, req *authdto.UpdatePreferencesRequest) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	if req.SummaryEnabled != nil {
		user.SummaryEnabled = *req.SummaryEnabled
	}
	if req.PreferredSummaryTime != nil {
		if _, err := time.Parse("15:04:05", *req.PreferredSummaryTime); err != nil {
			return nil, errors.New("preferred_summary_time must be in HH:MM:SS format")
		}
		user.PreferredSummaryTime = *req.PreferredSummaryTime
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, errors.New("invalid timezone")
		}
		user.Timezone = *req.Timezone
	}
	if req.EmailNotification != nil {
		user.EmailNotification = *req.EmailNotification
	}

	if err := u.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
