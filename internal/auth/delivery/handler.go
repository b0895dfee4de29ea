package delivery

import (
	"net/http"

	authdomain "mailbrief-backend/internal/auth/domain"
	authdto "mailbrief-backend/internal/auth/dto"
	"mailbrief-backend/internal/auth/usecase"
	"mailbrief-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const stateCookieName = "oauth_state"
const stateCookieMaxAge = 300

// AuthHandler handles the Google OAuth flow and profile endpoints
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	config      *config.Config
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authUsecase usecase.AuthUsecase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		config:      cfg,
	}
}

// GET /api/auth/google
// GoogleLogin redirects the browser to Google's consent screen with a
// random state value bound to a short-lived cookie.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authUsecase.GoogleAuthURL(state))
}

// GET /api/auth/google/callback
// GoogleCallback verifies the state cookie, exchanges the code and
// redirects back to the frontend with a session token.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != storedState {
		c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL+"/login?error=invalid_state")
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL+"/login?error=auth_failed")
		return
	}

	resp, err := h.authUsecase.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL+"/login?error=auth_failed")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL+"/dashboard?token="+resp.Token)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// POST /api/auth/logout
// Sessions are stateless JWTs, so logout just tells the client to drop
// its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/users/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	profile, err := h.authUsecase.GetProfile(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// PUT /api/users/me
func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req authdto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.authUsecase.UpdatePreferences(user.ID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// currentUser pulls the authenticated user set by AuthMiddleware. Writes
// the error response itself when the context carries no valid user.
func currentUser(c *gin.Context) *authdomain.User {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil
	}
	user, ok := value.(*authdomain.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user data"})
		return nil
	}
	return user
}
