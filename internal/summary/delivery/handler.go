package delivery

import (
	"context"
	"net/http"

	authdomain "mailbrief-backend/internal/auth/domain"
	"mailbrief-backend/internal/summary/usecase"

	"github.com/gin-gonic/gin"
)

// SummaryHandler handles daily summary API endpoints
type SummaryHandler struct {
	summaryUsecase usecase.SummaryUsecase
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryUsecase usecase.SummaryUsecase) *SummaryHandler {
	return &SummaryHandler{
		summaryUsecase: summaryUsecase,
	}
}

// GET /api/summaries
func (h *SummaryHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	summaries, err := h.summaryUsecase.ListForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

// GET /api/summaries/:id
func (h *SummaryHandler) GetByID(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	summary, err := h.summaryUsecase.GetForUser(user.ID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "summary not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// POST /api/summaries/generate
// Generate kicks off the pipeline for the current user in the background.
// The pipeline is a no-op when today's summary already exists.
func (h *SummaryHandler) Generate(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	// Detached from the request context: fetching and summarizing can
	// outlive the HTTP request.
	go func(userID string) {
		_ = h.summaryUsecase.GenerateForUser(context.Background(), userID)
	}(user.ID)

	c.JSON(http.StatusAccepted, gin.H{"message": "summary generation started"})
}

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
