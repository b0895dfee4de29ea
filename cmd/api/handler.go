package api

import (
	"mailbrief-backend/internal/auth/delivery"
	authUsecasePkg "mailbrief-backend/internal/auth/usecase"
	summaryDelivery "mailbrief-backend/internal/summary/delivery"
	summaryUsecasePkg "mailbrief-backend/internal/summary/usecase"
	"mailbrief-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authUsecasePkg.AuthUsecase
	summaryUsecase summaryUsecasePkg.SummaryUsecase
	config         *config.Config
	authHandler    *delivery.AuthHandler
	summaryHandler *summaryDelivery.SummaryHandler
}

func NewHandler(authUc authUsecasePkg.AuthUsecase, summaryUc summaryUsecasePkg.SummaryUsecase, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:    authUc,
		summaryUsecase: summaryUc,
		config:         cfg,
		authHandler:    delivery.NewAuthHandler(authUc, cfg),
		summaryHandler: summaryDelivery.NewSummaryHandler(summaryUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.authHandler, h.summaryHandler, h.authUsecase)

	return r.Run(addr)
}
