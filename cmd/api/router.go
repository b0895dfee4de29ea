package api

import (
	"net/http"

	"mailbrief-backend/internal/auth/delivery"
	authUsecase "mailbrief-backend/internal/auth/usecase"
	summaryDelivery "mailbrief-backend/internal/summary/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authHandler *delivery.AuthHandler, summaryHandler *summaryDelivery.SummaryHandler, authUc authUsecase.AuthUsecase) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/google", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(delivery.AuthMiddleware(authUc))
		{
			users.GET("/me", authHandler.GetProfile)
			users.PUT("/me", authHandler.UpdatePreferences)
		}

		// Summary routes (protected)
		summaries := api.Group("/summaries")
		summaries.Use(delivery.AuthMiddleware(authUc))
		{
			summaries.GET("", summaryHandler.List)
			summaries.GET("/:id", summaryHandler.GetByID)
			summaries.POST("/generate", summaryHandler.Generate)
		}
	}
}
