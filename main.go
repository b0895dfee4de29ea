package main

import (
	"log"
	"time"

	api "mailbrief-backend/cmd/api"
	authdomain "mailbrief-backend/internal/auth/domain"
	authRepo "mailbrief-backend/internal/auth/repository"
	authUsecase "mailbrief-backend/internal/auth/usecase"
	"mailbrief-backend/internal/scheduler"
	summarydomain "mailbrief-backend/internal/summary/domain"
	summaryRepo "mailbrief-backend/internal/summary/repository"
	summaryUsecase "mailbrief-backend/internal/summary/usecase"
	"mailbrief-backend/pkg/config"
	"mailbrief-backend/pkg/crypto"
	"mailbrief-backend/pkg/database"
	"mailbrief-backend/pkg/gmail"
	"mailbrief-backend/pkg/imapfetch"
	"mailbrief-backend/pkg/openrouter"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &summarydomain.DailySummary{}, &summarydomain.ProcessingLog{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Token cipher; the key is mandatory, tokens are never stored in plaintext
	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize token cipher:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	summaryRepository := summaryRepo.NewSummaryRepository(db)
	logRepository := summaryRepo.NewProcessingLogRepository(db)

	// Select the unread-mail fetch path
	var fetcher summaryUsecase.MailFetcher
	switch cfg.MailProvider {
	case "imap":
		fetcher = imapfetch.NewService("")
		log.Println("Mail provider: IMAP")
	default:
		fetcher = gmail.NewService()
		log.Println("Mail provider: Gmail API")
	}

	// Initialize summarizer
	summarizer := openrouter.NewService(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("Invalid timezone:", err)
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cipher, cfg)
	summaryUsecaseInstance := summaryUsecase.NewSummaryUsecase(
		userRepo, summaryRepository, logRepository,
		fetcher, summarizer, cipher,
		cfg.MaxUnreadMessages, location,
	)
	tokenRefresher := authUsecase.NewTokenRefresher(userRepo, logRepository, cipher, cfg)

	// Start recurring jobs
	jobScheduler, err := scheduler.NewScheduler(summaryUsecaseInstance, tokenRefresher, cfg)
	if err != nil {
		log.Fatal("Failed to initialize scheduler:", err)
	}
	if err := jobScheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}
	defer jobScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, summaryUsecaseInstance, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
