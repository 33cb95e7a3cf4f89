package main

import (
	"log"
	"time"

	"formharbor/api"
	"formharbor/config"
	"formharbor/database"
	"formharbor/middleware"
	"formharbor/models"
	"formharbor/repository"
	"formharbor/scheduler"
	"formharbor/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	config.LoadConfig()

	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	runMigrations(db)

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Services
	notifier := services.NewResendNotifier(config.AppConfig.Email.APIKey, config.AppConfig.Email.From)
	quotaService := services.NewQuotaService(usageRepo, accountRepo)
	submissionService := services.NewSubmissionService(submissionRepo, accountRepo, quotaService, notifier)
	tokenTTL := time.Duration(config.AppConfig.Auth.TokenTTLHours) * time.Hour
	accountService := services.NewAccountService(accountRepo, []byte(config.AppConfig.Auth.JWTSecret), tokenTTL)
	log.Println("INFO: [Main] Services initialized.")

	// Weekly digest
	digest := scheduler.NewDigestScheduler(accountRepo, submissionRepo, usageRepo, notifier)
	if err := digest.Start(config.AppConfig.Email.DigestSchedule); err != nil {
		log.Fatalf("FATAL: [Main] Failed to start digest scheduler: %v", err)
	}
	defer digest.Stop()

	apiHandler := api.NewAPIHandler(accountService, submissionService)
	log.Println("INFO: [Main] API Handler initialized.")

	r := gin.New()
	r.SetTrustedProxies(nil)
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())

	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	serverPort := ":" + config.AppConfig.Server.Port
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.Account{},
		&models.Submission{},
		&models.MonthlyUsage{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler) {
	apiGroup := r.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", handler.RegisterHandler)
			authGroup.POST("/login", handler.LoginHandler)
		}

		// Public admission endpoint: called from customer websites by
		// anonymous visitors, no auth.
		apiGroup.POST("/forms/:accountID/submissions", handler.PublicSubmitHandler)

		apiGroup.GET("/plans", handler.PlansHandler)

		// Dashboard and settings require a bearer token.
		authed := apiGroup.Group("")
		authed.Use(middleware.Auth([]byte(config.AppConfig.Auth.JWTSecret)))
		{
			authed.GET("/submissions", handler.ListSubmissionsHandler)
			authed.GET("/submissions/:id", handler.GetSubmissionHandler)
			authed.PATCH("/submissions/:id/read", handler.ToggleReadHandler)
			authed.PATCH("/submissions/:id/notes", handler.UpdateNotesHandler)
			authed.DELETE("/submissions/:id", handler.DeleteSubmissionHandler)
			authed.GET("/stats", handler.StatsHandler)
			authed.POST("/settings/tier", handler.UpdateTierHandler)
			authed.GET("/settings/embed", handler.EmbedSnippetHandler)
		}
	}
}
