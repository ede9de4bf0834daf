package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/orgbook/internal/accounts"
	"github.com/hugh/orgbook/internal/api"
	"github.com/hugh/orgbook/internal/api/handlers"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/auth"
	"github.com/hugh/orgbook/internal/database"
	"github.com/hugh/orgbook/internal/organizations"
	"github.com/hugh/orgbook/pkg/config"
	"github.com/hugh/orgbook/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting orgbook server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize services; the two registries reference each other through
	// narrow interfaces, so the organization sweeper is bound after both exist.
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry(), cfg.JWT.RefreshExpiry())
	hasher := auth.NewHasher(cfg.Password.BcryptCost)
	authService := auth.NewService(db, jwtService, hasher)
	attachmentStore := attachments.NewStore(db)
	accountService := accounts.NewService(db, hasher, attachmentStore)
	organizationService := organizations.NewService(db, accountService, attachmentStore)
	accountService.BindOrganizations(organizationService)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		Accounts:       accountService,
		Organizations:  organizationService,
		Attachments:    attachmentStore,
		Health:         handlers.NewHealthHandler(db),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
