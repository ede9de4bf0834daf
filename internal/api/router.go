package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/orgbook/internal/accounts"
	"github.com/hugh/orgbook/internal/api/handlers"
	"github.com/hugh/orgbook/internal/api/middleware"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/auth"
	"github.com/hugh/orgbook/internal/organizations"
	"github.com/hugh/orgbook/internal/roles"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Accounts       *accounts.Service
	Organizations  *organizations.Service
	Attachments    *attachments.Store
	Health         *handlers.HealthHandler
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Accounts)
	accountHandler := handlers.NewAccountHandler(cfg.Accounts)
	organizationHandler := handlers.NewOrganizationHandler(cfg.Organizations)
	attachmentHandler := handlers.NewAttachmentHandler(cfg.Attachments)

	// Health endpoints (no auth required)
	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints, rate limited by client IP
		r.Group(func(r chi.Router) {
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}
			r.Post("/auth/signup", authHandler.SignUp)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.Refresh)
		})

		// Protected routes, rate limited per authenticated account
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimitByAccount(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", accountHandler.Create)
				r.With(middleware.RequireRole(roles.Admin, roles.SuperAdmin)).
					Get("/", accountHandler.List)
				r.Get("/me", accountHandler.Me)
				r.Get("/{id}", accountHandler.Get)
				r.Patch("/{id}", accountHandler.Update)
				r.Delete("/{id}", accountHandler.Delete)
			})

			r.Route("/organizations", func(r chi.Router) {
				r.Post("/", organizationHandler.Create)
				r.Get("/", organizationHandler.List)
				r.Get("/{id}", organizationHandler.Get)
				r.Patch("/{id}", organizationHandler.Update)
				r.Delete("/{id}", organizationHandler.Delete)
			})

			r.Get("/attachments/{id}", attachmentHandler.Get)
		})
	})

	return &Router{r}
}
