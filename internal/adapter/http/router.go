package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/fundledger/internal/adapter/http/handler"
	"github.com/iho/fundledger/internal/adapter/http/middleware"
	"github.com/iho/fundledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ImportHandler      *handler.ImportHandler
	TransactionHandler *handler.TransactionHandler
	ReturnsHandler     *handler.ReturnsHandler
	RateHandler        *handler.RateHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/imports", func(r chi.Router) {
			r.Post("/", cfg.ImportHandler.Create)
			r.Get("/", cfg.ImportHandler.List)
			r.Get("/{id}", cfg.ImportHandler.Get)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Get("/{id}/similar", cfg.TransactionHandler.Similar)
		})

		r.Route("/investments", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.ListInvestments)
			r.Get("/{id}/returns", cfg.ReturnsHandler.Investment)
		})

		r.Get("/portfolio/returns", cfg.ReturnsHandler.Portfolio)

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", cfg.RateHandler.Get)
			r.Put("/", cfg.RateHandler.Set)
		})
	})

	return r
}
