package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mrwolf/daybook/internal/config"
	"go.uber.org/zap"
)

func NewRouter(cfg *config.Config, svc Service, sched NextRunner, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))

	handlers := NewHandlers(cfg, svc, sched, logger)

	// Public endpoints
	r.Get("/health", handlers.Health)

	// API v1 routes (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Server.Token))
		r.Use(JSONContentType)
		r.Use(RateLimitMiddleware(NewRateLimiter(runsPerMinute, runBurst)))

		r.Get("/preview", handlers.Preview)
		r.Post("/run", handlers.Run)
	})

	return r
}
