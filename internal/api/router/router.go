package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/decoyline/honeypot-agent/internal/http/handlers"
	httpmiddleware "github.com/decoyline/honeypot-agent/internal/http/middleware"
	"github.com/decoyline/honeypot-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	ChatHandler    *handlers.ChatHandler
	APIKey         string
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.ChatHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated honeypot surface
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.APIKey(cfg.APIKey))
		api.Post("/api/chat", cfg.ChatHandler.HandleChat)
	})

	return r
}
