// Package router assembles the HTTP routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tayritours/booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/tayritours/booking-assistant/internal/http/middleware"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Webhook        *handlers.WhatsAppWebhookHandler
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

	r.Get("/health", cfg.Webhook.HealthCheck)
	r.Get("/webhook", cfg.Webhook.HandleVerify)
	r.Post("/webhook", cfg.Webhook.HandleEvent)

	// The original deployment received events on the root path as well.
	r.Get("/", cfg.Webhook.HandleVerify)
	r.Post("/", cfg.Webhook.HandleEvent)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
