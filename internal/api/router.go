package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HavenLettings/Matchmaker/internal/events"
	"github.com/HavenLettings/Matchmaker/internal/matching"
	"github.com/HavenLettings/Matchmaker/internal/store"
	"github.com/HavenLettings/Matchmaker/internal/telemetry"
)

func NewRouter(s store.Store, e *matching.Engine, t *telemetry.Store, ev events.Client, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	matches := NewMatchHandler(s, e)
	listings := NewListingsHandler(s, ev)
	preferences := NewPreferencesHandler(s, ev)
	tel := NewTelemetryHandler(t)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/match", matches.Match)
		r.Post("/match/batch", matches.Batch)

		r.Post("/listings", listings.Create)
		r.Get("/listings", listings.List)
		r.Get("/listings/{id}", listings.Get)
		r.Put("/listings/{id}", listings.Update)
		r.Delete("/listings/{id}", listings.Delete)
		r.Post("/listings/{id}/tenants", matches.Tenants)

		r.Post("/preferences", preferences.Create)
		r.Get("/preferences", preferences.List)
		r.Get("/preferences/{id}", preferences.Get)
		r.Put("/preferences/{id}", preferences.Update)
		r.Delete("/preferences/{id}", preferences.Delete)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/telemetry/stats", tel.Stats)
			r.Get("/telemetry/algorithms/{id}", tel.AlgorithmStats)
			r.Get("/telemetry/trends", tel.Trends)
			r.Get("/telemetry/efficiency", tel.Efficiency)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
