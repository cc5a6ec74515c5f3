package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/HavenLettings/Matchmaker/internal/telemetry"
)

type TelemetryHandler struct {
	telemetry *telemetry.Store
}

func NewTelemetryHandler(t *telemetry.Store) *TelemetryHandler {
	return &TelemetryHandler{telemetry: t}
}

// Stats returns aggregate run statistics across all algorithms.
// GET /api/v1/telemetry/stats
func (h *TelemetryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.telemetry.OverallStats())
}

// AlgorithmStats returns run statistics for one algorithm id.
// GET /api/v1/telemetry/algorithms/{id}
func (h *TelemetryHandler) AlgorithmStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, h.telemetry.AlgorithmStats(id))
}

// Trends buckets recent runs by calendar day.
// GET /api/v1/telemetry/trends?days=7
func (h *TelemetryHandler) Trends(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
			return
		}
		days = n
	}
	trends := h.telemetry.Trends(days)
	if trends == nil {
		trends = []telemetry.DayStats{}
	}
	writeJSON(w, http.StatusOK, trends)
}

// Efficiency returns the derived 0-100 efficiency score.
// GET /api/v1/telemetry/efficiency
func (h *TelemetryHandler) Efficiency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"efficiency_score": h.telemetry.EfficiencyScore()})
}
