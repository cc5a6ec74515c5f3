package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HavenLettings/Matchmaker/internal/events"
	"github.com/HavenLettings/Matchmaker/internal/store"
)

type PreferencesHandler struct {
	store  store.Store
	events events.Client
}

func NewPreferencesHandler(s store.Store, ev events.Client) *PreferencesHandler {
	return &PreferencesHandler{store: s, events: ev}
}

// validatePreference enforces the boundary invariants: a non-degenerate
// budget window and at least one bedroom and bathroom.
func validatePreference(p *store.PreferenceSpec) error {
	if p.BudgetMin < 0 || p.BudgetMax < 0 {
		return fmt.Errorf("budget bounds must be non-negative")
	}
	if p.BudgetMin >= p.BudgetMax {
		return fmt.Errorf("budget_min must be less than budget_max")
	}
	if p.MinBedrooms < 1 || p.MinBathrooms < 1 {
		return fmt.Errorf("min_bedrooms and min_bathrooms must be at least 1")
	}
	if p.MaxCommuteMinutes != nil && *p.MaxCommuteMinutes <= 0 {
		return fmt.Errorf("max_commute_minutes must be positive when set")
	}
	return nil
}

func (h *PreferencesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p store.PreferenceSpec
	if err := decodeStrict(r.Body, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := validatePreference(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.store.CreatePreference(r.Context(), &p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		_ = events.PublishPreferenceCreated(r.Context(), h.events, &p)
	}
	writeJSON(w, http.StatusCreated, &p)
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preference id"})
		return
	}
	p, err := h.store.GetPreference(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "preference not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PreferencesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.PreferenceFilter{
		Location: r.URL.Query().Get("location"),
	}
	prefs, err := h.store.ListPreferences(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if prefs == nil {
		prefs = []*store.PreferenceSpec{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preference id"})
		return
	}
	existing, err := h.store.GetPreference(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "preference not found"})
		return
	}

	var p store.PreferenceSpec
	if err := decodeStrict(r.Body, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := validatePreference(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p.ID = id

	if err := h.store.UpdatePreference(r.Context(), &p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		_ = events.PublishPreferenceUpdated(r.Context(), h.events, &p)
	}
	writeJSON(w, http.StatusOK, &p)
}

func (h *PreferencesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preference id"})
		return
	}
	if err := h.store.DeletePreference(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		_ = events.PublishPreferenceDeleted(r.Context(), h.events, id)
	}
	w.WriteHeader(http.StatusNoContent)
}
