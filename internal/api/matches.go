package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HavenLettings/Matchmaker/internal/matching"
	"github.com/HavenLettings/Matchmaker/internal/store"
)

type MatchHandler struct {
	store  store.Store
	engine *matching.Engine
}

func NewMatchHandler(s store.Store, e *matching.Engine) *MatchHandler {
	return &MatchHandler{store: s, engine: e}
}

// MatchRequest carries either a stored preference id or an inline
// preference, plus optional weight overrides and a result cap.
type MatchRequest struct {
	PreferenceID    string                `json:"preference_id,omitempty"`
	Preference      *store.PreferenceSpec `json:"preference,omitempty"`
	WeightOverrides map[string]float64    `json:"weight_overrides,omitempty"`
	MaxResults      int                   `json:"max_results,omitempty"`
}

// Match runs one optimization.
// POST /api/v1/match
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decodeStrict(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	pref := req.Preference
	if pref == nil {
		if req.PreferenceID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preference or preference_id required"})
			return
		}
		id, err := uuid.Parse(req.PreferenceID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preference_id"})
			return
		}
		pref, err = h.store.GetPreference(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if pref == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "preference not found"})
			return
		}
	} else if err := validatePreference(pref); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.engine.Optimize(r.Context(), pref, req.WeightOverrides, req.MaxResults)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Tenants ranks requesters for one listing.
// POST /api/v1/listings/{id}/tenants
func (h *MatchHandler) Tenants(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid listing id"})
		return
	}

	var req struct {
		MaxResults int `json:"max_results,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeStrict(r.Body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	listing, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if listing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
		return
	}

	result, err := h.engine.OptimizeReverse(r.Context(), listing, req.MaxResults)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Batch assigns listings across several requesters at once.
// POST /api/v1/match/batch
func (h *MatchHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PreferenceIDs []string `json:"preference_ids"`
		MaxResults    int      `json:"max_results,omitempty"`
	}
	if err := decodeStrict(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.PreferenceIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preference_ids required"})
		return
	}

	var prefs []*store.PreferenceSpec
	for _, raw := range req.PreferenceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preference id: " + raw})
			return
		}
		p, err := h.store.GetPreference(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if p == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "preference not found: " + raw})
			return
		}
		prefs = append(prefs, p)
	}

	result, err := h.engine.MatchBatch(r.Context(), prefs, req.MaxResults)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matching.ErrInvalidWeights):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, matching.ErrDataSourceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// decodeStrict rejects unknown JSON keys so a typo in a preference or
// weight payload fails loudly at the boundary.
func decodeStrict(body io.Reader, v interface{}) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
