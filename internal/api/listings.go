package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HavenLettings/Matchmaker/internal/events"
	"github.com/HavenLettings/Matchmaker/internal/store"
)

type ListingsHandler struct {
	store  store.Store
	events events.Client
}

func NewListingsHandler(s store.Store, ev events.Client) *ListingsHandler {
	return &ListingsHandler{store: s, events: ev}
}

func (h *ListingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var l store.Listing
	if err := decodeStrict(r.Body, &l); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if l.Title == "" || l.Rent < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title required and rent must be non-negative"})
		return
	}
	if l.Status == "" {
		l.Status = store.StatusAvailable
	}

	if err := h.store.CreateListing(r.Context(), &l); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		_ = events.PublishListingCreated(r.Context(), h.events, &l)
	}
	writeJSON(w, http.StatusCreated, &l)
}

func (h *ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid listing id"})
		return
	}
	l, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if l == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ListingFilter{
		LocationContains: r.URL.Query().Get("location"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := store.AvailabilityStatus(s)
		filter.Status = &status
	}

	listings, err := h.store.ListListings(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if listings == nil {
		listings = []*store.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid listing id"})
		return
	}
	existing, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
		return
	}

	var l store.Listing
	if err := decodeStrict(r.Body, &l); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	l.ID = id

	if err := h.store.UpdateListing(r.Context(), &l); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		_ = events.PublishListingUpdated(r.Context(), h.events, &l)
	}
	writeJSON(w, http.StatusOK, &l)
}

func (h *ListingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid listing id"})
		return
	}
	if err := h.store.DeleteListing(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		_ = events.PublishListingDeleted(r.Context(), h.events, id)
	}
	w.WriteHeader(http.StatusNoContent)
}
