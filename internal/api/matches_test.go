package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HavenLettings/Matchmaker/internal/config"
	"github.com/HavenLettings/Matchmaker/internal/matching"
	"github.com/HavenLettings/Matchmaker/internal/store"
	"github.com/HavenLettings/Matchmaker/internal/telemetry"
)

// memStore is an in-memory store.Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*store.Listing
	prefs    map[uuid.UUID]*store.PreferenceSpec
}

func newMemStore() *memStore {
	return &memStore{
		listings: make(map[uuid.UUID]*store.Listing),
		prefs:    make(map[uuid.UUID]*store.PreferenceSpec),
	}
}

func (m *memStore) CreateListing(_ context.Context, l *store.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	m.listings[l.ID] = l
	return nil
}

func (m *memStore) GetListing(_ context.Context, id uuid.UUID) (*store.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listings[id], nil
}

func (m *memStore) ListListings(_ context.Context, _ store.ListingFilter) ([]*store.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Listing
	for _, l := range m.listings {
		out = append(out, l)
	}
	return out, nil
}

func (m *memStore) UpdateListing(_ context.Context, l *store.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.UpdatedAt = time.Now()
	m.listings[l.ID] = l
	return nil
}

func (m *memStore) DeleteListing(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, id)
	return nil
}

func (m *memStore) CreatePreference(_ context.Context, p *store.PreferenceSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.prefs[p.ID] = p
	return nil
}

func (m *memStore) GetPreference(_ context.Context, id uuid.UUID) (*store.PreferenceSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs[id], nil
}

func (m *memStore) ListPreferences(_ context.Context, _ store.PreferenceFilter) ([]*store.PreferenceSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.PreferenceSpec
	for _, p := range m.prefs {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) UpdatePreference(_ context.Context, p *store.PreferenceSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = time.Now()
	m.prefs[p.ID] = p
	return nil
}

func (m *memStore) DeletePreference(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefs, id)
	return nil
}

func (m *memStore) FindCandidates(ctx context.Context, _ store.ListingFilter) ([]*store.Listing, error) {
	return m.ListListings(ctx, store.ListingFilter{})
}

func (m *memStore) FindRequesters(ctx context.Context, _ store.PreferenceFilter) ([]*store.PreferenceSpec, error) {
	return m.ListPreferences(ctx, store.PreferenceFilter{})
}

func (m *memStore) Close() error { return nil }

func testServer(t *testing.T, s store.Store, adminToken string) *httptest.Server {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tel := telemetry.NewStore(100, nil)
	engine := matching.New(s, nil, tel, cfg, logger)
	srv := httptest.NewServer(NewRouter(s, engine, tel, nil, adminToken, logger))
	t.Cleanup(srv.Close)
	return srv
}

func seedListing(t *testing.T, s *memStore) *store.Listing {
	t.Helper()
	l := &store.Listing{
		Title:     "2-bed flat off Awolowo Road",
		Rent:      90000,
		Address:   "14 Awolowo Road",
		City:      "Lagos",
		Bedrooms:  2,
		Bathrooms: 1,
		Amenities: []string{"parking", "security"},
		Status:    store.StatusAvailable,
	}
	require.NoError(t, s.CreateListing(context.Background(), l))
	return l
}

func seedPreference(t *testing.T, s *memStore) *store.PreferenceSpec {
	t.Helper()
	p := &store.PreferenceSpec{
		TenantName:        "Adaeze N.",
		BudgetMin:         50000,
		BudgetMax:         150000,
		PreferredLocation: "Lagos",
		RequiredAmenities: []string{"parking"},
		MinBedrooms:       2,
		MinBathrooms:      1,
	}
	require.NoError(t, s.CreatePreference(context.Background(), p))
	return p
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestMatchByPreferenceID(t *testing.T) {
	s := newMemStore()
	l := seedListing(t, s)
	p := seedPreference(t, s)
	srv := testServer(t, s, "")

	resp := postJSON(t, srv.URL+"/api/v1/match", MatchRequest{PreferenceID: p.ID.String()})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result matching.OptimizationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "weighted_topk_v1", result.Algorithm)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, l.ID, result.Matches[0].ListingID)
	assert.Equal(t, 97, result.Matches[0].Score)
	assert.NotEmpty(t, result.Matches[0].Reasons)
}

func TestMatchInlinePreference(t *testing.T) {
	s := newMemStore()
	seedListing(t, s)
	srv := testServer(t, s, "")

	resp := postJSON(t, srv.URL+"/api/v1/match", MatchRequest{
		Preference: &store.PreferenceSpec{
			BudgetMin:    50000,
			BudgetMax:    150000,
			MinBedrooms:  1,
			MinBathrooms: 1,
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result matching.OptimizationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.MatchCount)
}

func TestMatchInlinePreferenceInvalid(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	resp := postJSON(t, srv.URL+"/api/v1/match", MatchRequest{
		Preference: &store.PreferenceSpec{
			BudgetMin:    2000,
			BudgetMax:    1000, // inverted window
			MinBedrooms:  1,
			MinBathrooms: 1,
		},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatchInvalidWeights(t *testing.T) {
	s := newMemStore()
	p := seedPreference(t, s)
	srv := testServer(t, s, "")

	resp := postJSON(t, srv.URL+"/api/v1/match", MatchRequest{
		PreferenceID:    p.ID.String(),
		WeightOverrides: map[string]float64{"budget": 0.95},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatchUnknownPreference(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	resp := postJSON(t, srv.URL+"/api/v1/match", MatchRequest{PreferenceID: uuid.NewString()})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMatchRejectsUnknownFields(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	resp := postJSON(t, srv.URL+"/api/v1/match", map[string]interface{}{
		"preference_id": uuid.NewString(),
		"weigths":       map[string]float64{"budget": 0.5},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTenantsForListing(t *testing.T) {
	s := newMemStore()
	l := seedListing(t, s)
	p := seedPreference(t, s)
	srv := testServer(t, s, "")

	resp := postJSON(t, srv.URL+"/api/v1/listings/"+l.ID.String()+"/tenants", map[string]int{"max_results": 5})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result matching.ReverseResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "reverse_rank_v1", result.Algorithm)
	require.Len(t, result.Ranked, 1)
	assert.Equal(t, p.ID, result.Ranked[0].RequesterID)
	assert.Equal(t, "Adaeze N.", result.Ranked[0].TenantName)
}

func TestTenantsUnknownListing(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	resp := postJSON(t, srv.URL+"/api/v1/listings/"+uuid.NewString()+"/tenants", map[string]int{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMatchBatch(t *testing.T) {
	s := newMemStore()
	seedListing(t, s)
	second := seedListing(t, s)
	second.Rent = 110000
	p1 := seedPreference(t, s)
	p2 := seedPreference(t, s)
	srv := testServer(t, s, "")

	resp := postJSON(t, srv.URL+"/api/v1/match/batch", map[string]interface{}{
		"preference_ids": []string{p1.ID.String(), p2.ID.String()},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result matching.BatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "greedy_bipartite_v1", result.Algorithm)
	assert.Len(t, result.Matches, 2)

	seenListings := make(map[uuid.UUID]bool)
	for _, m := range result.Matches {
		assert.False(t, seenListings[m.ListingID], "listing assigned twice")
		seenListings[m.ListingID] = true
	}
}

func TestMatchBatchEmptyIDs(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	resp := postJSON(t, srv.URL+"/api/v1/match/batch", map[string]interface{}{"preference_ids": []string{}})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
