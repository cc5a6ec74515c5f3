package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HavenLettings/Matchmaker/internal/store"
)

func testMetricsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewMetricsRouter())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestTelemetryRequiresAdminToken(t *testing.T) {
	srv := testServer(t, newMemStore(), "admin-secret")

	resp := get(t, srv.URL+"/api/v1/telemetry/stats", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	resp = get(t, srv.URL+"/api/v1/telemetry/stats", "wrong")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", resp.StatusCode)
	}

	resp = get(t, srv.URL+"/api/v1/telemetry/stats", "admin-secret")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", resp.StatusCode)
	}
}

func TestTelemetryOpenWithoutConfiguredToken(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	resp := get(t, srv.URL+"/api/v1/telemetry/efficiency", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["efficiency_score"]; !ok {
		t.Error("missing efficiency_score field")
	}
}

func TestTelemetryTrendsValidatesDays(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	for _, bad := range []string{"0", "-3", "abc"} {
		resp := get(t, srv.URL+"/api/v1/telemetry/trends?days="+bad, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("days=%s: status = %d, want 400", bad, resp.StatusCode)
		}
	}

	resp := get(t, srv.URL+"/api/v1/telemetry/trends?days=14", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("days=14: status = %d, want 200", resp.StatusCode)
	}
}

func TestListingCRUD(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	payload, _ := json.Marshal(store.Listing{
		Title:     "Studio near the waterfront",
		Rent:      60000,
		City:      "Lagos",
		Bedrooms:  1,
		Bathrooms: 1,
	})
	resp, err := http.Post(srv.URL+"/api/v1/listings", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", resp.StatusCode)
	}
	var created store.Listing
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	resp.Body.Close()
	if created.Status != store.StatusAvailable {
		t.Errorf("status defaulted to %q, want available", created.Status)
	}

	resp = get(t, srv.URL+"/api/v1/listings/"+created.ID.String(), "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get: status = %d, want 200", resp.StatusCode)
	}
	var fetched store.Listing
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode fetched: %v", err)
	}
	if fetched.Title != created.Title {
		t.Errorf("title = %q, want %q", fetched.Title, created.Title)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/listings/"+created.ID.String(), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", resp.StatusCode)
	}

	resp = get(t, srv.URL+"/api/v1/listings/"+created.ID.String(), "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateListingRejectsMissingTitle(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	payload, _ := json.Marshal(store.Listing{Rent: 1000})
	resp, err := http.Post(srv.URL+"/api/v1/listings", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreatePreferenceValidation(t *testing.T) {
	srv := testServer(t, newMemStore(), "")

	tests := []struct {
		name string
		pref store.PreferenceSpec
		want int
	}{
		{"valid", store.PreferenceSpec{BudgetMin: 1000, BudgetMax: 2000, MinBedrooms: 1, MinBathrooms: 1}, http.StatusCreated},
		{"inverted budget", store.PreferenceSpec{BudgetMin: 2000, BudgetMax: 1000, MinBedrooms: 1, MinBathrooms: 1}, http.StatusBadRequest},
		{"zero bedrooms", store.PreferenceSpec{BudgetMin: 1000, BudgetMax: 2000, MinBathrooms: 1}, http.StatusBadRequest},
		{"negative budget", store.PreferenceSpec{BudgetMin: -100, BudgetMax: 2000, MinBedrooms: 1, MinBathrooms: 1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(tt.pref)
			resp, err := http.Post(srv.URL+"/api/v1/preferences", "application/json", bytes.NewReader(payload))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestMetricsRouterHealth(t *testing.T) {
	srv := testMetricsServer(t)

	resp := get(t, srv.URL+"/health", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status body = %q, want ok", body["status"])
	}
}
