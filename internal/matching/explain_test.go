package matching

import (
	"strings"
	"testing"

	"github.com/HavenLettings/Matchmaker/internal/store"
)

func TestExplainFullListing(t *testing.T) {
	l := eligibleListing()
	p := basePreference()
	tr := true
	l.Features.Furnished = &tr
	p.Features.Furnished = &tr
	l.Utilities.Water = &tr
	p.Utilities.Water = &tr

	reasons := Explain(l, p, 97)
	if len(reasons) != 6 {
		t.Fatalf("expected 6 reasons, got %d: %v", len(reasons), reasons)
	}

	wantPrefixes := []string{
		"rent 90000 saves 60000 against your 150000 maximum",
		"located at 14 Awolowo Road, Lagos",
		"2 bedrooms, 1 bathrooms",
		"includes 1 required amenities: parking",
		"has requested features: furnished",
		"includes requested utilities: water",
	}
	for i, want := range wantPrefixes {
		if !strings.HasPrefix(reasons[i], want) && reasons[i] != want {
			t.Errorf("reason %d = %q, want %q", i, reasons[i], want)
		}
	}
}

func TestExplainScoreLineLast(t *testing.T) {
	reasons := Explain(eligibleListing(), basePreference(), 97)
	last := reasons[len(reasons)-1]
	if last != "overall match score 97/100" {
		t.Errorf("last reason = %q", last)
	}
}

func TestExplainRentAtMaximum(t *testing.T) {
	l := eligibleListing()
	p := basePreference()
	l.Rent = p.BudgetMax
	reasons := Explain(l, p, 90)
	if reasons[0] != "rent matches your maximum budget" {
		t.Errorf("reason = %q", reasons[0])
	}
}

func TestExplainRentOverMaximum(t *testing.T) {
	l := eligibleListing()
	p := basePreference()
	l.Rent = 160000
	reasons := Explain(l, p, 40)
	if !strings.Contains(reasons[0], "exceeds your 150000 maximum by 10000") {
		t.Errorf("reason = %q", reasons[0])
	}
}

func TestExplainDegradesWithMissingData(t *testing.T) {
	l := &store.Listing{Rent: 1000, Bedrooms: 1, Bathrooms: 1, Status: store.StatusAvailable}
	p := &store.PreferenceSpec{BudgetMin: 500, BudgetMax: 2000}

	reasons := Explain(l, p, 60)
	// No address, amenities, features, or utilities: budget line, rooms line,
	// score line only.
	if len(reasons) != 3 {
		t.Fatalf("expected 3 reasons, got %d: %v", len(reasons), reasons)
	}
	for _, r := range reasons {
		if strings.Contains(r, "located at") || strings.Contains(r, "amenities") {
			t.Errorf("unexpected reason %q for sparse listing", r)
		}
	}
}
