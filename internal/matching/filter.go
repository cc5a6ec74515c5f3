package matching

import (
	"strings"

	"github.com/HavenLettings/Matchmaker/internal/store"
)

// BuildListingFilter translates a preference's hard constraints into the
// store's prefilter. The location and amenity conditions are pushed down as
// permissive substring/overlap filters; Eligible re-applies the exact
// semantics in memory.
func BuildListingFilter(p *store.PreferenceSpec, maxCandidates int) store.ListingFilter {
	status := store.StatusAvailable
	minRent := p.BudgetMin
	maxRent := p.BudgetMax
	return store.ListingFilter{
		MinRent:          &minRent,
		MaxRent:          &maxRent,
		MinBedrooms:      p.MinBedrooms,
		MinBathrooms:     p.MinBathrooms,
		Status:           &status,
		LocationContains: strings.TrimSpace(p.PreferredLocation),
		AnyAmenity:       p.RequiredAmenities,
		Limit:            maxCandidates,
	}
}

// Eligible reports whether a listing passes every hard constraint of the
// preference: rent inside the budget window, enough rooms, available, the
// preferred location appearing in city or address, and at least one shared
// required amenity. Degree of amenity match is scored softly downstream.
func Eligible(p *store.PreferenceSpec, l *store.Listing) bool {
	if l.Rent < p.BudgetMin || l.Rent > p.BudgetMax {
		return false
	}
	if l.Bedrooms < p.MinBedrooms || l.Bathrooms < p.MinBathrooms {
		return false
	}
	if l.Status != store.StatusAvailable {
		return false
	}
	if loc := strings.TrimSpace(strings.ToLower(p.PreferredLocation)); loc != "" {
		city := strings.ToLower(l.City)
		address := strings.ToLower(l.Address)
		if !strings.Contains(city, loc) && !strings.Contains(address, loc) {
			return false
		}
	}
	if len(p.RequiredAmenities) > 0 && !anyAmenityShared(p.RequiredAmenities, l.Amenities) {
		return false
	}
	return true
}

func anyAmenityShared(required, amenities []string) bool {
	have := make(map[string]struct{}, len(amenities))
	for _, a := range amenities {
		a = strings.TrimSpace(strings.ToLower(a))
		if a != "" {
			have[a] = struct{}{}
		}
	}
	for _, req := range required {
		req = strings.TrimSpace(strings.ToLower(req))
		if req == "" {
			continue
		}
		if _, ok := have[req]; ok {
			return true
		}
	}
	return false
}

// constraintCount reports how many hard and soft constraint groups a
// preference activates; recorded in telemetry.
func constraintCount(p *store.PreferenceSpec) int {
	n := 1 // budget window is always active
	if strings.TrimSpace(p.PreferredLocation) != "" {
		n++
	}
	if len(p.RequiredAmenities) > 0 {
		n++
	}
	if p.MinBedrooms > 0 {
		n++
	}
	if p.MinBathrooms > 0 {
		n++
	}
	if len(p.Features.Requested()) > 0 {
		n++
	}
	if len(p.Utilities.Requested()) > 0 {
		n++
	}
	return n
}
