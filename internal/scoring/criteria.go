package scoring

import (
	"fmt"
	"strings"

	"github.com/HavenLettings/Matchmaker/internal/store"
)

// CriterionResult captures one criterion's contribution to the composite score.
// Scores are on a 0–100 scale.
type CriterionResult struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Reason   string  `json:"reason"`
}

// --- Individual criterion calculators ---

// BudgetCriterion scores rent against the tenant's budget window.
// Inside [min,max] the score is a flat 100. Outside, it decays linearly to 0
// as the shortfall (or excess) approaches 50% of the violated bound.
func BudgetCriterion(l *store.Listing, p *store.PreferenceSpec) CriterionResult {
	r := CriterionResult{Name: "budget"}
	switch {
	case l.Rent >= p.BudgetMin && l.Rent <= p.BudgetMax:
		r.Score = 100
		r.Reason = "rent within budget"
	case l.Rent < p.BudgetMin:
		if p.BudgetMin <= 0 {
			r.Score = 0
			r.Reason = "rent below zero-width budget"
			break
		}
		shortfall := (p.BudgetMin - l.Rent) / (0.5 * p.BudgetMin)
		r.Score = clamp(100*(1-shortfall), 0, 100)
		r.Reason = "rent below budget minimum"
	default:
		if p.BudgetMax <= 0 {
			r.Score = 0
			r.Reason = "rent above zero-width budget"
			break
		}
		excess := (l.Rent - p.BudgetMax) / (0.5 * p.BudgetMax)
		r.Score = clamp(100*(1-excess), 0, 100)
		r.Reason = "rent above budget maximum"
	}
	return r
}

// LocationCriterion scores the listing's city and address against the
// preferred location. An empty preference is a perfect match.
func LocationCriterion(l *store.Listing, p *store.PreferenceSpec) CriterionResult {
	r := CriterionResult{Name: "location"}
	pref := strings.TrimSpace(strings.ToLower(p.PreferredLocation))
	if pref == "" {
		r.Score = 100
		r.Reason = "no location preference"
		return r
	}

	city := strings.ToLower(l.City)
	address := strings.ToLower(l.Address)

	if strings.Contains(city, pref) || (city != "" && strings.Contains(pref, city)) {
		r.Score = 100
		r.Reason = "city matches preferred location"
		return r
	}
	if strings.Contains(address, pref) {
		r.Score = 80
		r.Reason = "address matches preferred location"
		return r
	}

	// Partial credit for shared words, floor 20 so a total mismatch still
	// ranks below any address match.
	prefWords := strings.Fields(pref)
	cityWords := strings.Fields(city)
	shared := 0
	for _, pw := range prefWords {
		for _, cw := range cityWords {
			if pw == cw {
				shared++
				break
			}
		}
	}
	if len(prefWords) > 0 && shared > 0 {
		r.Score = clamp(100*float64(shared)/float64(len(prefWords)), 20, 100)
		r.Reason = fmt.Sprintf("%d/%d location words shared", shared, len(prefWords))
	} else {
		r.Score = 20
		r.Reason = "different location"
	}
	return r
}

// AmenityCriterion scores the fraction of required amenities present.
// Matching is a case-insensitive substring test in either direction, so
// "parking" matches "covered parking".
func AmenityCriterion(l *store.Listing, p *store.PreferenceSpec) CriterionResult {
	r := CriterionResult{Name: "amenities"}
	if len(p.RequiredAmenities) == 0 {
		r.Score = 100
		r.Reason = "no amenities required"
		return r
	}
	matched := 0
	for _, req := range p.RequiredAmenities {
		if amenityPresent(l.Amenities, req) {
			matched++
		}
	}
	r.Score = 100 * float64(matched) / float64(len(p.RequiredAmenities))
	r.Reason = fmt.Sprintf("%d/%d required amenities present", matched, len(p.RequiredAmenities))
	return r
}

func amenityPresent(amenities []string, required string) bool {
	req := strings.TrimSpace(strings.ToLower(required))
	if req == "" {
		return false
	}
	for _, a := range amenities {
		have := strings.TrimSpace(strings.ToLower(a))
		if have == "" {
			continue
		}
		if strings.Contains(have, req) || strings.Contains(req, have) {
			return true
		}
	}
	return false
}

// SizeCriterion compares recorded floor area against an ideal derived from
// the bedroom requirement (40 sqm per bedroom plus 20). A listing with no
// recorded size scores a neutral 70 — missing data is not penalized.
func SizeCriterion(l *store.Listing, p *store.PreferenceSpec) CriterionResult {
	r := CriterionResult{Name: "size"}
	if l.SizeSqm == nil {
		r.Score = 70
		r.Reason = "size not recorded"
		return r
	}
	ideal := 40*float64(p.MinBedrooms) + 20
	diff := *l.SizeSqm - ideal
	if diff < 0 {
		diff = -diff
	}
	r.Score = clamp(100-100*diff/(0.5*ideal), 0, 100)
	r.Reason = fmt.Sprintf("%.0f sqm vs %.0f sqm ideal", *l.SizeSqm, ideal)
	return r
}

// FeatureCriterion scores the fraction of requested feature flags present.
// Only flags the preference sets to true impose a requirement.
func FeatureCriterion(l *store.Listing, p *store.PreferenceSpec) CriterionResult {
	return flagCriterion("features", p.Features.Requested(), l.Features.Has)
}

// UtilityCriterion is FeatureCriterion over the utility vocabulary.
func UtilityCriterion(l *store.Listing, p *store.PreferenceSpec) CriterionResult {
	return flagCriterion("utilities", p.Utilities.Requested(), l.Utilities.Has)
}

func flagCriterion(name string, requested []string, has func(string) bool) CriterionResult {
	r := CriterionResult{Name: name}
	if len(requested) == 0 {
		r.Score = 100
		r.Reason = "no " + name + " requested"
		return r
	}
	matched := 0
	for _, f := range requested {
		if has(f) {
			matched++
		}
	}
	r.Score = 100 * float64(matched) / float64(len(requested))
	r.Reason = fmt.Sprintf("%d/%d requested %s present", matched, len(requested), name)
	return r
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
