package matching

import (
	"fmt"
	"strings"

	"github.com/HavenLettings/Matchmaker/internal/store"
)

// Explain derives the ordered, human-readable reasons for one admitted
// match. Purely derivational: missing optional data drops the corresponding
// line instead of erroring.
func Explain(l *store.Listing, p *store.PreferenceSpec, score int) []string {
	var reasons []string

	switch {
	case l.Rent < p.BudgetMax:
		reasons = append(reasons, fmt.Sprintf("rent %.0f saves %.0f against your %.0f maximum", l.Rent, p.BudgetMax-l.Rent, p.BudgetMax))
	case l.Rent == p.BudgetMax:
		reasons = append(reasons, "rent matches your maximum budget")
	default:
		reasons = append(reasons, fmt.Sprintf("rent %.0f exceeds your %.0f maximum by %.0f", l.Rent, p.BudgetMax, l.Rent-p.BudgetMax))
	}

	if l.Address != "" || l.City != "" {
		loc := l.Address
		if l.City != "" {
			if loc != "" {
				loc += ", "
			}
			loc += l.City
		}
		reasons = append(reasons, "located at "+loc)
	}

	reasons = append(reasons, fmt.Sprintf("%d bedrooms, %d bathrooms", l.Bedrooms, l.Bathrooms))

	if len(p.RequiredAmenities) > 0 {
		var matched []string
		for _, req := range p.RequiredAmenities {
			if hasAmenityLike(l.Amenities, req) {
				matched = append(matched, req)
			}
		}
		if len(matched) > 0 {
			reasons = append(reasons, fmt.Sprintf("includes %d required amenities: %s", len(matched), strings.Join(matched, ", ")))
		}
	}

	if matched := matchedFlags(p.Features.Requested(), l.Features.Has); len(matched) > 0 {
		reasons = append(reasons, "has requested features: "+strings.Join(matched, ", "))
	}
	if matched := matchedFlags(p.Utilities.Requested(), l.Utilities.Has); len(matched) > 0 {
		reasons = append(reasons, "includes requested utilities: "+strings.Join(matched, ", "))
	}

	reasons = append(reasons, fmt.Sprintf("overall match score %d/100", score))
	return reasons
}

func matchedFlags(requested []string, has func(string) bool) []string {
	var out []string
	for _, f := range requested {
		if has(f) {
			out = append(out, f)
		}
	}
	return out
}

func hasAmenityLike(amenities []string, required string) bool {
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
