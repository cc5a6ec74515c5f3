package scoring

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/HavenLettings/Matchmaker/internal/store"
)

// ScoredListing captures the complete scoring output for one
// listing–preference pair. Criteria holds the six sub-scores in a fixed
// order: budget, location, amenities, size, features, utilities.
type ScoredListing struct {
	ListingID uuid.UUID         `json:"listing_id"`
	Composite float64           `json:"composite"`
	Criteria  []CriterionResult `json:"criteria"`
}

// SubScore returns the named criterion's raw (unweighted) sub-score.
func (s ScoredListing) SubScore(name string) float64 {
	for _, c := range s.Criteria {
		if c.Name == name {
			return c.Score
		}
	}
	return 0
}

// CriterionNames lists the six criteria in scoring order.
var CriterionNames = []string{"budget", "location", "amenities", "size", "features", "utilities"}

// Scorer is the weighted additive scoring engine. It is pure: scoring reads
// only the listing and preference snapshots passed in.
type Scorer struct {
	weights WeightVector
	logger  *slog.Logger
}

func NewScorer(weights WeightVector, logger *slog.Logger) *Scorer {
	return &Scorer{weights: weights, logger: logger}
}

// Score computes the six sub-scores and their weighted composite for one
// listing against one preference. The composite is clamped to [0,100].
func (s *Scorer) Score(l *store.Listing, p *store.PreferenceSpec) ScoredListing {
	criteria := []CriterionResult{
		BudgetCriterion(l, p),
		LocationCriterion(l, p),
		AmenityCriterion(l, p),
		SizeCriterion(l, p),
		FeatureCriterion(l, p),
		UtilityCriterion(l, p),
	}

	weights := []float64{
		s.weights.Budget,
		s.weights.Location,
		s.weights.Amenities,
		s.weights.Size,
		s.weights.Features,
		s.weights.Utilities,
	}

	var total float64
	for i := range criteria {
		criteria[i].Weight = weights[i]
		criteria[i].Weighted = criteria[i].Score * weights[i]
		total += criteria[i].Weighted
	}

	return ScoredListing{
		ListingID: l.ID,
		Composite: clamp(total, 0, 100),
		Criteria:  criteria,
	}
}
