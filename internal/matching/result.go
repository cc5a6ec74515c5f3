package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/HavenLettings/Matchmaker/internal/scoring"
)

// Match is one admitted listing bound to a requester, with the composite
// score rounded to the nearest integer, the full criterion breakdown, and
// ordered human-readable reasons.
type Match struct {
	RequesterID uuid.UUID                 `json:"requester_id"`
	ListingID   uuid.UUID                 `json:"listing_id"`
	Score       int                       `json:"score"`
	Criteria    []scoring.CriterionResult `json:"criteria"`
	Reasons     []string                  `json:"reasons"`
	ComputedAt  time.Time                 `json:"computed_at"`
}

// OptimizationResult is one run's output. Matches are ranked by descending
// composite score; exact ties keep the candidates' position in the
// eligibility-filter output.
type OptimizationResult struct {
	Matches              []Match       `json:"matches"`
	Algorithm            string        `json:"algorithm"`
	ExecutionTime        time.Duration `json:"execution_time"`
	ConstraintsSatisfied []string      `json:"constraints_satisfied"`
	ObjectiveValue       float64       `json:"objective_value"`
	CandidatesEvaluated  int           `json:"candidates_evaluated"`
	MatchCount           int           `json:"match_count"`
	TimedOut             bool          `json:"timed_out"`
}

// RequesterRank is one entry of a reverse query: a tenant ranked against a
// single listing.
type RequesterRank struct {
	RequesterID uuid.UUID                 `json:"requester_id"`
	TenantName  string                    `json:"tenant_name"`
	Score       int                       `json:"score"`
	Criteria    []scoring.CriterionResult `json:"criteria"`
}

// ReverseResult ranks the tenants whose hard constraints a listing satisfies.
type ReverseResult struct {
	ListingID           uuid.UUID       `json:"listing_id"`
	Ranked              []RequesterRank `json:"ranked"`
	Algorithm           string          `json:"algorithm"`
	ExecutionTime       time.Duration   `json:"execution_time"`
	RequestersEvaluated int             `json:"requesters_evaluated"`
	TimedOut            bool            `json:"timed_out"`
}

// BatchResult is the multi-requester assignment output: at most one listing
// per requester and one requester per listing.
type BatchResult struct {
	Matches        []Match       `json:"matches"`
	Algorithm      string        `json:"algorithm"`
	ExecutionTime  time.Duration `json:"execution_time"`
	PairsEvaluated int           `json:"pairs_evaluated"`
	ObjectiveValue float64       `json:"objective_value"`
	TimedOut       bool          `json:"timed_out"`
}
