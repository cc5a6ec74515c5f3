package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/HavenLettings/Matchmaker/internal/config"
	"github.com/HavenLettings/Matchmaker/internal/events"
	"github.com/HavenLettings/Matchmaker/internal/scoring"
	"github.com/HavenLettings/Matchmaker/internal/store"
	"github.com/HavenLettings/Matchmaker/internal/telemetry"
)

const (
	AlgorithmTopK            = "weighted_topk_v1"
	AlgorithmReverseRank     = "reverse_rank_v1"
	AlgorithmGreedyBipartite = "greedy_bipartite_v1"

	// satisfiedThreshold is the mean sub-score a criterion needs across the
	// returned matches to count as "satisfied" on the result.
	satisfiedThreshold = 70.0
)

// Engine turns a preference specification and a pool of candidate listings
// into a ranked, explainable set of matches. Each invocation owns its own
// inputs and result; the only shared mutable state is the telemetry store,
// which every run appends to regardless of outcome.
type Engine struct {
	store     store.Store
	events    events.Client
	telemetry *telemetry.Store
	defaults  scoring.WeightVector
	cfg       *config.Config
	logger    *slog.Logger
}

func New(s store.Store, ev events.Client, tel *telemetry.Store, cfg *config.Config, logger *slog.Logger) *Engine {
	defaults := scoring.WeightVector{
		Budget:    cfg.Matching.Weights.Budget,
		Location:  cfg.Matching.Weights.Location,
		Amenities: cfg.Matching.Weights.Amenities,
		Size:      cfg.Matching.Weights.Size,
		Features:  cfg.Matching.Weights.Features,
		Utilities: cfg.Matching.Weights.Utilities,
	}
	return &Engine{
		store:     s,
		events:    ev,
		telemetry: tel,
		defaults:  defaults,
		cfg:       cfg,
		logger:    logger,
	}
}

// Optimize runs one single-requester match: validate weights, filter the
// candidate pool down to hard-constraint survivors, score each, select the
// top maxResults above the admission threshold, and explain the picks.
// A telemetry record is written on every path, including failures.
func (e *Engine) Optimize(ctx context.Context, pref *store.PreferenceSpec, weightOverrides map[string]float64, maxResults int) (*OptimizationResult, error) {
	start := time.Now()
	runID := uuid.New()
	memBefore := heapInUse()

	if maxResults <= 0 {
		maxResults = e.cfg.Matching.DefaultMaxResults
	}

	// Weight validation runs before any candidate is touched, so a
	// configuration error never pays for filtering or scoring.
	weights, err := e.defaults.Merge(weightOverrides)
	if err == nil {
		err = weights.Validate()
	}
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrInvalidWeights, err)
		e.recordRun(runID, AlgorithmTopK, pref, start, memBefore, 0, 0, 0, wrapped)
		e.publishFailed(runID, pref, wrapped)
		return nil, wrapped
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.MaxExecutionTime())
	defer cancel()

	candidates, err := e.store.FindCandidates(runCtx, BuildListingFilter(pref, e.cfg.Matching.MaxCandidatesPerRun))
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
		e.recordRun(runID, AlgorithmTopK, pref, start, memBefore, 0, 0, 0, wrapped)
		e.publishFailed(runID, pref, wrapped)
		return nil, wrapped
	}

	// Re-apply the exact eligibility semantics in memory; the SQL prefilter
	// is allowed to be permissive.
	var eligible []*store.Listing
	for _, l := range candidates {
		if Eligible(pref, l) {
			eligible = append(eligible, l)
		}
	}

	scorer := scoring.NewScorer(weights, e.logger)
	scored := make([]scoredCandidate, 0, len(eligible))
	for i, l := range eligible {
		scored = append(scored, scoredCandidate{
			Listing:       l,
			Scored:        scorer.Score(l, pref),
			EligibleIndex: i,
		})
	}

	selected, timedOut := selectTopK(runCtx, scored, maxResults, e.cfg.Matching.MinMatchThreshold)

	result := &OptimizationResult{
		Algorithm:           AlgorithmTopK,
		CandidatesEvaluated: len(scored),
		TimedOut:            timedOut,
	}
	now := time.Now()
	for _, c := range selected {
		score := int(math.Round(c.Scored.Composite))
		result.Matches = append(result.Matches, Match{
			RequesterID: pref.ID,
			ListingID:   c.Listing.ID,
			Score:       score,
			Criteria:    c.Scored.Criteria,
			Reasons:     Explain(c.Listing, pref, score),
			ComputedAt:  now,
		})
	}
	result.MatchCount = len(result.Matches)
	result.ObjectiveValue = objectiveValue(selected)
	result.ConstraintsSatisfied = satisfiedCriteria(selected)
	result.ExecutionTime = time.Since(start)

	var runErr error
	if timedOut {
		runErr = context.DeadlineExceeded
	}
	e.recordRun(runID, AlgorithmTopK, pref, start, memBefore, len(scored), result.MatchCount, result.ObjectiveValue, runErr)
	e.publishCompleted(runID, pref, result)

	e.logger.Info("optimization run finished",
		"run_id", runID,
		"preference_id", pref.ID,
		"candidates", len(scored),
		"matches", result.MatchCount,
		"objective", result.ObjectiveValue,
		"timed_out", timedOut,
		"duration_ms", result.ExecutionTime.Milliseconds(),
	)
	return result, nil
}

// OptimizeReverse ranks the tenants whose hard constraints a listing
// satisfies — "best tenants for this property". Default weights apply.
func (e *Engine) OptimizeReverse(ctx context.Context, listing *store.Listing, maxResults int) (*ReverseResult, error) {
	start := time.Now()
	runID := uuid.New()
	memBefore := heapInUse()

	if maxResults <= 0 {
		maxResults = e.cfg.Matching.DefaultMaxResults
	}

	// Reverse runs score with the default weights, so a misconfigured
	// vector fails here the same way an override does in Optimize.
	if err := e.defaults.Validate(); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrInvalidWeights, err)
		e.recordReverse(runID, start, memBefore, 0, 0, 0, wrapped)
		return nil, wrapped
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.MaxExecutionTime())
	defer cancel()

	rent := listing.Rent
	requesters, err := e.store.FindRequesters(runCtx, store.PreferenceFilter{
		MaxBudgetAtLeast: &rent,
		Limit:            e.cfg.Matching.MaxCandidatesPerRun,
	})
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
		e.recordReverse(runID, start, memBefore, 0, 0, 0, wrapped)
		return nil, wrapped
	}

	scorer := scoring.NewScorer(e.defaults, e.logger)
	result := &ReverseResult{
		ListingID: listing.ID,
		Algorithm: AlgorithmReverseRank,
	}

	type rankedPref struct {
		pref   *store.PreferenceSpec
		scored scoring.ScoredListing
	}
	var ranked []rankedPref
	for _, p := range requesters {
		if runCtx.Err() != nil {
			result.TimedOut = true
			break
		}
		if !Eligible(p, listing) {
			continue
		}
		ranked = append(ranked, rankedPref{pref: p, scored: scorer.Score(listing, p)})
	}
	result.RequestersEvaluated = len(ranked)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].scored.Composite > ranked[j].scored.Composite
	})

	var objective float64
	for _, r := range ranked {
		if len(result.Ranked) >= maxResults {
			break
		}
		if r.scored.Composite < e.cfg.Matching.MinMatchThreshold {
			break
		}
		result.Ranked = append(result.Ranked, RequesterRank{
			RequesterID: r.pref.ID,
			TenantName:  r.pref.TenantName,
			Score:       int(math.Round(r.scored.Composite)),
			Criteria:    r.scored.Criteria,
		})
		objective += r.scored.Composite / 100
	}
	if len(result.Ranked) > 0 {
		objective /= float64(len(result.Ranked))
	}
	result.ExecutionTime = time.Since(start)

	var runErr error
	if result.TimedOut {
		runErr = context.DeadlineExceeded
	}
	e.recordReverse(runID, start, memBefore, result.RequestersEvaluated, len(result.Ranked), objective, runErr)
	return result, nil
}

// MatchBatch assigns listings to many requesters at once: at most one
// listing per requester, one requester per listing, each committed pair
// clearing the admission threshold. The greedy strategy is approximate for
// the multi-requester case and documented as such.
func (e *Engine) MatchBatch(ctx context.Context, prefs []*store.PreferenceSpec, maxResults int) (*BatchResult, error) {
	start := time.Now()
	runID := uuid.New()
	memBefore := heapInUse()

	if maxResults <= 0 {
		maxResults = e.cfg.Matching.DefaultMaxResults
	}

	if err := e.defaults.Validate(); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrInvalidWeights, err)
		e.recordBatch(runID, start, memBefore, len(prefs), 0, 0, 0, wrapped)
		return nil, wrapped
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.MaxExecutionTime())
	defer cancel()

	status := store.StatusAvailable
	listings, err := e.store.FindCandidates(runCtx, store.ListingFilter{
		Status: &status,
		Limit:  e.cfg.Matching.MaxCandidatesPerRun,
	})
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
		e.recordBatch(runID, start, memBefore, len(prefs), 0, 0, 0, wrapped)
		return nil, wrapped
	}

	scorer := scoring.NewScorer(e.defaults, e.logger)
	var pairs []candidatePair
	for _, p := range prefs {
		for i, l := range listings {
			if !Eligible(p, l) {
				continue
			}
			pairs = append(pairs, candidatePair{
				Requester: p,
				Candidate: scoredCandidate{
					Listing:       l,
					Scored:        scorer.Score(l, p),
					EligibleIndex: i,
				},
			})
		}
	}

	committed, timedOut := assignPairs(runCtx, pairs, maxResults, e.cfg.Matching.MinMatchThreshold)

	result := &BatchResult{
		Algorithm:      AlgorithmGreedyBipartite,
		PairsEvaluated: len(pairs),
		TimedOut:       timedOut,
	}
	now := time.Now()
	var objective float64
	for _, c := range committed {
		score := int(math.Round(c.Candidate.Scored.Composite))
		result.Matches = append(result.Matches, Match{
			RequesterID: c.Requester.ID,
			ListingID:   c.Candidate.Listing.ID,
			Score:       score,
			Criteria:    c.Candidate.Scored.Criteria,
			Reasons:     Explain(c.Candidate.Listing, c.Requester, score),
			ComputedAt:  now,
		})
		objective += c.Candidate.Scored.Composite / 100
	}
	if len(committed) > 0 {
		objective /= float64(len(committed))
	}
	result.ObjectiveValue = objective
	result.ExecutionTime = time.Since(start)

	var runErr error
	if timedOut {
		runErr = context.DeadlineExceeded
	}
	e.recordBatch(runID, start, memBefore, len(prefs), len(pairs), len(result.Matches), objective, runErr)
	return result, nil
}

// SetupSubscriptions wires bus-triggered matching: a match request event
// loads the preference and runs a normal optimization.
func (e *Engine) SetupSubscriptions() {
	if e.events == nil {
		return
	}
	_ = events.SubscribeMatchRequests(e.events, func(req events.MatchRequestEvent, err error) {
		if err != nil {
			e.logger.Warn("invalid match request event", "error", err)
			return
		}
		id, err := uuid.Parse(req.PreferenceID)
		if err != nil {
			e.logger.Warn("invalid preference id in match request", "preference_id", req.PreferenceID)
			return
		}
		ctx := context.Background()
		pref, err := e.store.GetPreference(ctx, id)
		if err != nil || pref == nil {
			e.logger.Warn("preference not found for match request", "preference_id", req.PreferenceID, "error", err)
			return
		}
		if _, err := e.Optimize(ctx, pref, req.WeightOverrides, req.MaxResults); err != nil {
			e.logger.Warn("bus-triggered optimization failed", "preference_id", req.PreferenceID, "error", err)
		}
	})
}

func objectiveValue(selected []scoredCandidate) float64 {
	if len(selected) == 0 {
		return 0
	}
	var sum float64
	for _, c := range selected {
		sum += c.Scored.Composite / 100
	}
	return sum / float64(len(selected))
}

// satisfiedCriteria returns the criteria whose mean sub-score across the
// returned matches clears the satisfaction threshold.
func satisfiedCriteria(selected []scoredCandidate) []string {
	if len(selected) == 0 {
		return nil
	}
	totals := make(map[string]float64, len(scoring.CriterionNames))
	for _, c := range selected {
		for _, cr := range c.Scored.Criteria {
			totals[cr.Name] += cr.Score
		}
	}
	var out []string
	for _, name := range scoring.CriterionNames {
		if totals[name]/float64(len(selected)) >= satisfiedThreshold {
			out = append(out, name)
		}
	}
	return out
}

func (e *Engine) recordRun(runID uuid.UUID, algorithm string, pref *store.PreferenceSpec, start time.Time, memBefore int64, evaluated, matches int, objective float64, runErr error) {
	if e.telemetry == nil {
		return
	}
	rec := telemetry.PerformanceRecord{
		ID:                  runID,
		Algorithm:           algorithm,
		ExecutionTime:       time.Since(start),
		MemoryDeltaBytes:    heapInUse() - memBefore,
		Constraints:         constraintCount(pref),
		CandidatesEvaluated: evaluated,
		MatchesFound:        matches,
		ObjectiveValue:      objective,
		Success:             runErr == nil,
	}
	if runErr != nil {
		rec.Error = errorLabel(runErr)
	}
	e.telemetry.Record(rec)
}

func (e *Engine) recordReverse(runID uuid.UUID, start time.Time, memBefore int64, evaluated, matches int, objective float64, runErr error) {
	if e.telemetry == nil {
		return
	}
	rec := telemetry.PerformanceRecord{
		ID:                  runID,
		Algorithm:           AlgorithmReverseRank,
		ExecutionTime:       time.Since(start),
		MemoryDeltaBytes:    heapInUse() - memBefore,
		Constraints:         1,
		CandidatesEvaluated: evaluated,
		MatchesFound:        matches,
		ObjectiveValue:      objective,
		Success:             runErr == nil,
	}
	if runErr != nil {
		rec.Error = errorLabel(runErr)
	}
	e.telemetry.Record(rec)
}

func (e *Engine) recordBatch(runID uuid.UUID, start time.Time, memBefore int64, requesters, pairs, matches int, objective float64, runErr error) {
	if e.telemetry == nil {
		return
	}
	rec := telemetry.PerformanceRecord{
		ID:                  runID,
		Algorithm:           AlgorithmGreedyBipartite,
		ExecutionTime:       time.Since(start),
		MemoryDeltaBytes:    heapInUse() - memBefore,
		Constraints:         requesters,
		CandidatesEvaluated: pairs,
		MatchesFound:        matches,
		ObjectiveValue:      objective,
		Success:             runErr == nil,
	}
	if runErr != nil {
		rec.Error = errorLabel(runErr)
	}
	e.telemetry.Record(rec)
}

func errorLabel(err error) string {
	switch {
	case err == context.DeadlineExceeded:
		return "timeout"
	default:
		return err.Error()
	}
}

func (e *Engine) publishCompleted(runID uuid.UUID, pref *store.PreferenceSpec, result *OptimizationResult) {
	if e.events == nil {
		return
	}
	// The run context may already be expired on the timeout path; the
	// publish gets its own.
	_ = events.PublishMatchOutcome(context.Background(), e.events, events.MatchCompletedEvent{
		RunID:               runID.String(),
		PreferenceID:        pref.ID.String(),
		Algorithm:           result.Algorithm,
		MatchCount:          result.MatchCount,
		ObjectiveValue:      result.ObjectiveValue,
		CandidatesEvaluated: result.CandidatesEvaluated,
		DurationMs:          result.ExecutionTime.Milliseconds(),
		TimedOut:            result.TimedOut,
	})
}

func (e *Engine) publishFailed(runID uuid.UUID, pref *store.PreferenceSpec, err error) {
	if e.events == nil {
		return
	}
	_ = events.PublishMatchFailure(context.Background(), e.events, events.MatchFailedEvent{
		RunID:        runID.String(),
		PreferenceID: pref.ID.String(),
		Error:        err.Error(),
	})
}

func heapInUse() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.HeapInuse)
}
