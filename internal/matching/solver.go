package matching

import (
	"context"
	"sort"

	"github.com/HavenLettings/Matchmaker/internal/scoring"
	"github.com/HavenLettings/Matchmaker/internal/store"
)

// scoredCandidate pairs a listing with its scoring result and its position
// in the eligibility-filter output, which is the tie-break key.
type scoredCandidate struct {
	Listing       *store.Listing
	Scored        scoring.ScoredListing
	EligibleIndex int
}

// selectTopK is the single-requester solver: sort by composite descending
// (stable, so exact ties keep eligibility order) and take the first
// maxResults candidates clearing the threshold. With one requester competing
// for capacity this sort-and-take policy is the exact optimum.
//
// The context deadline is checked per commit; on expiry the partial
// selection is returned with timedOut=true.
func selectTopK(ctx context.Context, candidates []scoredCandidate, maxResults int, threshold float64) ([]scoredCandidate, bool) {
	ranked := make([]scoredCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scored.Composite > ranked[j].Scored.Composite
	})

	var selected []scoredCandidate
	for _, c := range ranked {
		if ctx.Err() != nil {
			return selected, true
		}
		if len(selected) >= maxResults {
			break
		}
		if c.Scored.Composite < threshold {
			break // ranked descending, nothing later clears the threshold
		}
		selected = append(selected, c)
	}
	return selected, false
}

// candidatePair is one (requester, listing) combination in the
// multi-requester assignment.
type candidatePair struct {
	Requester *store.PreferenceSpec
	Candidate scoredCandidate
}

// assignPairs is the multi-requester solver: a greedy pass over all pairs
// clearing the threshold, best score first, committing a pair only when
// neither the requester nor the listing has been committed. The result is a
// capacity-1-per-side assignment; the greedy policy is approximate, not the
// exact maximum-weight matching.
func assignPairs(ctx context.Context, pairs []candidatePair, maxResults int, threshold float64) ([]candidatePair, bool) {
	ranked := make([]candidatePair, len(pairs))
	copy(ranked, pairs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Candidate.Scored.Composite > ranked[j].Candidate.Scored.Composite
	})

	usedRequester := make(map[string]bool)
	usedListing := make(map[string]bool)

	var committed []candidatePair
	for _, p := range ranked {
		if ctx.Err() != nil {
			return committed, true
		}
		if len(committed) >= maxResults {
			break
		}
		if p.Candidate.Scored.Composite < threshold {
			break
		}
		reqKey := p.Requester.ID.String()
		listKey := p.Candidate.Listing.ID.String()
		if usedRequester[reqKey] || usedListing[listKey] {
			continue
		}
		usedRequester[reqKey] = true
		usedListing[listKey] = true
		committed = append(committed, p)
	}
	return committed, false
}
