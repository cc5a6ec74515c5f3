package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/HavenLettings/Matchmaker/internal/store"
)

const (
	// SubjectMatchRequest lets collaborators trigger an optimization run
	// over the bus instead of HTTP.
	SubjectMatchRequest = "lettings.match.request"

	StreamName   = "LETTINGS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectMatchCompleted(runID string) string { return "lettings.match." + runID + ".completed" }
func SubjectMatchFailed(runID string) string    { return "lettings.match." + runID + ".failed" }
func SubjectMatchTimeout(runID string) string   { return "lettings.match." + runID + ".timeout" }

func SubjectListingCreated(listingID string) string { return "lettings.listing." + listingID + ".created" }
func SubjectListingUpdated(listingID string) string { return "lettings.listing." + listingID + ".updated" }
func SubjectListingDeleted(listingID string) string { return "lettings.listing." + listingID + ".deleted" }

func SubjectPreferenceCreated(prefID string) string { return "lettings.preference." + prefID + ".created" }
func SubjectPreferenceUpdated(prefID string) string { return "lettings.preference." + prefID + ".updated" }
func SubjectPreferenceDeleted(prefID string) string { return "lettings.preference." + prefID + ".deleted" }

// MatchRequestEvent is the payload accepted on SubjectMatchRequest.
type MatchRequestEvent struct {
	PreferenceID    string             `json:"preference_id"`
	WeightOverrides map[string]float64 `json:"weight_overrides,omitempty"`
	MaxResults      int                `json:"max_results,omitempty"`
}

// MatchCompletedEvent summarizes a finished run for bus consumers.
type MatchCompletedEvent struct {
	RunID               string  `json:"run_id"`
	PreferenceID        string  `json:"preference_id"`
	Algorithm           string  `json:"algorithm"`
	MatchCount          int     `json:"match_count"`
	ObjectiveValue      float64 `json:"objective_value"`
	CandidatesEvaluated int     `json:"candidates_evaluated"`
	DurationMs          int64   `json:"duration_ms"`
	TimedOut            bool    `json:"timed_out"`
}

// MatchFailedEvent reports a run that could not produce a result.
type MatchFailedEvent struct {
	RunID        string `json:"run_id"`
	PreferenceID string `json:"preference_id"`
	Error        string `json:"error"`
}

// EntityDeletedEvent is the payload of listing and preference deletions.
type EntityDeletedEvent struct {
	ID string `json:"id"`
}

// PublishMatchOutcome routes a finished run to its completed or timeout
// subject based on how the run ended.
func PublishMatchOutcome(ctx context.Context, c Client, ev MatchCompletedEvent) error {
	subject := SubjectMatchCompleted(ev.RunID)
	if ev.TimedOut {
		subject = SubjectMatchTimeout(ev.RunID)
	}
	return c.Publish(ctx, subject, ev)
}

// PublishMatchFailure reports a run that errored before producing a result.
func PublishMatchFailure(ctx context.Context, c Client, ev MatchFailedEvent) error {
	return c.Publish(ctx, SubjectMatchFailed(ev.RunID), ev)
}

func PublishListingCreated(ctx context.Context, c Client, l *store.Listing) error {
	return c.Publish(ctx, SubjectListingCreated(l.ID.String()), l)
}

func PublishListingUpdated(ctx context.Context, c Client, l *store.Listing) error {
	return c.Publish(ctx, SubjectListingUpdated(l.ID.String()), l)
}

func PublishListingDeleted(ctx context.Context, c Client, id uuid.UUID) error {
	return c.Publish(ctx, SubjectListingDeleted(id.String()), EntityDeletedEvent{ID: id.String()})
}

func PublishPreferenceCreated(ctx context.Context, c Client, p *store.PreferenceSpec) error {
	return c.Publish(ctx, SubjectPreferenceCreated(p.ID.String()), p)
}

func PublishPreferenceUpdated(ctx context.Context, c Client, p *store.PreferenceSpec) error {
	return c.Publish(ctx, SubjectPreferenceUpdated(p.ID.String()), p)
}

func PublishPreferenceDeleted(ctx context.Context, c Client, id uuid.UUID) error {
	return c.Publish(ctx, SubjectPreferenceDeleted(id.String()), EntityDeletedEvent{ID: id.String()})
}

// SubscribeMatchRequests decodes request payloads before handing them over.
// A decode failure is passed through so the caller can log and drop it.
func SubscribeMatchRequests(c Client, handler func(MatchRequestEvent, error)) error {
	return c.Subscribe(SubjectMatchRequest, func(_ string, data []byte) {
		var ev MatchRequestEvent
		err := json.Unmarshal(data, &ev)
		handler(ev, err)
	})
}
