package matching

import "errors"

var (
	// ErrInvalidWeights rejects a weight vector that does not sum to 1.0
	// or carries a component outside [0,1]. Fatal to the single run.
	ErrInvalidWeights = errors.New("invalid weight vector")

	// ErrDataSourceUnavailable wraps collaborator query failures. Retryable
	// by the caller; the run is still telemetry-recorded as unsuccessful.
	ErrDataSourceUnavailable = errors.New("data source unavailable")
)
