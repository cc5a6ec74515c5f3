package telemetry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PerformanceRecord is one engine run's footprint: latency, outcome, and
// run-quality statistics. Records are append-only.
type PerformanceRecord struct {
	ID                  uuid.UUID     `json:"id"`
	Algorithm           string        `json:"algorithm"`
	ExecutionTime       time.Duration `json:"execution_time"`
	MemoryDeltaBytes    int64         `json:"memory_delta_bytes"`
	Constraints         int           `json:"constraints"`
	CandidatesEvaluated int           `json:"candidates_evaluated"`
	MatchesFound        int           `json:"matches_found"`
	ObjectiveValue      float64       `json:"objective_value"`
	Success             bool          `json:"success"`
	Error               string        `json:"error,omitempty"`
	Timestamp           time.Time     `json:"timestamp"`
}

// AlgorithmStats aggregates runs for one algorithm id. Mean execution time
// and mean objective value cover successful runs only.
type AlgorithmStats struct {
	Algorithm         string        `json:"algorithm"`
	Runs              int           `json:"runs"`
	SuccessRate       float64       `json:"success_rate"`
	MeanExecutionTime time.Duration `json:"mean_execution_time"`
	MeanObjective     float64       `json:"mean_objective"`
}

// OverallStats aggregates across all algorithm ids.
type OverallStats struct {
	Runs              int                       `json:"runs"`
	SuccessRate       float64                   `json:"success_rate"`
	MeanExecutionTime time.Duration             `json:"mean_execution_time"`
	MeanObjective     float64                   `json:"mean_objective"`
	ByAlgorithm       map[string]AlgorithmStats `json:"by_algorithm"`
}

// DayStats is one calendar-day bucket of the trend query.
type DayStats struct {
	Day               string        `json:"day"`
	Runs              int           `json:"runs"`
	SuccessRate       float64       `json:"success_rate"`
	MeanExecutionTime time.Duration `json:"mean_execution_time"`
}

const (
	DefaultCapacity = 1000

	// efficiencyWindow bounds how many recent records feed the derived
	// efficiency score.
	efficiencyWindow = 100

	// latencyBaseline is the mean run latency that earns zero latency
	// credit; runs at or near instant earn the full 30 points.
	latencyBaseline = 5 * time.Second
)

// Store is the process-wide bounded run history. Every optimization run
// appends exactly one record; concurrent appends are serialized by a mutex
// and the oldest record is evicted once capacity is reached. Queries read a
// consistent snapshot and never mutate stored records.
type Store struct {
	mu       sync.RWMutex
	records  []PerformanceRecord
	capacity int

	metrics *Metrics
}

func NewStore(capacity int, metrics *Metrics) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		records:  make([]PerformanceRecord, 0, capacity),
		capacity: capacity,
		metrics:  metrics,
	}
}

// Record appends one run record, evicting the oldest entry if the store is
// at capacity.
func (s *Store) Record(r PerformanceRecord) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	s.mu.Lock()
	if len(s.records) >= s.capacity {
		s.records = s.records[1:]
	}
	s.records = append(s.records, r)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Observe(r)
		s.metrics.SetEfficiency(s.EfficiencyScore())
	}
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) snapshot() []PerformanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PerformanceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// AlgorithmStats aggregates runs recorded under one algorithm id.
func (s *Store) AlgorithmStats(algorithm string) AlgorithmStats {
	var subset []PerformanceRecord
	for _, r := range s.snapshot() {
		if r.Algorithm == algorithm {
			subset = append(subset, r)
		}
	}
	st := aggregate(subset)
	st.Algorithm = algorithm
	return st
}

// OverallStats aggregates all retained records plus a per-algorithm breakdown.
func (s *Store) OverallStats() OverallStats {
	records := s.snapshot()
	total := aggregate(records)

	byAlgo := make(map[string][]PerformanceRecord)
	for _, r := range records {
		byAlgo[r.Algorithm] = append(byAlgo[r.Algorithm], r)
	}
	breakdown := make(map[string]AlgorithmStats, len(byAlgo))
	for algo, subset := range byAlgo {
		st := aggregate(subset)
		st.Algorithm = algo
		breakdown[algo] = st
	}

	return OverallStats{
		Runs:              total.Runs,
		SuccessRate:       total.SuccessRate,
		MeanExecutionTime: total.MeanExecutionTime,
		MeanObjective:     total.MeanObjective,
		ByAlgorithm:       breakdown,
	}
}

// Trends buckets the retained records by calendar day over the last `days`
// days, newest day last.
func (s *Store) Trends(days int) []DayStats {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	buckets := make(map[string][]PerformanceRecord)
	for _, r := range s.snapshot() {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		day := r.Timestamp.Format("2006-01-02")
		buckets[day] = append(buckets[day], r)
	}

	keys := make([]string, 0, len(buckets))
	for day := range buckets {
		keys = append(keys, day)
	}
	sort.Strings(keys)

	out := make([]DayStats, 0, len(keys))
	for _, day := range keys {
		subset := buckets[day]
		st := aggregate(subset)
		out = append(out, DayStats{
			Day:               day,
			Runs:              st.Runs,
			SuccessRate:       st.SuccessRate,
			MeanExecutionTime: meanExecutionAll(subset),
		})
	}
	return out
}

// EfficiencyScore derives a 0–100 health score from the most recent 100
// records: 40 points for success rate, up to 30 for low mean latency, up to
// 30 for high mean objective value.
func (s *Store) EfficiencyScore() float64 {
	records := s.snapshot()
	if len(records) == 0 {
		return 0
	}
	if len(records) > efficiencyWindow {
		records = records[len(records)-efficiencyWindow:]
	}

	var successes int
	var totalTime time.Duration
	var totalObjective float64
	for _, r := range records {
		if r.Success {
			successes++
			totalObjective += r.ObjectiveValue
		}
		totalTime += r.ExecutionTime
	}

	successRate := float64(successes) / float64(len(records))
	meanTime := totalTime / time.Duration(len(records))

	timeComponent := 30 * (1 - float64(meanTime)/float64(latencyBaseline))
	if timeComponent < 0 {
		timeComponent = 0
	}

	var objectiveComponent float64
	if successes > 0 {
		objectiveComponent = 30 * (totalObjective / float64(successes))
	}
	if objectiveComponent > 30 {
		objectiveComponent = 30
	}

	score := 40*successRate + timeComponent + objectiveComponent
	if score > 100 {
		score = 100
	}
	return score
}

func aggregate(records []PerformanceRecord) AlgorithmStats {
	st := AlgorithmStats{Runs: len(records)}
	if len(records) == 0 {
		return st
	}

	var successes int
	var successTime time.Duration
	var successObjective float64
	for _, r := range records {
		if r.Success {
			successes++
			successTime += r.ExecutionTime
			successObjective += r.ObjectiveValue
		}
	}

	st.SuccessRate = float64(successes) / float64(len(records))
	if successes > 0 {
		st.MeanExecutionTime = successTime / time.Duration(successes)
		st.MeanObjective = successObjective / float64(successes)
	}
	return st
}

func meanExecutionAll(records []PerformanceRecord) time.Duration {
	if len(records) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range records {
		total += r.ExecutionTime
	}
	return total / time.Duration(len(records))
}
