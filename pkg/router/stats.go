package router

import (
	"sort"
	"sync"
	"time"
)

const rollingWindowSize = 200

// rollingStats is a ring buffer of recent latencies plus lifetime
// success/failure counters, shared by every backendEntry and by the
// Router's own aggregate Stats.
type rollingStats struct {
	mu        sync.Mutex
	window    []time.Duration
	pos       int
	success   int64
	failure   int64
	totalCost float64
}

func newRollingStats() *rollingStats {
	return &rollingStats{window: make([]time.Duration, 0, rollingWindowSize)}
}

func (s *rollingStats) record(d time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		s.success++
	} else {
		s.failure++
	}

	if len(s.window) < rollingWindowSize {
		s.window = append(s.window, d)
	} else {
		s.window[s.pos] = d
		s.pos = (s.pos + 1) % rollingWindowSize
	}
}

// addCost accumulates a backend's own EstimateCost result into the
// lifetime total tracked for it.
func (s *rollingStats) addCost(c float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalCost += c
}

// averageCost returns totalCost divided by the number of recorded
// successes, or 0 if there have been none yet.
func (s *rollingStats) averageCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.success == 0 {
		return 0
	}
	return s.totalCost / float64(s.success)
}

func (s *rollingStats) average() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.window) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.window {
		total += d
	}
	return total / time.Duration(len(s.window))
}

// BackendSnapshot is a point-in-time view of one backend's health and
// performance, returned by Router.Stats.
type BackendSnapshot struct {
	Name           string
	State          CircuitState
	SuccessCount   int64
	FailureCount   int64
	AverageLatency time.Duration
	P95Latency     time.Duration
	// TotalCost is the running sum of BackendAdapter.EstimateCost
	// results for this backend, 0 if it doesn't implement CostEstimator.
	TotalCost float64
}

// RouterStats is a point-in-time snapshot of a Router's overall health:
// every backend's snapshot plus the number of requests that only
// succeeded after falling over from an earlier, failed candidate.
type RouterStats struct {
	Backends       []BackendSnapshot
	TotalFallbacks int64
}

func (s *rollingStats) snapshot() (p95 time.Duration) {
	s.mu.Lock()
	samples := make([]time.Duration, len(s.window))
	copy(samples, s.window)
	s.mu.Unlock()

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	if len(samples) == 0 {
		return 0
	}
	idx := int(0.95 * float64(len(samples)))
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}
