package router

import (
	"time"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
)

// BackendConfig describes how a backend participates in routing:
// relative cost and latency figures used by the cost-optimized and
// latency-optimized selection strategies, and a selection weight used
// by weighted-random selection.
type BackendConfig struct {
	Backend adapter.BackendAdapter

	// CostPerMillionTokens is a rough blended cost figure (input and
	// output averaged) used only for relative ranking between
	// backends, not for billing.
	CostPerMillionTokens float64

	// Weight influences selection probability under the random
	// strategy; backends with a higher weight are chosen more often.
	// Zero defaults to 1.
	Weight int

	CircuitBreaker CircuitBreakerConfig
}

// backendEntry is the router's internal bookkeeping for one registered
// backend: its adapter, its circuit breaker, its rolling stats and its
// static configuration.
type backendEntry struct {
	name    string
	config  BackendConfig
	breaker *circuitBreaker
	stats   *backendStats
}

func newBackendEntry(name string, cfg BackendConfig) *backendEntry {
	cbCfg := cfg.CircuitBreaker
	if cbCfg.FailureThreshold == 0 {
		cbCfg = DefaultCircuitBreakerConfig()
	}
	return &backendEntry{
		name:    name,
		config:  cfg,
		breaker: newCircuitBreaker(cbCfg),
		stats:   newBackendStats(),
	}
}

// Healthy reports whether this backend is worth listing as a candidate
// right now: its circuit is closed, half-open, or open-but-past its
// cooldown. Actual admission still runs through breaker.Allow() at
// dispatch time, which enforces the single half-open trial.
func (e *backendEntry) Healthy() bool {
	return e.breaker.wouldAllow()
}

// backendStats tracks a small rolling window of latencies and a
// lifetime success/failure count per backend, used by the
// latency-optimized strategy and by Router.Stats.
type backendStats struct {
	*rollingStats
}

func newBackendStats() *backendStats {
	return &backendStats{rollingStats: newRollingStats()}
}

// averageLatency reports the mean of the current latency window, or 0
// if no samples have been recorded yet.
func (s *backendStats) averageLatency() time.Duration {
	return s.rollingStats.average()
}
