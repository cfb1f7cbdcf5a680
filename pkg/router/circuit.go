package router

import (
	"sync"
	"time"
)

// CircuitState is one of the three states of the circuit breaker state
// machine: closed (requests flow normally), open (requests are
// rejected immediately), half-open (a single trial request is allowed
// through to test recovery).
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig configures the failure threshold and timing of
// a per-backend circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker from closed to open.
	FailureThreshold int
	// OpenDuration is how long the breaker stays open before allowing a
	// half-open trial request.
	OpenDuration time.Duration
}

// DefaultCircuitBreakerConfig returns conservative defaults: trip after
// 5 consecutive failures, stay open for 30 seconds.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		OpenDuration:     30 * time.Second,
	}
}

// circuitBreaker is a per-backend state machine. All transitions are
// guarded by mu; it is safe for concurrent use across goroutines
// dispatching requests to the same backend.
type circuitBreaker struct {
	cfg CircuitBreakerConfig

	mu               sync.Mutex
	state            CircuitState
	consecutiveFails int
	openedAt         time.Time
}

func newCircuitBreaker(cfg CircuitBreakerConfig) *circuitBreaker {
	return &circuitBreaker{cfg: cfg, state: CircuitClosed}
}

// Allow reports whether a request may be dispatched right now. Calling
// Allow when the breaker is open and the open duration has elapsed
// transitions it to half-open and allows exactly one trial request
// through.
func (c *circuitBreaker) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(c.openedAt) >= c.cfg.OpenDuration {
			c.state = CircuitHalfOpen
			return true
		}
		return false
	case CircuitHalfOpen:
		// Only a single trial is in flight at a time; subsequent
		// requests are rejected until that trial resolves.
		return false
	}
	return false
}

// RecordSuccess reports a successful dispatch.
func (c *circuitBreaker) RecordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case CircuitHalfOpen:
		c.state = CircuitClosed
		c.consecutiveFails = 0
	case CircuitClosed:
		c.consecutiveFails = 0
	}
}

// RecordFailure reports a failed dispatch.
func (c *circuitBreaker) RecordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case CircuitHalfOpen:
		c.state = CircuitOpen
		c.openedAt = time.Now()
	case CircuitClosed:
		c.consecutiveFails++
		if c.consecutiveFails >= c.cfg.FailureThreshold {
			c.state = CircuitOpen
			c.openedAt = time.Now()
		}
	}
}

// State returns the current state for inspection (health reporting,
// tests). It does not perform the open -> half-open transition; call
// Allow for that.
func (c *circuitBreaker) State() CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// wouldAllow reports whether a request would be admitted right now,
// without mutating state or consuming the single half-open trial slot.
// Used to decide whether a backend belongs in a candidate list at all;
// the actual admission (and open -> half-open transition) happens once,
// in Allow, at the point a request is actually dispatched.
func (c *circuitBreaker) wouldAllow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case CircuitOpen:
		return time.Since(c.openedAt) >= c.cfg.OpenDuration
	default:
		return true
	}
}
