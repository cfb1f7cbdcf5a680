package router

import (
	"context"
	"time"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// HealthChecker actively probes open-circuit backends on an interval
// so they can recover without waiting for live traffic to trigger the
// circuit breaker's own half-open trial. It runs in its own goroutine
// and stops when ctx is cancelled.
type HealthChecker struct {
	router   *Router
	interval time.Duration
	probe    ir.ChatRequest
}

// NewHealthChecker builds a checker that probes every open-circuit
// backend with probeReq every interval.
func NewHealthChecker(router *Router, interval time.Duration, probeReq ir.ChatRequest) *HealthChecker {
	return &HealthChecker{router: router, interval: interval, probe: probeReq}
}

// Run blocks, probing on each tick, until ctx is cancelled.
func (h *HealthChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.probeOnce(ctx)
		}
	}
}

func (h *HealthChecker) probeOnce(ctx context.Context) {
	h.router.mu.RLock()
	entries := make([]*backendEntry, 0, len(h.router.order))
	for _, name := range h.router.order {
		entries = append(entries, h.router.backends[name])
	}
	h.router.mu.RUnlock()

	for _, e := range entries {
		if e.breaker.State() == CircuitClosed {
			continue
		}
		if !e.breaker.Allow() {
			continue
		}
		_, err := e.config.Backend.Execute(ctx, h.probe)
		if err != nil {
			e.breaker.RecordFailure()
		} else {
			e.breaker.RecordSuccess()
		}
	}
}
