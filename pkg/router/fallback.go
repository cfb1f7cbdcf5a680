package router

import (
	"context"
	"sync"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

// FallbackMode selects how the router behaves when its first-choice
// backend fails.
type FallbackMode string

const (
	// FallbackNone disables fallback: a failure is returned to the
	// caller immediately.
	FallbackNone FallbackMode = "none"
	// FallbackSequential tries each remaining healthy candidate in
	// order until one succeeds or the list is exhausted.
	FallbackSequential FallbackMode = "sequential"
	// FallbackParallel dispatches to several candidates concurrently
	// and returns according to ParallelDispatchMode.
	FallbackParallel FallbackMode = "parallel"
)

// ParallelDispatchMode controls which result FallbackParallel returns.
type ParallelDispatchMode string

const (
	// DispatchFirst returns the first response to complete, success or
	// failure.
	DispatchFirst ParallelDispatchMode = "first"
	// DispatchFastestSuccess returns the first successful response,
	// waiting past failures if faster candidates failed.
	DispatchFastestSuccess ParallelDispatchMode = "fastest_success"
	// DispatchAll waits for every candidate to finish (so every
	// breaker observes an honest result) before returning the first
	// success found among them, or an aggregate error if none
	// succeeded.
	DispatchAll ParallelDispatchMode = "all"
)

type parallelResult struct {
	entry *backendEntry
	resp  ir.ChatResponse
	err   error
}

// dispatchSequential tries candidates in order, recording
// success/failure against each one's circuit breaker, and returns the
// first success. If an earlier candidate failed before the eventual
// success, onFailover (if non-nil) is called with the last-failed and
// the succeeding backend's names. If every candidate fails, it returns
// a RouterError wrapping the last failure.
func dispatchSequential(ctx context.Context, req ir.ChatRequest, candidates []*backendEntry, exec func(*backendEntry) (ir.ChatResponse, error), onFailover func(previous, current string)) (ir.ChatResponse, error) {
	var lastErr error
	var lastTried string
	tried := make([]string, 0, len(candidates))

	for _, c := range candidates {
		if !c.breaker.Allow() {
			continue
		}
		tried = append(tried, c.name)
		resp, err := exec(c)
		if err == nil {
			c.breaker.RecordSuccess()
			if lastTried != "" && onFailover != nil {
				onFailover(lastTried, c.name)
			}
			return resp, nil
		}
		c.breaker.RecordFailure()
		lastErr = err
		lastTried = c.name
	}

	if len(tried) == 0 {
		return ir.ChatResponse{}, irerrors.ErrNoBackend
	}
	return ir.ChatResponse{}, irerrors.NewRouterError("all backends failed", tried, lastErr)
}

// dispatchParallel fans out to every candidate concurrently and
// resolves according to mode. Every goroutine's success/failure is
// still recorded against its own circuit breaker, even for goroutines
// whose result the caller ultimately discards (DispatchFirst /
// DispatchFastestSuccess), so the breaker state stays accurate.
func dispatchParallel(ctx context.Context, req ir.ChatRequest, candidates []*backendEntry, mode ParallelDispatchMode, exec func(*backendEntry) (ir.ChatResponse, error)) (ir.ChatResponse, error) {
	usable := make([]*backendEntry, 0, len(candidates))
	for _, c := range candidates {
		if c.breaker.Allow() {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return ir.ChatResponse{}, irerrors.ErrNoBackend
	}

	results := make(chan parallelResult, len(usable))
	var wg sync.WaitGroup
	for _, c := range usable {
		wg.Add(1)
		go func(c *backendEntry) {
			defer wg.Done()
			resp, err := exec(c)
			if err == nil {
				c.breaker.RecordSuccess()
			} else {
				c.breaker.RecordFailure()
			}
			results <- parallelResult{entry: c, resp: resp, err: err}
		}(c)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	switch mode {
	case DispatchFirst:
		r := <-results
		return r.resp, r.err

	case DispatchFastestSuccess:
		// Return as soon as any candidate succeeds, without waiting
		// for the rest; stragglers still update their own breaker via
		// the goroutine above once they finish.
		var lastErr error
		tried := make([]string, 0, len(usable))
		for r := range results {
			tried = append(tried, r.entry.name)
			if r.err == nil {
				return r.resp, nil
			}
			lastErr = r.err
		}
		return ir.ChatResponse{}, irerrors.NewRouterError("all parallel backends failed", tried, lastErr)

	case DispatchAll:
		// Wait for every candidate to finish before deciding, so every
		// breaker observes an honest result even though only one
		// response is ultimately returned.
		all := make([]parallelResult, 0, len(usable))
		for r := range results {
			all = append(all, r)
		}
		tried := make([]string, 0, len(all))
		var lastErr error
		for _, r := range all {
			tried = append(tried, r.entry.name)
			if r.err == nil {
				return r.resp, nil
			}
			lastErr = r.err
		}
		return ir.ChatResponse{}, irerrors.NewRouterError("all parallel backends failed", tried, lastErr)

	default:
		r := <-results
		return r.resp, r.err
	}
}
