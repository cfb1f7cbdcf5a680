// Package router implements a composite adapter.BackendAdapter that
// selects among registered backends, translates model names per
// backend, and falls over to another backend when the selected one
// fails or its circuit breaker is open.
package router

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

var (
	errNoMatch = errors.New("router: strategy found no matching backend")
	// ErrBackendExists is returned by Register when name is already in use.
	ErrBackendExists = errors.New("router: backend name already registered")
	// ErrCannotUnregister is returned by Unregister when name is the
	// configured default backend or the last remaining backend.
	ErrCannotUnregister = errors.New("router: cannot unregister default or last remaining backend")
)

// Config configures a Router.
type Config struct {
	Strategy SelectionStrategy
	Fallback FallbackMode
	Dispatch ParallelDispatchMode
	Translation ModelTranslation
	// DefaultBackend names the backend orderedCandidates falls back to
	// when the selection strategy finds no match. It also cannot be
	// removed by Unregister while it is still registered.
	DefaultBackend string
	// AllowStreamRewind lets the router retry a streaming request
	// against a fallback backend after the first backend failed before
	// emitting any chunk. It is opt-in because once a backend has
	// delivered even one chunk to the caller, a retry would duplicate
	// output; the router only rewinds pre-first-chunk failures.
	AllowStreamRewind bool
}

// RouterEventType names the events a Router emits to listeners
// registered with On.
type RouterEventType string

// EventBackendFailover fires whenever dispatchSequential succeeds on a
// candidate after an earlier candidate in the same call failed over.
const EventBackendFailover RouterEventType = "backend:failover"

// FailoverEvent carries the data delivered to a RouterEventListener.
type FailoverEvent struct {
	Type     RouterEventType
	Previous string
	Current  string
}

// RouterEventListener receives Router lifecycle events.
type RouterEventListener func(FailoverEvent)

// Router is itself an adapter.BackendAdapter, so it can be used
// anywhere a single backend is expected — including as the backend a
// bridge.Bridge wraps, giving every bridge middleware visibility into
// routed requests too.
type Router struct {
	mu       sync.RWMutex
	backends map[string]*backendEntry
	order    []string
	cfg      Config

	fallbacks atomic.Int64

	eventMu   sync.RWMutex
	listeners []RouterEventListener
}

// New constructs a Router. If cfg.Strategy is nil, ModelBasedStrategy
// is used.
func New(cfg Config) *Router {
	if cfg.Strategy == nil {
		cfg.Strategy = ModelBasedStrategy{}
	}
	if cfg.Fallback == "" {
		cfg.Fallback = FallbackSequential
	}
	if cfg.Dispatch == "" {
		cfg.Dispatch = DispatchFastestSuccess
	}
	return &Router{backends: make(map[string]*backendEntry), cfg: cfg}
}

func (r *Router) Name() string { return "router" }

// Capabilities reports the union of every registered backend's
// capabilities, since the router itself can satisfy a request as long
// as some backend can.
func (r *Router) Capabilities() adapter.Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var caps adapter.Capabilities
	for _, e := range r.backends {
		c := e.config.Backend.Capabilities()
		caps.SupportsStreaming = caps.SupportsStreaming || c.SupportsStreaming
		caps.SupportsTools = caps.SupportsTools || c.SupportsTools
		caps.SupportsImageInput = caps.SupportsImageInput || c.SupportsImageInput
		caps.SupportsStructuredOutput = caps.SupportsStructuredOutput || c.SupportsStructuredOutput
		caps.Models = append(caps.Models, c.Models...)
	}
	return caps
}

// Register adds a backend under the given name. Re-registering an
// already-known name fails with ErrBackendExists; use Unregister first
// to replace a backend.
func (r *Router) Register(name string, cfg BackendConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return ErrBackendExists
	}
	r.backends[name] = newBackendEntry(name, cfg)
	r.order = append(r.order, name)
	return nil
}

// Unregister removes a backend. Requests already in flight against it
// are unaffected. Unregistering the configured default backend, or the
// last remaining backend, fails with ErrCannotUnregister.
func (r *Router) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; !exists {
		return nil
	}
	if name == r.cfg.DefaultBackend || len(r.order) <= 1 {
		return ErrCannotUnregister
	}

	delete(r.backends, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// On registers a listener for Router lifecycle events. Returns a
// function that unregisters the listener.
func (r *Router) On(eventType RouterEventType, listener RouterEventListener) func() {
	r.eventMu.Lock()
	defer r.eventMu.Unlock()
	wrapped := func(e FailoverEvent) {
		if e.Type == eventType {
			listener(e)
		}
	}
	r.listeners = append(r.listeners, wrapped)
	idx := len(r.listeners) - 1
	return func() {
		r.eventMu.Lock()
		defer r.eventMu.Unlock()
		if idx < len(r.listeners) {
			r.listeners[idx] = func(FailoverEvent) {}
		}
	}
}

func (r *Router) emit(e FailoverEvent) {
	r.eventMu.RLock()
	listeners := make([]RouterEventListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.eventMu.RUnlock()
	for _, l := range listeners {
		l(e)
	}
}

// ListBackends returns registered backend names in registration order.
func (r *Router) ListBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Stats returns a point-in-time snapshot of every backend's health and
// performance, plus the router-wide fallback counter.
func (r *Router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]BackendSnapshot, 0, len(r.order))
	for _, name := range r.order {
		e := r.backends[name]
		backends = append(backends, BackendSnapshot{
			Name:           name,
			State:          e.breaker.State(),
			SuccessCount:   e.stats.success,
			FailureCount:   e.stats.failure,
			AverageLatency: e.stats.averageLatency(),
			P95Latency:     e.stats.snapshot(),
			TotalCost:      e.stats.totalCost,
		})
	}
	return RouterStats{Backends: backends, TotalFallbacks: r.fallbacks.Load()}
}

// healthyCandidates returns every registered backend whose circuit
// breaker currently allows traffic, in registration order.
func (r *Router) healthyCandidates() []*backendEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*backendEntry, 0, len(r.order))
	for _, name := range r.order {
		e := r.backends[name]
		if e.Healthy() {
			out = append(out, e)
		}
	}
	return out
}

// orderedCandidates returns the selected backend first, followed by
// every other healthy backend in registration order, so fallback has a
// deterministic trial sequence.
func (r *Router) orderedCandidates(req ir.ChatRequest) ([]*backendEntry, error) {
	healthy := r.healthyCandidates()
	if len(healthy) == 0 {
		return nil, irerrors.ErrNoBackend
	}

	strategy := r.cfg.Strategy
	if want, ok := req.Metadata.Custom["backend"].(string); ok && want != "" {
		strategy = ExplicitStrategy{}
	}

	first, err := strategy.Select(req, healthy)
	if err != nil {
		// Selection found no match: prefer the configured default
		// backend (if healthy), then fall back to the full healthy set
		// in registration order.
		if r.cfg.DefaultBackend != "" {
			for _, c := range healthy {
				if c.name == r.cfg.DefaultBackend {
					first = c
					break
				}
			}
		}
		if first == nil {
			return healthy, nil
		}
	}

	ordered := make([]*backendEntry, 0, len(healthy))
	ordered = append(ordered, first)
	for _, c := range healthy {
		if c != first {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// translate resolves the model name to send entry for req, applying
// ModelTranslation.Resolve. An error here means StrictMode is set and
// no translation was found.
func (r *Router) translate(entry *backendEntry, req ir.ChatRequest) (ir.ChatRequest, error) {
	if req.Parameters == nil {
		return req, nil
	}
	resolved, err := r.cfg.Translation.Resolve(entry.name, req.Parameters.Model)
	if err != nil {
		return req, err
	}
	if resolved == req.Parameters.Model {
		return req, nil
	}
	params := *req.Parameters
	params.Model = resolved
	req.Parameters = &params
	return req, nil
}

// Execute selects a backend (or backends, under fallback) and executes
// the request.
func (r *Router) Execute(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
	candidates, err := r.orderedCandidates(req)
	if err != nil {
		return ir.ChatResponse{}, err
	}

	exec := func(e *backendEntry) (ir.ChatResponse, error) {
		translated, err := r.translate(e, req)
		if err != nil {
			return ir.ChatResponse{}, err
		}
		start := time.Now()
		resp, err := e.config.Backend.Execute(ctx, translated)
		e.stats.record(time.Since(start), err == nil)
		if err == nil {
			resp.Metadata.Provenance.Router = r.Name()
			resp.Metadata.Provenance.Backend = e.name
			if estimator, ok := e.config.Backend.(adapter.CostEstimator); ok && resp.Usage != nil {
				e.stats.addCost(estimator.EstimateCost(*resp.Usage))
			}
		}
		return resp, err
	}

	if r.cfg.Fallback == FallbackNone {
		c := candidates[0]
		if !c.breaker.Allow() {
			return ir.ChatResponse{}, irerrors.ErrCircuitOpen
		}
		resp, err := exec(c)
		if err == nil {
			c.breaker.RecordSuccess()
		} else {
			c.breaker.RecordFailure()
		}
		return resp, err
	}
	if r.cfg.Fallback == FallbackParallel {
		return dispatchParallel(ctx, req, candidates, r.cfg.Dispatch, exec)
	}
	return dispatchSequential(ctx, req, candidates, exec, r.onFailover)
}

// onFailover records a successful fallback and emits EventBackendFailover.
func (r *Router) onFailover(previous, current string) {
	r.fallbacks.Add(1)
	r.emit(FailoverEvent{Type: EventBackendFailover, Previous: previous, Current: current})
}

// ExecuteStream selects a single backend for streaming. Fallback for
// streaming only rewinds before the first chunk has been delivered,
// and only when Config.AllowStreamRewind is set; once output has
// reached the caller, switching backends mid-stream would duplicate
// or desynchronize content.
func (r *Router) ExecuteStream(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
	candidates, err := r.orderedCandidates(req)
	if err != nil {
		return nil, err
	}

	tryOne := func(e *backendEntry) (ir.ChatStream, error) {
		if !e.breaker.Allow() {
			return nil, irerrors.ErrCircuitOpen
		}
		translated, err := r.translate(e, req)
		if err != nil {
			e.breaker.RecordFailure()
			return nil, err
		}
		stream, err := e.config.Backend.ExecuteStream(ctx, translated)
		if err != nil {
			e.breaker.RecordFailure()
			return nil, err
		}
		e.breaker.RecordSuccess()
		return &observingStream{inner: stream, entry: e}, nil
	}

	if !r.cfg.AllowStreamRewind || r.cfg.Fallback == FallbackNone {
		return tryOne(candidates[0])
	}

	var lastErr error
	tried := make([]string, 0, len(candidates))
	for _, c := range candidates {
		tried = append(tried, c.name)
		stream, err := tryOne(c)
		if err == nil {
			return stream, nil
		}
		lastErr = err
	}
	return nil, irerrors.NewRouterError("all backends failed to open a stream", tried, lastErr)
}

// observingStream records the first error observed mid-stream against
// its backend's circuit breaker; errors that surface only once chunks
// are already flowing cannot trigger a rewind, but the breaker should
// still learn about them.
type observingStream struct {
	inner ir.ChatStream
	entry *backendEntry
	done  bool
}

func (s *observingStream) Next() (ir.StreamChunk, bool) {
	chunk, ok := s.inner.Next()
	if !ok && !s.done {
		s.done = true
		if s.inner.Err() != nil {
			s.entry.breaker.RecordFailure()
		}
	}
	return chunk, ok
}

func (s *observingStream) Err() error   { return s.inner.Err() }
func (s *observingStream) Close() error { return s.inner.Close() }
