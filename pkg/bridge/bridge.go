// Package bridge implements the orchestrator that ties a dialect
// frontend, a middleware stack and a backend together: dialectRequest
// -> toIR -> middleware chain -> backend.Execute -> fromIR ->
// dialectResponse.
package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	"github.com/digitallysavvy/go-ai-mediator/pkg/middleware"
)

// EventType names the lifecycle events a Bridge emits to listeners
// registered with On.
type EventType string

const (
	EventRequestStart   EventType = "request:start"
	EventRequestSuccess EventType = "request:success"
	EventRequestError   EventType = "request:error"
)

// Event carries the data delivered to an EventListener.
type Event struct {
	Type      EventType
	RequestID string
	Request   ir.ChatRequest
	Response  *ir.ChatResponse
	Err       error
	Duration  time.Duration
}

// EventListener receives Bridge lifecycle events. Listeners run
// synchronously on the calling goroutine, in registration order; a slow
// listener slows down the request it's observing.
type EventListener func(Event)

// Config configures a Bridge.
type Config struct {
	// Middleware is applied outermost-first, same ordering as
	// middleware.NewStack.
	Middleware []middleware.Middleware
}

// Stream is the dialect-native counterpart of ir.ChatStream: every
// chunk the caller reads has already been converted to the dialect's
// own wire shape by FrontendAdapter.FromIRChunk.
type Stream[DChunk any] interface {
	Next() (DChunk, bool)
	Err() error
	Close() error
}

// Bridge orchestrates a single backend behind a middleware stack,
// presenting the dialect wire format DReq/DResp/DChunk at its edges
// instead of the canonical ir types. A Router (pkg/router) also
// implements adapter.BackendAdapter, so a Bridge can be constructed
// directly over a Router to get selection/fallback/circuit-breaking
// for free.
type Bridge[DReq, DResp, DChunk any] struct {
	frontend adapter.FrontendAdapter[DReq, DResp, DChunk]
	backend  adapter.BackendAdapter
	stack    *middleware.Stack
	stats    *Stats

	mu        sync.RWMutex
	listeners []EventListener
}

// New constructs a Bridge over the given frontend dialect and backend
// (commonly a Router), with the given middleware stack.
func New[DReq, DResp, DChunk any](frontend adapter.FrontendAdapter[DReq, DResp, DChunk], backend adapter.BackendAdapter, cfg Config) *Bridge[DReq, DResp, DChunk] {
	return &Bridge[DReq, DResp, DChunk]{
		frontend: frontend,
		backend:  backend,
		stack:    middleware.NewStack(cfg.Middleware...),
		stats:    newStats(),
	}
}

// On registers a listener for the given event type. Returns a function
// that unregisters the listener.
func (b *Bridge[DReq, DResp, DChunk]) On(eventType EventType, listener EventListener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	wrapped := func(e Event) {
		if e.Type == eventType {
			listener(e)
		}
	}
	b.listeners = append(b.listeners, wrapped)
	idx := len(b.listeners) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.listeners) {
			b.listeners[idx] = func(Event) {}
		}
	}
}

func (b *Bridge[DReq, DResp, DChunk]) emit(e Event) {
	b.mu.RLock()
	listeners := make([]EventListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()
	for _, l := range listeners {
		l(e)
	}
}

// Stats returns the bridge's latency/error statistics snapshot
// accumulator. Safe for concurrent use.
func (b *Bridge[DReq, DResp, DChunk]) Stats() *Stats { return b.stats }

// Chat converts dialectReq to canonical form, runs the middleware
// chain, executes against the backend, and converts the canonical
// response back to the dialect's own wire shape.
func (b *Bridge[DReq, DResp, DChunk]) Chat(ctx context.Context, dialectReq DReq) (DResp, error) {
	var zero DResp

	req, err := b.frontend.ToIR(dialectReq)
	if err != nil {
		return zero, err
	}
	req = withRequestID(req)
	start := time.Now()
	b.emit(Event{Type: EventRequestStart, RequestID: req.Metadata.RequestID, Request: req})

	handler := b.stack.Wrap(func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		return b.backend.Execute(ctx, req)
	})

	resp, err := handler(ctx, req)
	duration := time.Since(start)
	b.stats.record(duration, err)

	if err != nil {
		b.emit(Event{Type: EventRequestError, RequestID: req.Metadata.RequestID, Request: req, Err: err, Duration: duration})
		return zero, err
	}
	b.emit(Event{Type: EventRequestSuccess, RequestID: req.Metadata.RequestID, Request: req, Response: &resp, Duration: duration})

	return b.frontend.FromIR(resp)
}

// ChatStream is the streaming counterpart of Chat. Per-chunk events are
// not emitted; only start/success/error around the call that opens the
// stream, matching the bridge's Chat-level event granularity.
func (b *Bridge[DReq, DResp, DChunk]) ChatStream(ctx context.Context, dialectReq DReq) (Stream[DChunk], error) {
	req, err := b.frontend.ToIR(dialectReq)
	if err != nil {
		return nil, err
	}
	req = withRequestID(req)
	start := time.Now()
	b.emit(Event{Type: EventRequestStart, RequestID: req.Metadata.RequestID, Request: req})

	handler := b.stack.WrapStream(func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		return b.backend.ExecuteStream(ctx, req)
	})

	stream, err := handler(ctx, req)
	duration := time.Since(start)
	b.stats.record(duration, err)

	if err != nil {
		b.emit(Event{Type: EventRequestError, RequestID: req.Metadata.RequestID, Request: req, Err: err, Duration: duration})
		return nil, err
	}
	b.emit(Event{Type: EventRequestSuccess, RequestID: req.Metadata.RequestID, Request: req, Duration: duration})

	return &dialectStream[DChunk]{
		inner:   &sequencingStream{inner: stream},
		convert: b.frontend.FromIRChunk,
	}, nil
}

// withRequestID assigns a request ID if the caller didn't supply one.
// Assignment happens exactly once, before any middleware runs, and is
// never overwritten afterward — middleware that wants its own
// correlation ID should key off Metadata.RequestID rather than mutate it.
func withRequestID(req ir.ChatRequest) ir.ChatRequest {
	if req.Metadata.RequestID == "" {
		req.Metadata.RequestID = uuid.NewString()
	}
	if req.Metadata.Timestamp == 0 {
		req.Metadata.Timestamp = time.Now().UnixMilli()
	}
	return req
}

// sequencingStream assigns a monotonically increasing Sequence to every
// chunk passed through, since backends are not required to do so
// themselves.
type sequencingStream struct {
	inner ir.ChatStream
	next  int
}

func (s *sequencingStream) Next() (ir.StreamChunk, bool) {
	chunk, ok := s.inner.Next()
	if ok {
		chunk.Sequence = s.next
		s.next++
	}
	return chunk, ok
}

func (s *sequencingStream) Err() error   { return s.inner.Err() }
func (s *sequencingStream) Close() error { return s.inner.Close() }

// dialectStream converts each ir.StreamChunk read from inner into a
// dialect-native DChunk via convert (FrontendAdapter.FromIRChunk). A
// conversion error terminates the stream early; Err reports it
// alongside whatever error the inner stream itself surfaced.
type dialectStream[DChunk any] struct {
	inner   ir.ChatStream
	convert func(ir.StreamChunk) (DChunk, error)
	convErr error
}

func (s *dialectStream[DChunk]) Next() (DChunk, bool) {
	var zero DChunk
	if s.convErr != nil {
		return zero, false
	}
	chunk, ok := s.inner.Next()
	if !ok {
		return zero, false
	}
	out, err := s.convert(chunk)
	if err != nil {
		s.convErr = err
		return zero, false
	}
	return out, true
}

func (s *dialectStream[DChunk]) Err() error {
	if s.convErr != nil {
		return s.convErr
	}
	return s.inner.Err()
}

func (s *dialectStream[DChunk]) Close() error { return s.inner.Close() }
