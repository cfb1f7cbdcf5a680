// Package middleware implements the around-advice chain that the
// bridge threads every request and response through. Each Middleware
// wraps a Handler in the usual decorator shape: it can inspect or
// transform the request before calling the next handler, inspect or
// transform the response after, short-circuit by not calling next at
// all, or cancel by propagating ctx cancellation.
package middleware

import (
	"context"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// Handler executes a chat request and returns a response. The bridge's
// innermost Handler calls the selected backend; every middleware wraps
// the handler beneath it.
type Handler func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error)

// StreamHandler is the streaming counterpart of Handler.
type StreamHandler func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error)

// Middleware wraps a Handler and a StreamHandler to produce new ones.
// Implementations that only care about one path should pass the inner
// handler straight through unchanged for the other.
type Middleware interface {
	// Name identifies the middleware for logging and stats.
	Name() string
	WrapHandler(next Handler) Handler
	WrapStreamHandler(next StreamHandler) StreamHandler
}

// Stack is an ordered list of middleware applied around a terminal
// handler. Middleware are applied in reverse so that Stack[0] is the
// outermost layer — it sees the request first and the response last.
type Stack struct {
	middlewares []Middleware
}

// NewStack builds a Stack from middleware in outermost-first order.
func NewStack(middlewares ...Middleware) *Stack {
	return &Stack{middlewares: middlewares}
}

// Use appends a middleware as the new innermost layer (closest to the
// terminal handler).
func (s *Stack) Use(m Middleware) {
	s.middlewares = append(s.middlewares, m)
}

// Names returns the configured middleware names in outermost-first
// order, useful for logging the effective pipeline at startup.
func (s *Stack) Names() []string {
	names := make([]string, len(s.middlewares))
	for i, m := range s.middlewares {
		names[i] = m.Name()
	}
	return names
}

// Wrap composes the stack around a terminal Handler. Middlewares are
// applied in reverse order so the first middleware in the stack ends
// up as the outermost wrapper.
func (s *Stack) Wrap(terminal Handler) Handler {
	h := terminal
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i].WrapHandler(h)
	}
	return h
}

// WrapStream composes the stack around a terminal StreamHandler using
// the same reverse-order rule as Wrap.
func (s *Stack) WrapStream(terminal StreamHandler) StreamHandler {
	h := terminal
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i].WrapStreamHandler(h)
	}
	return h
}
