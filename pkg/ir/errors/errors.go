// Package errors defines the typed error taxonomy shared by frontends,
// backends, middleware and the router. Every error type here supports
// errors.As and errors.Unwrap so callers can branch on category without
// caring which component raised it.
package errors

import (
	"errors"
	"fmt"
)

// As re-exports the standard library's errors.As so callers that only
// import this package don't also need to import "errors" for simple
// type-switch style checks like IsAdapterError.
func As(err error, target any) bool { return errors.As(err, target) }

// Sentinel errors for simple errors.Is checks where a caller doesn't
// need the structured fields a typed error carries.
var (
	ErrInvalidInput    = fmt.Errorf("ir: invalid input")
	ErrModelNotFound   = fmt.Errorf("ir: model not found")
	ErrNoBackend       = fmt.Errorf("ir: no backend available")
	ErrCircuitOpen     = fmt.Errorf("ir: circuit breaker open")
	ErrStreamClosed    = fmt.Errorf("ir: stream closed")
	ErrUnsupported     = fmt.Errorf("ir: operation not supported by backend")
)

// AdapterError reports a failure in a frontend or backend adapter
// (malformed dialect payload, provider API failure, etc).
type AdapterError struct {
	Adapter    string
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (e *AdapterError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("adapter %s: %s (status %d, code %s)", e.Adapter, e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("adapter %s: %s", e.Adapter, e.Message)
}

func (e *AdapterError) Unwrap() error { return e.Cause }

func NewAdapterError(adapter string, statusCode int, code, message string, cause error) *AdapterError {
	return &AdapterError{Adapter: adapter, StatusCode: statusCode, Code: code, Message: message, Cause: cause}
}

// IsAdapterError reports whether err is, or wraps, an *AdapterError.
func IsAdapterError(err error) bool {
	var target *AdapterError
	return As(err, &target)
}

// ValidationError reports that a request failed IR-level validation
// before ever reaching a backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation: %s", e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// MiddlewareError reports a failure raised by a middleware stage
// itself, as distinct from an error the stage merely observed.
type MiddlewareError struct {
	Middleware string
	Message    string
	Cause      error
}

func (e *MiddlewareError) Error() string {
	return fmt.Sprintf("middleware %s: %s", e.Middleware, e.Message)
}

func (e *MiddlewareError) Unwrap() error { return e.Cause }

func NewMiddlewareError(middleware, message string, cause error) *MiddlewareError {
	return &MiddlewareError{Middleware: middleware, Message: message, Cause: cause}
}

// RouterError reports a routing-level failure: no backend could serve
// the request, or the selection strategy itself failed.
type RouterError struct {
	Reason       string
	BackendTries []string
	Cause        error
}

func (e *RouterError) Error() string {
	if len(e.BackendTries) > 0 {
		return fmt.Sprintf("router: %s (tried: %v)", e.Reason, e.BackendTries)
	}
	return fmt.Sprintf("router: %s", e.Reason)
}

func (e *RouterError) Unwrap() error { return e.Cause }

func NewRouterError(reason string, tried []string, cause error) *RouterError {
	return &RouterError{Reason: reason, BackendTries: tried, Cause: cause}
}

// RateLimitError reports that a backend rejected a request due to rate
// limiting, carrying a retry hint when the provider supplied one.
type RateLimitError struct {
	Backend           string
	RetryAfterSeconds int
	Message           string
	Cause             error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s: %s (retry after %ds)", e.Backend, e.Message, e.RetryAfterSeconds)
}

func (e *RateLimitError) Unwrap() error { return e.Cause }

func NewRateLimitError(backend string, retryAfterSeconds int, message string, cause error) *RateLimitError {
	return &RateLimitError{Backend: backend, RetryAfterSeconds: retryAfterSeconds, Message: message, Cause: cause}
}

// IsRateLimitError reports whether err is, or wraps, a *RateLimitError.
func IsRateLimitError(err error) bool {
	var target *RateLimitError
	return As(err, &target)
}
