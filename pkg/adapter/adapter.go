// Package adapter defines the two contracts every dialect and provider
// implements: FrontendAdapter converts a wire-specific request/response
// shape to and from the canonical ir types, and BackendAdapter executes
// an ir.ChatRequest against a concrete provider.
package adapter

import (
	"context"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// FrontendAdapter converts between a dialect's wire format (DReq,
// DResp, DChunk — the dialect's own request, response and
// stream-chunk types) and the canonical ir types. Implementations must
// be pure: no network calls, no mutation of shared state. Generics let
// each dialect keep its native, strongly typed wire structs instead of
// forcing everything through map[string]any.
type FrontendAdapter[DReq, DResp, DChunk any] interface {
	// Name identifies the dialect, e.g. "openai-chat-completions".
	Name() string

	// ToIR parses a dialect-native request into the canonical form.
	ToIR(dialectReq DReq) (ir.ChatRequest, error)

	// FromIR renders a canonical response back into the dialect's
	// native response shape.
	FromIR(resp ir.ChatResponse) (DResp, error)

	// FromIRChunk renders a single canonical stream chunk into the
	// dialect's native chunk shape. Called once per ir.StreamChunk
	// emitted by the Bridge.
	FromIRChunk(chunk ir.StreamChunk) (DChunk, error)
}

// BackendAdapter executes a canonical ChatRequest against a concrete
// provider and returns a canonical response. Backends are expected to
// perform their own wire-format translation internally; callers never
// see provider-native types.
type BackendAdapter interface {
	// Name identifies the backend, e.g. "openai", "anthropic".
	Name() string

	// Capabilities reports what this backend supports, used by the
	// router for capability-based selection and by the bridge to
	// reject requests the backend cannot satisfy.
	Capabilities() Capabilities

	// Execute performs a single non-streaming chat completion.
	Execute(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error)

	// ExecuteStream performs a streaming chat completion.
	ExecuteStream(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error)
}

// SystemMessageStrategy describes how a backend expects system
// messages to reach it. Some providers (Anthropic, Gemini) take a
// single system string as a side channel rather than a message with
// role "system" inlined in the message list; others don't support
// system messages at all, or only as part of the first user turn.
type SystemMessageStrategy string

const (
	// SystemInMessages is the OpenAI-style convention: system messages
	// are left in Messages with Role == RoleSystem.
	SystemInMessages SystemMessageStrategy = "in_messages"
	// SystemSeparateParameter is the Anthropic/Gemini-style convention:
	// system messages are extracted out of Messages and passed as a
	// separate field.
	SystemSeparateParameter SystemMessageStrategy = "separate_parameter"
	// SystemPrependUser concatenates system text onto the first user
	// message instead of sending it as its own message or parameter,
	// for backends with no system-role concept at all.
	SystemPrependUser SystemMessageStrategy = "prepend_user"
	// SystemNotSupported drops system text entirely. Callers should
	// surface a telemetry warning when this strategy actually discards
	// non-empty system text.
	SystemNotSupported SystemMessageStrategy = "not_supported"
)

// CostEstimator is an optional capability a BackendAdapter may
// implement to report the cost of a completed request. The router
// type-asserts for it rather than requiring it on BackendAdapter
// itself, since not every backend can price its own usage.
type CostEstimator interface {
	// EstimateCost returns the cost, in whatever currency unit the
	// caller tracks, of a request with the given token usage.
	EstimateCost(usage ir.Usage) float64
}

// Capabilities describes what a BackendAdapter supports. The router
// uses this for capability-based selection and fallback exclusion; the
// bridge uses it to fail fast instead of sending a request a backend
// will reject.
type Capabilities struct {
	SupportsStreaming       bool
	SupportsTools           bool
	SupportsImageInput      bool
	SupportsStructuredOutput bool
	SystemMessages          SystemMessageStrategy
	MaxContextTokens        int
	Models                  []string
}

// SupportsModel reports whether a model name appears in the
// capability's declared model list. An empty Models list means the
// backend accepts any model name (useful for gateway-style backends).
func (c Capabilities) SupportsModel(model string) bool {
	if len(c.Models) == 0 {
		return true
	}
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}
