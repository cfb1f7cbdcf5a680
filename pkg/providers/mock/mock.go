// Package mock provides a configurable adapter.BackendAdapter used by
// other packages' tests and by hosts that want to exercise the full
// bridge/router pipeline without calling a real provider: function
// fields the caller sets to control behavior, plus mutex-guarded call
// recording for assertions.
package mock

import (
	"context"
	"sync"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// Backend is a scriptable adapter.BackendAdapter. Zero-value Backend
// returns a canned "ok" response and an empty stream, so tests that
// don't care about content can use it without configuration.
type Backend struct {
	BackendName string
	Caps        adapter.Capabilities

	ExecuteFunc       func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error)
	ExecuteStreamFunc func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error)

	mu            sync.Mutex
	executeCalls  []ir.ChatRequest
	streamCalls   []ir.ChatRequest
}

func NewBackend(name string) *Backend {
	return &Backend{BackendName: name, Caps: adapter.Capabilities{
		SupportsStreaming: true,
		SupportsTools:     true,
		SystemMessages:    adapter.SystemInMessages,
	}}
}

func (b *Backend) Name() string                     { return b.BackendName }
func (b *Backend) Capabilities() adapter.Capabilities { return b.Caps }

func (b *Backend) Execute(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
	b.mu.Lock()
	b.executeCalls = append(b.executeCalls, req)
	b.mu.Unlock()

	if b.ExecuteFunc != nil {
		return b.ExecuteFunc(ctx, req)
	}
	return ir.ChatResponse{
		Message:      ir.NewTextMessage(ir.RoleAssistant, "ok"),
		FinishReason: ir.FinishStop,
		Usage:        &ir.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}, nil
}

func (b *Backend) ExecuteStream(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
	b.mu.Lock()
	b.streamCalls = append(b.streamCalls, req)
	b.mu.Unlock()

	if b.ExecuteStreamFunc != nil {
		return b.ExecuteStreamFunc(ctx, req)
	}
	return ir.NewSliceStream([]ir.StreamChunk{
		{Type: ir.ChunkStart, Role: ir.RoleAssistant},
		{Type: ir.ChunkContent, Delta: "ok"},
		{Type: ir.ChunkDone, FinishReason: ir.FinishStop, Usage: &ir.Usage{TotalTokens: 2}},
	}), nil
}

// ExecuteCalls returns every request passed to Execute so far.
func (b *Backend) ExecuteCalls() []ir.ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ir.ChatRequest, len(b.executeCalls))
	copy(out, b.executeCalls)
	return out
}

// StreamCalls returns every request passed to ExecuteStream so far.
func (b *Backend) StreamCalls() []ir.ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ir.ChatRequest, len(b.streamCalls))
	copy(out, b.streamCalls)
	return out
}
