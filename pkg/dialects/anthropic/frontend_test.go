package anthropic

import (
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestToIRPullsSystemOutAsLeadingMessage(t *testing.T) {
	req := Request{
		Model:  "claude-3-5-sonnet-20241022",
		System: "be terse",
		Messages: []Message{
			{Role: "user", Content: []ContentBlock{{Type: "text", Text: "hello"}}},
		},
	}
	out, err := Frontend{}.ToIR(req)
	if err != nil {
		t.Fatalf("ToIR: %v", err)
	}
	if len(out.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(out.Messages))
	}
	if out.Messages[0].Role != ir.RoleSystem || out.Messages[0].Text() != "be terse" {
		t.Fatalf("Messages[0] = %+v, want leading system message", out.Messages[0])
	}
	if out.Messages[1].Text() != "hello" {
		t.Fatalf("Messages[1].Text() = %q, want hello", out.Messages[1].Text())
	}
}

func TestToIRToolResultMessage(t *testing.T) {
	req := Request{Messages: []Message{
		{Role: "user", Content: []ContentBlock{{Type: "tool_result", ToolUseID: "tool_1", Content: "42"}}},
	}}
	out, err := Frontend{}.ToIR(req)
	if err != nil {
		t.Fatalf("ToIR: %v", err)
	}
	block, ok := out.Messages[0].Content[0].(ir.ToolResultBlock)
	if !ok {
		t.Fatalf("Content[0] = %T, want ir.ToolResultBlock", out.Messages[0].Content[0])
	}
	if block.ToolUseID != "tool_1" {
		t.Fatalf("ToolUseID = %q, want tool_1", block.ToolUseID)
	}
}

func TestBuildRequestStripsSystemFromMessages(t *testing.T) {
	req := ir.ChatRequest{
		Messages: []ir.Message{
			ir.NewTextMessage(ir.RoleSystem, "be terse"),
			ir.NewTextMessage(ir.RoleUser, "hi"),
		},
		Parameters: &ir.Parameters{Model: "claude-3-5-sonnet-20241022"},
	}
	wire := buildRequest(req)
	if wire.System != "be terse" {
		t.Fatalf("System = %q, want %q", wire.System, "be terse")
	}
	if len(wire.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1 (system stripped out)", len(wire.Messages))
	}
}

func TestFromIRChunkContentDelta(t *testing.T) {
	event, err := Frontend{}.FromIRChunk(ir.StreamChunk{Type: ir.ChunkContent, Delta: "hello"})
	if err != nil {
		t.Fatalf("FromIRChunk: %v", err)
	}
	if event.Type != "content_block_delta" || event.Delta.Text != "hello" {
		t.Fatalf("event = %+v, want content_block_delta with text hello", event)
	}
}

func TestBackendCapabilitiesUseSeparateSystemParameter(t *testing.T) {
	b := NewBackend("key", "")
	if b.Capabilities().SystemMessages != adapter.SystemSeparateParameter {
		t.Fatalf("SystemMessages = %v, want SystemSeparateParameter", b.Capabilities().SystemMessages)
	}
}
