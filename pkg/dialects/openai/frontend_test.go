package openai

import (
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestToIRSimpleTextMessage(t *testing.T) {
	req := Request{
		Model: "gpt-4o",
		Messages: []Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hello"},
		},
	}
	out, err := Frontend{}.ToIR(req)
	if err != nil {
		t.Fatalf("ToIR: %v", err)
	}
	if len(out.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(out.Messages))
	}
	if out.Messages[1].Text() != "hello" {
		t.Fatalf("Messages[1].Text() = %q, want hello", out.Messages[1].Text())
	}
	if out.Parameters.Model != "gpt-4o" {
		t.Fatalf("Parameters.Model = %q, want gpt-4o", out.Parameters.Model)
	}
}

func TestToIRMultipartContent(t *testing.T) {
	req := Request{Messages: []Message{
		{Role: "user", Content: []any{
			map[string]any{"type": "text", "text": "what is this"},
			map[string]any{"type": "image_url", "image_url": map[string]any{"url": "https://example.com/x.png"}},
		}},
	}}
	out, err := Frontend{}.ToIR(req)
	if err != nil {
		t.Fatalf("ToIR: %v", err)
	}
	if len(out.Messages[0].Content) != 2 {
		t.Fatalf("len(Content) = %d, want 2", len(out.Messages[0].Content))
	}
}

func TestFromIRRoundTripsSimpleText(t *testing.T) {
	req := Request{Model: "gpt-4o", Messages: []Message{{Role: "user", Content: "hi"}}}
	irReq, err := Frontend{}.ToIR(req)
	if err != nil {
		t.Fatalf("ToIR: %v", err)
	}
	wire := buildRequest(irReq)
	if wire.Messages[0].Content.(string) != "hi" {
		t.Fatalf("round-tripped content = %v, want hi", wire.Messages[0].Content)
	}
}

func TestFromIRChunkContent(t *testing.T) {
	chunk, err := Frontend{}.FromIRChunk(ir.StreamChunk{Type: ir.ChunkContent, Delta: "hello"})
	if err != nil {
		t.Fatalf("FromIRChunk: %v", err)
	}
	if chunk.Choices[0].Delta.Content != "hello" {
		t.Fatalf("Delta.Content = %q, want hello", chunk.Choices[0].Delta.Content)
	}
}
