package adapter

import (
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestNormalizeSystemMessagesInMessages(t *testing.T) {
	req := ir.ChatRequest{Messages: []ir.Message{
		ir.NewTextMessage(ir.RoleSystem, "be terse"),
		ir.NewTextMessage(ir.RoleUser, "hi"),
	}}
	messages, system := NormalizeSystemMessages(req, SystemInMessages)
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(messages))
	}
	if system != "" {
		t.Fatalf("system = %q, want empty", system)
	}
}

func TestNormalizeSystemMessagesSeparateParameter(t *testing.T) {
	req := ir.ChatRequest{Messages: []ir.Message{
		ir.NewTextMessage(ir.RoleSystem, "be terse"),
		ir.NewTextMessage(ir.RoleUser, "hi"),
	}}
	messages, system := NormalizeSystemMessages(req, SystemSeparateParameter)
	if len(messages) != 1 || messages[0].Role != ir.RoleUser {
		t.Fatalf("messages = %+v, want single user message", messages)
	}
	if system != "be terse" {
		t.Fatalf("system = %q, want %q", system, "be terse")
	}
}

func TestNormalizeSystemMessagesPrependUser(t *testing.T) {
	req := ir.ChatRequest{Messages: []ir.Message{
		ir.NewTextMessage(ir.RoleSystem, "be terse"),
		ir.NewTextMessage(ir.RoleUser, "hi"),
	}}
	messages, system := NormalizeSystemMessages(req, SystemPrependUser)
	if system != "" {
		t.Fatalf("system = %q, want empty", system)
	}
	if len(messages) != 1 || messages[0].Role != ir.RoleUser {
		t.Fatalf("messages = %+v, want single user message", messages)
	}
	if got := messages[0].Text(); got != "be terse\nhi" {
		t.Fatalf("merged text = %q, want %q", got, "be terse\nhi")
	}
}

func TestNormalizeSystemMessagesPrependUserNoExistingUser(t *testing.T) {
	req := ir.ChatRequest{Messages: []ir.Message{
		ir.NewTextMessage(ir.RoleSystem, "be terse"),
	}}
	messages, _ := NormalizeSystemMessages(req, SystemPrependUser)
	if len(messages) != 1 || messages[0].Role != ir.RoleUser || messages[0].Text() != "be terse" {
		t.Fatalf("messages = %+v, want a synthesized user message with the system text", messages)
	}
}

func TestNormalizeSystemMessagesNotSupportedDropsSystemText(t *testing.T) {
	req := ir.ChatRequest{Messages: []ir.Message{
		ir.NewTextMessage(ir.RoleSystem, "be terse"),
		ir.NewTextMessage(ir.RoleUser, "hi"),
	}}
	messages, system := NormalizeSystemMessages(req, SystemNotSupported)
	if system != "" {
		t.Fatalf("system = %q, want empty", system)
	}
	if len(messages) != 1 || messages[0].Role != ir.RoleUser {
		t.Fatalf("messages = %+v, want system text dropped entirely", messages)
	}
}

func TestCapabilitiesSupportsModel(t *testing.T) {
	c := Capabilities{Models: []string{"gpt-4o", "gpt-4o-mini"}}
	if !c.SupportsModel("gpt-4o") {
		t.Fatalf("SupportsModel(gpt-4o) = false, want true")
	}
	if c.SupportsModel("claude-3") {
		t.Fatalf("SupportsModel(claude-3) = true, want false")
	}

	open := Capabilities{}
	if !open.SupportsModel("anything") {
		t.Fatalf("SupportsModel with empty Models should accept any model")
	}
}

func TestApplyStreamModeAccumulated(t *testing.T) {
	chunks := []ir.StreamChunk{
		{Type: ir.ChunkStart},
		{Type: ir.ChunkContent, Delta: "hel"},
		{Type: ir.ChunkContent, Delta: "lo"},
		{Type: ir.ChunkDone},
	}
	out := ApplyStreamMode(chunks, ir.StreamModeAccumulated)
	if out[1].Accumulated != "hel" {
		t.Fatalf("out[1].Accumulated = %q, want %q", out[1].Accumulated, "hel")
	}
	if out[2].Accumulated != "hello" {
		t.Fatalf("out[2].Accumulated = %q, want %q", out[2].Accumulated, "hello")
	}
}

func TestApplyStreamModeDeltaIsNoop(t *testing.T) {
	chunks := []ir.StreamChunk{{Type: ir.ChunkContent, Delta: "hi"}}
	out := ApplyStreamMode(chunks, ir.StreamModeDelta)
	if out[0].Accumulated != "" {
		t.Fatalf("delta mode should not populate Accumulated, got %q", out[0].Accumulated)
	}
}
