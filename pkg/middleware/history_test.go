package middleware

import (
	"strings"
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestHistoryCompactionKeepsSystemAndRecentTail(t *testing.T) {
	messages := []ir.Message{
		ir.NewTextMessage(ir.RoleSystem, "be helpful"),
	}
	for i := 0; i < 50; i++ {
		messages = append(messages, ir.NewTextMessage(ir.RoleUser, strings.Repeat("x", 40)))
	}
	messages = append(messages, ir.NewTextMessage(ir.RoleUser, "what is the latest question"))

	h := NewHistoryCompaction(100)
	out := h.compact(messages)

	if out[0].Role != ir.RoleSystem {
		t.Fatalf("compacted history must keep system message first, got %v", out[0].Role)
	}
	if out[len(out)-1].Text() != "what is the latest question" {
		t.Fatalf("compacted history must keep most recent message, got %q", out[len(out)-1].Text())
	}
	if len(out) >= len(messages) {
		t.Fatalf("compaction should have dropped messages: before %d, after %d", len(messages), len(out))
	}
}

func TestHistoryCompactionNoopUnderBudget(t *testing.T) {
	messages := []ir.Message{ir.NewTextMessage(ir.RoleUser, "hi")}
	h := NewHistoryCompaction(1000)
	out := h.compact(messages)
	if len(out) != 1 {
		t.Fatalf("expected no compaction under budget, got %d messages", len(out))
	}
}
