package middleware

import (
	"context"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// HistoryCompaction trims a conversation's message list down to a
// token budget before it reaches the backend, keeping the leading
// system messages and the most recent turns, and dropping the oldest
// user/assistant turns in between. Token counts are estimated with a
// simple character-per-token heuristic (~4 chars/token) rather than a
// model-specific tokenizer, since the mediator is provider-agnostic and
// has no single tokenizer to call.
type HistoryCompaction struct {
	MaxTokens int
}

func NewHistoryCompaction(maxTokens int) *HistoryCompaction {
	return &HistoryCompaction{MaxTokens: maxTokens}
}

func (h *HistoryCompaction) Name() string { return "history_compaction" }

func (h *HistoryCompaction) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		req.Messages = h.compact(req.Messages)
		return next(ctx, req)
	}
}

func (h *HistoryCompaction) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		req.Messages = h.compact(req.Messages)
		return next(ctx, req)
	}
}

func (h *HistoryCompaction) compact(messages []ir.Message) []ir.Message {
	if h.MaxTokens <= 0 || estimateTokens(messages) <= h.MaxTokens {
		return messages
	}

	var system []ir.Message
	var rest []ir.Message
	for _, m := range messages {
		if m.Role == ir.RoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	kept := append([]ir.Message{}, system...)
	budget := h.MaxTokens - estimateTokens(system)

	var tail []ir.Message
	for i := len(rest) - 1; i >= 0 && budget > 0; i-- {
		cost := estimateTokens(rest[i : i+1])
		if cost > budget {
			break
		}
		tail = append([]ir.Message{rest[i]}, tail...)
		budget -= cost
	}

	return append(kept, tail...)
}

func estimateTokens(messages []ir.Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Text())
	}
	return chars / 4
}
