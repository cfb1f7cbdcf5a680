package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestCachingHitsOnRepeatedRequest(t *testing.T) {
	calls := 0
	terminal := func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		calls++
		return ir.ChatResponse{Message: ir.NewTextMessage(ir.RoleAssistant, "hi")}, nil
	}

	caching := NewCaching(NewMapCacheStore(), time.Minute)
	handler := caching.WrapHandler(terminal)

	req := ir.ChatRequest{
		Messages:   []ir.Message{ir.NewTextMessage(ir.RoleUser, "hello")},
		Parameters: &ir.Parameters{Model: "gpt-4o"},
	}

	if _, err := handler(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	resp, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("terminal called %d times, want 1 (second call should hit cache)", calls)
	}
	if hit, _ := resp.Metadata.Custom["cache_hit"].(bool); !hit {
		t.Fatalf("expected cache_hit metadata on second response")
	}
}

func TestCachingSkipsHighTemperature(t *testing.T) {
	calls := 0
	terminal := func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		calls++
		return ir.ChatResponse{}, nil
	}

	caching := NewCaching(NewMapCacheStore(), time.Minute)
	handler := caching.WrapHandler(terminal)

	hot := 0.9
	req := ir.ChatRequest{
		Messages:   []ir.Message{ir.NewTextMessage(ir.RoleUser, "hello")},
		Parameters: &ir.Parameters{Model: "gpt-4o", Temperature: &hot},
	}

	handler(context.Background(), req)
	handler(context.Background(), req)
	if calls != 2 {
		t.Fatalf("terminal called %d times, want 2 (high temperature must not cache)", calls)
	}
}
