package middleware

import (
	"context"
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestCostTrackingAccumulates(t *testing.T) {
	terminal := func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		return ir.ChatResponse{Usage: &ir.Usage{PromptTokens: 1000, CompletionTokens: 500}}, nil
	}

	tracker := NewCostTracking(PriceTable{
		"gpt-4o": {InputPerToken: 0.000005, OutputPerToken: 0.000015},
	})
	handler := tracker.WrapHandler(terminal)

	req := ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}}
	handler(context.Background(), req)
	handler(context.Background(), req)

	got := tracker.TotalCost("gpt-4o")
	want := 2 * (1000*0.000005 + 500*0.000015)
	if got != want {
		t.Fatalf("TotalCost = %v, want %v", got, want)
	}
}

func TestCostTrackingUnknownModelIsZero(t *testing.T) {
	terminal := func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		return ir.ChatResponse{Usage: &ir.Usage{PromptTokens: 10}}, nil
	}
	tracker := NewCostTracking(PriceTable{})
	handler := tracker.WrapHandler(terminal)
	handler(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "mystery"}})
	if got := tracker.TotalCost("mystery"); got != 0 {
		t.Fatalf("TotalCost = %v, want 0", got)
	}
}
