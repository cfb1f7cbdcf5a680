package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/digitallysavvy/go-ai-mediator/pkg/internal/retry"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	terminal := func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		attempts++
		if attempts < 3 {
			return ir.ChatResponse{}, errors.New("transient upstream error")
		}
		return ir.ChatResponse{FinishReason: ir.FinishStop}, nil
	}

	r := NewRetry(retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, Jitter: false})
	handler := r.WrapHandler(terminal)

	resp, err := handler(context.Background(), ir.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	if resp.FinishReason != ir.FinishStop {
		t.Fatalf("FinishReason = %v, want FinishStop", resp.FinishReason)
	}
}

func TestRetryDoesNotRetryValidationError(t *testing.T) {
	attempts := 0
	terminal := func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		attempts++
		v := NewValidation()
		return v.WrapHandler(okHandler)(ctx, ir.ChatRequest{})
	}

	r := NewRetry(retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, Jitter: false})
	handler := r.WrapHandler(terminal)

	handler(context.Background(), ir.ChatRequest{})
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (validation errors are not retryable)", attempts)
	}
}
