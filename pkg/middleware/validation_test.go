package middleware

import (
	"context"
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

func okHandler(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
	return ir.ChatResponse{FinishReason: ir.FinishStop}, nil
}

func TestValidationRejectsEmptyMessages(t *testing.T) {
	v := NewValidation()
	handler := v.WrapHandler(okHandler)

	req := ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}}
	_, err := handler(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for empty messages")
	}
	var verr *irerrors.ValidationError
	if !irerrors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}

func TestValidationRejectsMissingModel(t *testing.T) {
	v := NewValidation()
	handler := v.WrapHandler(okHandler)

	req := ir.ChatRequest{
		Messages:   []ir.Message{ir.NewTextMessage(ir.RoleUser, "hi")},
		Parameters: &ir.Parameters{},
	}
	if _, err := handler(context.Background(), req); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestValidationRejectsOutOfRangeTemperature(t *testing.T) {
	v := NewValidation()
	handler := v.WrapHandler(okHandler)

	bad := 5.0
	req := ir.ChatRequest{
		Messages:   []ir.Message{ir.NewTextMessage(ir.RoleUser, "hi")},
		Parameters: &ir.Parameters{Model: "gpt-4o", Temperature: &bad},
	}
	if _, err := handler(context.Background(), req); err == nil {
		t.Fatal("expected error for out-of-range temperature")
	}
}

func TestValidationAcceptsWellFormedRequest(t *testing.T) {
	v := NewValidation()
	handler := v.WrapHandler(okHandler)

	req := ir.ChatRequest{
		Messages:   []ir.Message{ir.NewTextMessage(ir.RoleUser, "hi")},
		Parameters: &ir.Parameters{Model: "gpt-4o"},
	}
	resp, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.FinishReason != ir.FinishStop {
		t.Fatalf("FinishReason = %v, want FinishStop", resp.FinishReason)
	}
}
