package middleware

import (
	"context"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

// Validation rejects malformed requests before they reach a backend:
// empty message lists, a request with no model specified, and
// out-of-range sampling parameters.
type Validation struct{}

func NewValidation() *Validation { return &Validation{} }

func (v *Validation) Name() string { return "validation" }

func (v *Validation) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		if err := validate(req); err != nil {
			return ir.ChatResponse{}, err
		}
		return next(ctx, req)
	}
}

func (v *Validation) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		if err := validate(req); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func validate(req ir.ChatRequest) error {
	if len(req.Messages) == 0 {
		return irerrors.NewValidationError("messages", "must contain at least one message")
	}
	if req.Parameters == nil || req.Parameters.Model == "" {
		return irerrors.NewValidationError("parameters.model", "model must be specified")
	}
	if t := req.Parameters.Temperature; t != nil && (*t < 0 || *t > 2) {
		return irerrors.NewValidationError("parameters.temperature", "must be between 0 and 2")
	}
	if p := req.Parameters.TopP; p != nil && (*p < 0 || *p > 1) {
		return irerrors.NewValidationError("parameters.top_p", "must be between 0 and 1")
	}
	for i, m := range req.Messages {
		if len(m.Content) == 0 {
			return irerrors.NewValidationError("messages", "message has empty content")
		}
		_ = i
	}
	return nil
}
