package middleware

import (
	"context"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// Transform applies arbitrary request and response rewriting functions.
// It generalizes a single TransformParams-style request hook to also
// cover the response side, since the IR response shape carries more
// than just generation options.
type Transform struct {
	TransformName    string
	TransformRequest func(ctx context.Context, req ir.ChatRequest) (ir.ChatRequest, error)
	TransformResponse func(ctx context.Context, resp ir.ChatResponse) (ir.ChatResponse, error)
}

func (t *Transform) Name() string {
	if t.TransformName != "" {
		return t.TransformName
	}
	return "transform"
}

func (t *Transform) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		if t.TransformRequest != nil {
			var err error
			req, err = t.TransformRequest(ctx, req)
			if err != nil {
				return ir.ChatResponse{}, err
			}
		}
		resp, err := next(ctx, req)
		if err != nil {
			return resp, err
		}
		if t.TransformResponse != nil {
			return t.TransformResponse(ctx, resp)
		}
		return resp, nil
	}
}

func (t *Transform) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		if t.TransformRequest != nil {
			var err error
			req, err = t.TransformRequest(ctx, req)
			if err != nil {
				return nil, err
			}
		}
		return next(ctx, req)
	}
}
