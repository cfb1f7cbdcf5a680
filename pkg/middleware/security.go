package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

// RateLimit throttles outgoing requests using golang.org/x/time/rate's
// token bucket. It rejects rather than blocks when the bucket is
// empty, since blocking here would hide backpressure from callers that
// have their own timeout budgets.
type RateLimit struct {
	limiter *rate.Limiter
}

// NewRateLimit builds a limiter allowing ratePerSecond sustained
// requests with the given burst capacity.
func NewRateLimit(ratePerSecond float64, burst int) *RateLimit {
	return &RateLimit{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (r *RateLimit) Name() string { return "rate_limit" }

func (r *RateLimit) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		if !r.limiter.Allow() {
			return ir.ChatResponse{}, irerrors.NewRateLimitError("mediator", 1, "local rate limit exceeded", nil)
		}
		return next(ctx, req)
	}
}

func (r *RateLimit) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		if !r.limiter.Allow() {
			return nil, irerrors.NewRateLimitError("mediator", 1, "local rate limit exceeded", nil)
		}
		return next(ctx, req)
	}
}
