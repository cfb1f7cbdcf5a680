package middleware

import (
	"context"
	"time"

	"github.com/digitallysavvy/go-ai-mediator/pkg/internal/retry"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

// Retry wraps the inner handler with retry.Do's exponential backoff.
// Rate limit errors that carry a retry-after hint are honored by
// substituting that delay for the computed backoff on the retry it
// applies to.
type Retry struct {
	Config retry.Config
}

// NewRetry returns a Retry middleware with the given config, or
// retry.DefaultConfig() if cfg is the zero value.
func NewRetry(cfg retry.Config) *Retry {
	return &Retry{Config: cfg}
}

func (r *Retry) Name() string { return "retry" }

func (r *Retry) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		var resp ir.ChatResponse
		err := retry.Do(ctx, r.shouldRetryConfig(), func(ctx context.Context) error {
			var err error
			resp, err = next(ctx, req)
			return err
		})
		return resp, err
	}
}

// WrapStreamHandler does not retry mid-stream: once a stream has
// started emitting chunks to the caller, retrying would require
// rewinding already-delivered output. Retry only covers the initial
// ExecuteStream call failing before any chunk is produced.
func (r *Retry) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		var stream ir.ChatStream
		err := retry.Do(ctx, r.shouldRetryConfig(), func(ctx context.Context) error {
			var err error
			stream, err = next(ctx, req)
			return err
		})
		return stream, err
	}
}

func (r *Retry) shouldRetryConfig() retry.Config {
	cfg := r.Config
	if cfg.MaxRetries == 0 {
		cfg = retry.DefaultConfig()
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = isRetryableIRError
	}
	if cfg.RetryAfter == nil {
		cfg.RetryAfter = retryAfterHint
	}
	return cfg
}

// retryAfterHint extracts the backend-supplied retry delay from a
// *irerrors.RateLimitError, if err is or wraps one.
func retryAfterHint(err error) (time.Duration, bool) {
	var rle *irerrors.RateLimitError
	if !irerrors.As(err, &rle) || rle.RetryAfterSeconds <= 0 {
		return 0, false
	}
	return time.Duration(rle.RetryAfterSeconds) * time.Second, true
}

func isRetryableIRError(err error) bool {
	if err == nil {
		return false
	}
	// Validation failures and circuit-open rejections will not succeed
	// on retry; everything else (transient adapter/network failures,
	// rate limits) is worth another attempt.
	if irerrors.As(err, new(*irerrors.ValidationError)) {
		return false
	}
	if err == irerrors.ErrCircuitOpen {
		return false
	}
	return retry.IsRetryable(err)
}
