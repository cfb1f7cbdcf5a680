package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// Logging emits one structured log line per request and one per stream,
// recording latency and outcome. It never transforms the request or
// response; it only observes.
type Logging struct {
	Logger *slog.Logger
}

// NewLogging returns a Logging middleware. If logger is nil, the
// default slog logger is used.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{Logger: logger}
}

func (l *Logging) Name() string { return "logging" }

func (l *Logging) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		attrs := []any{
			"request_id", req.Metadata.RequestID,
			"model", modelOf(req),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			l.Logger.ErrorContext(ctx, "chat request failed", append(attrs, "error", err.Error())...)
			return resp, err
		}
		l.Logger.InfoContext(ctx, "chat request completed", append(attrs, "finish_reason", string(resp.FinishReason))...)
		return resp, nil
	}
}

func (l *Logging) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		start := time.Now()
		stream, err := next(ctx, req)
		if err != nil {
			l.Logger.ErrorContext(ctx, "chat stream failed to start",
				"request_id", req.Metadata.RequestID, "model", modelOf(req), "error", err.Error())
			return stream, err
		}
		l.Logger.InfoContext(ctx, "chat stream started",
			"request_id", req.Metadata.RequestID, "model", modelOf(req), "setup_ms", time.Since(start).Milliseconds())
		return stream, nil
	}
}

func modelOf(req ir.ChatRequest) string {
	if req.Parameters == nil {
		return ""
	}
	return req.Parameters.Model
}
