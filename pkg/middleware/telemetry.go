package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	"github.com/digitallysavvy/go-ai-mediator/pkg/telemetry"
)

// Telemetry wraps requests in an OpenTelemetry span, reusing the
// telemetry.RecordSpan and telemetry.GetTracer helpers rather than
// calling the otel API directly.
type Telemetry struct {
	Settings *telemetry.Settings
}

func NewTelemetry(settings *telemetry.Settings) *Telemetry {
	if settings == nil {
		defaults := telemetry.DefaultSettings()
		settings = &defaults
	}
	return &Telemetry{Settings: settings}
}

func (t *Telemetry) Name() string { return "telemetry" }

func (t *Telemetry) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		tracer := telemetry.GetTracer(t.Settings)
		return telemetry.RecordSpan(ctx, tracer, telemetry.SpanOptions{
			Name:        "mediator.chat",
			Attributes:  t.attributes(req),
			EndWhenDone: true,
		}, func(ctx context.Context, span trace.Span) (ir.ChatResponse, error) {
			resp, err := next(ctx, req)
			if err == nil && resp.Usage != nil {
				span.SetAttributes(
					attribute.Int64("ai.usage.promptTokens", resp.Usage.PromptTokens),
					attribute.Int64("ai.usage.completionTokens", resp.Usage.CompletionTokens),
				)
			}
			return resp, err
		})
	}
}

func (t *Telemetry) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		tracer := telemetry.GetTracer(t.Settings)
		return telemetry.RecordSpan(ctx, tracer, telemetry.SpanOptions{
			Name:        "mediator.chat.stream",
			Attributes:  t.attributes(req),
			EndWhenDone: true,
		}, func(ctx context.Context, span trace.Span) (ir.ChatStream, error) {
			return next(ctx, req)
		})
	}
}

func (t *Telemetry) attributes(req ir.ChatRequest) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("ai.request.requestId", req.Metadata.RequestID),
	}
	if req.Parameters != nil {
		attrs = append(attrs, attribute.String("ai.model.id", req.Parameters.Model))
	}
	return attrs
}
