package adapter

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	"github.com/digitallysavvy/go-ai-mediator/pkg/telemetry"
)

// NormalizeSystemMessages rewrites req.Messages to match the given
// strategy:
//
//   - SystemInMessages leaves Messages and systemText untouched.
//   - SystemSeparateParameter strips system messages out of Messages
//     and returns their text as systemText.
//   - SystemPrependUser folds system text onto the front of the first
//     user message (creating one if none exists) instead of sending it
//     as its own message or parameter.
//   - SystemNotSupported drops system text entirely, recording a
//     telemetry warning when non-empty text was actually discarded.
//
// This lives in adapter rather than ir because it encodes a
// backend-specific convention, not part of the canonical shape itself.
func NormalizeSystemMessages(req ir.ChatRequest, strategy SystemMessageStrategy) (messages []ir.Message, systemText string) {
	switch strategy {
	case SystemInMessages:
		return req.Messages, ""
	case SystemPrependUser:
		return prependSystemToFirstUser(req), ""
	case SystemNotSupported:
		if text := req.SystemText(); text != "" {
			warnSystemTextDropped(req)
		}
		return stripSystemMessages(req), ""
	default:
		return stripSystemMessages(req), req.SystemText()
	}
}

func stripSystemMessages(req ir.ChatRequest) []ir.Message {
	messages := make([]ir.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == ir.RoleSystem {
			continue
		}
		messages = append(messages, m)
	}
	return messages
}

func prependSystemToFirstUser(req ir.ChatRequest) []ir.Message {
	text := req.SystemText()
	messages := stripSystemMessages(req)
	if text == "" {
		return messages
	}

	for i, m := range messages {
		if m.Role != ir.RoleUser {
			continue
		}
		merged := make([]ir.Message, len(messages))
		copy(merged, messages)
		merged[i] = ir.Message{
			Role:     m.Role,
			Content:  append([]ir.ContentBlock{ir.TextBlock{Text: text}}, m.Content...),
			Metadata: m.Metadata,
		}
		return merged
	}

	return append([]ir.Message{ir.NewTextMessage(ir.RoleUser, text)}, messages...)
}

// warnSystemTextDropped records a span event noting that a backend
// without system-message support silently lost non-empty system text.
func warnSystemTextDropped(req ir.ChatRequest) {
	tracer := otel.Tracer(telemetry.TracerName)
	_, span := tracer.Start(context.Background(), "mediator.system_message.dropped")
	span.AddEvent("system message dropped: backend does not support system messages",
		trace.WithAttributes(attribute.String("ai.request.requestId", req.Metadata.RequestID)))
	span.End()
}
