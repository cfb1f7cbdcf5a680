package anthropic

import (
	"encoding/json"
	"io"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	"github.com/digitallysavvy/go-ai-mediator/pkg/providerutils/streaming"
)

// sseStream adapts Anthropic's named-event SSE stream (message_start,
// content_block_delta, message_delta, message_stop, ...) into an
// ir.ChatStream.
type sseStream struct {
	body   io.ReadCloser
	parser *streaming.SSEParser
	err    error
}

func newSSEStream(body io.ReadCloser) *sseStream {
	return &sseStream{body: body, parser: streaming.NewSSEParser(body)}
}

func (s *sseStream) Next() (ir.StreamChunk, bool) {
	event, err := s.parser.Next()
	if err == io.EOF {
		return ir.StreamChunk{}, false
	}
	if err != nil {
		s.err = err
		return ir.StreamChunk{Type: ir.ChunkError, Error: err.Error()}, true
	}
	if streaming.IsStreamDone(event) || event.Event == "message_stop" {
		return ir.StreamChunk{}, false
	}

	var payload StreamEvent
	if err := json.Unmarshal([]byte(event.Data), &payload); err != nil {
		s.err = err
		return ir.StreamChunk{Type: ir.ChunkError, Error: err.Error()}, true
	}

	switch payload.Type {
	case "message_start":
		return ir.StreamChunk{Type: ir.ChunkStart, Role: ir.RoleAssistant}, true
	case "content_block_delta":
		if payload.Delta == nil || payload.Delta.Text == "" {
			return s.Next()
		}
		return ir.StreamChunk{Type: ir.ChunkContent, Delta: payload.Delta.Text}, true
	case "message_delta":
		var usage *ir.Usage
		if payload.Usage != nil {
			usage = &ir.Usage{PromptTokens: payload.Usage.InputTokens, CompletionTokens: payload.Usage.OutputTokens, TotalTokens: payload.Usage.InputTokens + payload.Usage.OutputTokens}
		}
		reason := ir.FinishOther
		if payload.Delta != nil {
			reason = toIRFinishReason(payload.Delta.StopReason)
		}
		return ir.StreamChunk{Type: ir.ChunkDone, FinishReason: reason, Usage: usage}, true
	default:
		// content_block_start, content_block_stop, ping, and any other
		// event types carry nothing the canonical stream needs.
		return s.Next()
	}
}

func (s *sseStream) Err() error   { return s.err }
func (s *sseStream) Close() error { return s.body.Close() }
