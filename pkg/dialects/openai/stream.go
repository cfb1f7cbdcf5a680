package openai

import (
	"encoding/json"
	"io"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	"github.com/digitallysavvy/go-ai-mediator/pkg/providerutils/streaming"
)

// sseStream adapts OpenAI's "data: {json}\n\n" SSE stream, terminated
// by a literal "data: [DONE]" event, into an ir.ChatStream. It reuses
// the shared SSE scanner in providerutils/streaming rather than
// re-implementing one.
type sseStream struct {
	body    io.ReadCloser
	parser  *streaming.SSEParser
	started bool
	err     error
}

func newSSEStream(body io.ReadCloser) *sseStream {
	return &sseStream{body: body, parser: streaming.NewSSEParser(body)}
}

func (s *sseStream) Next() (ir.StreamChunk, bool) {
	if !s.started {
		s.started = true
		return ir.StreamChunk{Type: ir.ChunkStart, Role: ir.RoleAssistant}, true
	}

	event, err := s.parser.Next()
	if err == io.EOF {
		return ir.StreamChunk{}, false
	}
	if err != nil {
		s.err = err
		return ir.StreamChunk{Type: ir.ChunkError, Error: err.Error()}, true
	}
	if streaming.IsStreamDone(event) {
		return ir.StreamChunk{}, false
	}

	var chunk Chunk
	if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
		s.err = err
		return ir.StreamChunk{Type: ir.ChunkError, Error: err.Error()}, true
	}
	if len(chunk.Choices) == 0 {
		return s.Next()
	}

	choice := chunk.Choices[0]
	if choice.FinishReason != "" {
		var usage *ir.Usage
		if chunk.Usage != nil {
			usage = &ir.Usage{PromptTokens: chunk.Usage.PromptTokens, CompletionTokens: chunk.Usage.CompletionTokens, TotalTokens: chunk.Usage.TotalTokens}
		}
		return ir.StreamChunk{Type: ir.ChunkDone, FinishReason: mapFinishReason(choice.FinishReason), Usage: usage}, true
	}
	if choice.Delta.Content == "" {
		return s.Next()
	}
	return ir.StreamChunk{Type: ir.ChunkContent, Delta: choice.Delta.Content}, true
}

func (s *sseStream) Err() error   { return s.err }
func (s *sseStream) Close() error { return s.body.Close() }
