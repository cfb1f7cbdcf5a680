package anthropic

import (
	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// Frontend converts between the Anthropic Messages wire format and the
// canonical ir types. It performs no I/O; Backend (backend.go) talks to
// the actual endpoint.
type Frontend struct{}

var _ adapter.FrontendAdapter[Request, Response, StreamEvent] = Frontend{}

func (Frontend) Name() string { return "anthropic-messages" }

// ToIR parses a dialect-native request into the canonical form. System
// text arrives as a separate top-level field and is re-inserted as a
// leading system message so downstream ir consumers see one uniform
// shape regardless of dialect.
func (Frontend) ToIR(req Request) (ir.ChatRequest, error) {
	messages := make([]ir.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ir.NewTextMessage(ir.RoleSystem, req.System))
	}
	for _, m := range req.Messages {
		messages = append(messages, toIRMessage(m))
	}

	params := &ir.Parameters{
		Model:         req.Model,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		TopK:          req.TopK,
		MaxTokens:     req.MaxTokens,
		StopSequences: req.StopSequences,
		Tools:         toIRTools(req.Tools),
	}

	return ir.ChatRequest{
		Messages:   messages,
		Parameters: params,
		Stream:     req.Stream,
	}, nil
}

// FromIR renders a canonical response into Anthropic's response shape.
func (Frontend) FromIR(resp ir.ChatResponse) (Response, error) {
	out := Response{
		ID:         resp.Metadata.ProviderResponseID,
		Content:    fromIRContentBlocks(resp.Message.Content),
		StopReason: fromIRFinishReason(resp.FinishReason),
	}
	if resp.Usage != nil {
		out.Usage = Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	}
	return out, nil
}

// FromIRChunk renders a single canonical stream chunk into an Anthropic
// streaming event. Only the fields that event type actually carries on
// the wire are populated.
func (Frontend) FromIRChunk(chunk ir.StreamChunk) (StreamEvent, error) {
	switch chunk.Type {
	case ir.ChunkStart:
		return StreamEvent{Type: "message_start", Message: &Response{}}, nil
	case ir.ChunkContent:
		return StreamEvent{
			Type:  "content_block_delta",
			Delta: &StreamDelta{Type: "text_delta", Text: chunk.Delta},
		}, nil
	case ir.ChunkDone:
		event := StreamEvent{
			Type:  "message_delta",
			Delta: &StreamDelta{StopReason: fromIRFinishReason(chunk.FinishReason)},
		}
		if chunk.Usage != nil {
			event.Usage = &Usage{InputTokens: chunk.Usage.PromptTokens, OutputTokens: chunk.Usage.CompletionTokens}
		}
		return event, nil
	case ir.ChunkError:
		return StreamEvent{Type: "error"}, nil
	}
	return StreamEvent{}, nil
}

func toIRMessage(m Message) ir.Message {
	role := ir.Role(m.Role)

	for _, block := range m.Content {
		if block.Type == "tool_result" {
			return ir.Message{Role: role, Content: []ir.ContentBlock{
				ir.ToolResultBlock{ToolUseID: block.ToolUseID, Content: toolResultBlocks(block.Content), IsError: block.IsError},
			}}
		}
	}

	blocks := make([]ir.ContentBlock, 0, len(m.Content))
	for _, block := range m.Content {
		blocks = append(blocks, toIRContentBlock(block))
	}
	return ir.Message{Role: role, Content: blocks}
}

func toIRContentBlock(b ContentBlock) ir.ContentBlock {
	switch b.Type {
	case "text":
		return ir.TextBlock{Text: b.Text}
	case "image":
		if b.Source != nil {
			return ir.ImageBlock{Base64: b.Source.Data, MediaType: b.Source.MediaType}
		}
		return ir.ImageBlock{}
	case "tool_use":
		return ir.ToolUseBlock{ID: b.ID, Name: b.Name, Input: b.Input}
	}
	return ir.TextBlock{Text: b.Text}
}

// toolResultBlocks interprets the loosely typed Content of a
// tool_result block: Anthropic allows either a plain string or a list
// of content blocks there.
func toolResultBlocks(content any) []ir.ContentBlock {
	switch v := content.(type) {
	case string:
		return []ir.ContentBlock{ir.TextBlock{Text: v}}
	case []any:
		var out []ir.ContentBlock
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			text, _ := obj["text"].(string)
			out = append(out, ir.TextBlock{Text: text})
		}
		return out
	}
	return nil
}

func fromIRContentBlocks(blocks []ir.ContentBlock) []ContentBlock {
	out := make([]ContentBlock, 0, len(blocks))
	for _, block := range blocks {
		switch b := block.(type) {
		case ir.TextBlock:
			out = append(out, ContentBlock{Type: "text", Text: b.Text})
		case ir.ImageBlock:
			out = append(out, ContentBlock{Type: "image", Source: &ImageSource{Type: "base64", MediaType: b.MediaType, Data: b.Base64}})
		case ir.ToolUseBlock:
			out = append(out, ContentBlock{Type: "tool_use", ID: b.ID, Name: b.Name, Input: b.Input})
		case ir.ToolResultBlock:
			text := ""
			for _, inner := range b.Content {
				if tb, ok := inner.(ir.TextBlock); ok {
					text += tb.Text
				}
			}
			out = append(out, ContentBlock{Type: "tool_result", ToolUseID: b.ToolUseID, Content: text, IsError: b.IsError})
		}
	}
	return out
}

func toIRTools(tools []Tool) []ir.Tool {
	out := make([]ir.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, ir.Tool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	return out
}

func fromIRTools(tools []ir.Tool) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, Tool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	return out
}

func fromIRFinishReason(r ir.FinishReason) string {
	switch r {
	case ir.FinishStop:
		return "end_turn"
	case ir.FinishLength:
		return "max_tokens"
	case ir.FinishToolCalls:
		return "tool_use"
	default:
		return "end_turn"
	}
}

func toIRFinishReason(s string) ir.FinishReason {
	switch s {
	case "end_turn", "stop_sequence":
		return ir.FinishStop
	case "max_tokens":
		return ir.FinishLength
	case "tool_use":
		return ir.FinishToolCalls
	default:
		return ir.FinishOther
	}
}
