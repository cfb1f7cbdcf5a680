package openai

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// Frontend converts between the OpenAI Chat Completions wire format
// and the canonical ir types. It performs no I/O; Backend (backend.go)
// is what actually talks to an API endpoint.
type Frontend struct{}

var _ adapter.FrontendAdapter[Request, Response, Chunk] = Frontend{}

func (Frontend) Name() string { return "openai-chat-completions" }

// ToIR parses a dialect-native request into the canonical form. System
// messages stay inline with role "system", matching OpenAI's own
// convention (adapter.SystemInMessages).
func (Frontend) ToIR(req Request) (ir.ChatRequest, error) {
	messages := make([]ir.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, toIRMessage(m))
	}

	params := &ir.Parameters{
		Model:            req.Model,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		MaxTokens:        req.MaxTokens,
		StopSequences:    req.Stop,
		Seed:             req.Seed,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Tools:            toIRTools(req.Tools),
	}

	var schema *ir.SchemaHint
	if req.ResponseFormat != nil && req.ResponseFormat.JSONSchema != nil {
		schema = &ir.SchemaHint{
			Name:   req.ResponseFormat.JSONSchema.Name,
			Schema: req.ResponseFormat.JSONSchema.Schema,
			Strict: req.ResponseFormat.JSONSchema.Strict,
		}
	}

	return ir.ChatRequest{
		Messages:   messages,
		Parameters: params,
		Stream:     req.Stream,
		Schema:     schema,
	}, nil
}

// FromIR renders a canonical response into an OpenAI-shaped response.
func (Frontend) FromIR(resp ir.ChatResponse) (Response, error) {
	out := Response{
		ID:    resp.Metadata.ProviderResponseID,
		Model: "",
		Choices: []Choice{{
			Index:        0,
			Message:      fromIRMessage(resp.Message),
			FinishReason: string(resp.FinishReason),
		}},
	}
	if resp.Usage != nil {
		out.Usage = &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}

// FromIRChunk renders a single canonical stream chunk into an OpenAI
// streaming chunk.
func (Frontend) FromIRChunk(chunk ir.StreamChunk) (Chunk, error) {
	out := Chunk{}
	choice := ChunkChoice{Index: 0}

	switch chunk.Type {
	case ir.ChunkStart:
		choice.Delta.Role = string(chunk.Role)
	case ir.ChunkContent:
		choice.Delta.Content = chunk.Delta
	case ir.ChunkDone:
		choice.FinishReason = string(chunk.FinishReason)
		if chunk.Usage != nil {
			out.Usage = &Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}
	}
	out.Choices = []ChunkChoice{choice}
	return out, nil
}

func toIRMessage(m Message) ir.Message {
	role := ir.Role(m.Role)

	var contentBlocks []ir.ContentBlock
	switch content := m.Content.(type) {
	case string:
		contentBlocks = append(contentBlocks, ir.TextBlock{Text: content})
	case []any:
		for _, part := range content {
			obj, ok := part.(map[string]any)
			if !ok {
				continue
			}
			contentBlocks = append(contentBlocks, toIRContentPart(obj))
		}
	}

	// A message carrying a tool_call_id is itself the result of a
	// prior tool call (OpenAI's "tool" role); wrap its content rather
	// than emitting it as a plain assistant/user message.
	if m.ToolCallID != "" {
		return ir.Message{Role: role, Content: []ir.ContentBlock{
			ir.ToolResultBlock{ToolUseID: m.ToolCallID, Content: contentBlocks},
		}}
	}

	for _, tc := range m.ToolCalls {
		var input map[string]any
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &input)
		contentBlocks = append(contentBlocks, ir.ToolUseBlock{ID: tc.ID, Name: tc.Function.Name, Input: input})
	}

	return ir.Message{Role: role, Content: contentBlocks}
}

func toIRContentPart(obj map[string]any) ir.ContentBlock {
	t, _ := obj["type"].(string)
	switch t {
	case "text":
		text, _ := obj["text"].(string)
		return ir.TextBlock{Text: text}
	case "image_url":
		imageURL, _ := obj["image_url"].(map[string]any)
		url, _ := imageURL["url"].(string)
		return ir.ImageBlock{URL: url}
	}
	return ir.TextBlock{}
}

func fromIRMessage(m ir.Message) Message {
	out := Message{Role: string(m.Role)}
	if len(m.Content) == 1 {
		if tb, ok := m.Content[0].(ir.TextBlock); ok {
			out.Content = tb.Text
			return out
		}
	}

	var parts []map[string]any
	var toolCalls []ToolCall
	for _, block := range m.Content {
		switch b := block.(type) {
		case ir.TextBlock:
			parts = append(parts, map[string]any{"type": "text", "text": b.Text})
		case ir.ImageBlock:
			url := b.URL
			if url == "" && b.Base64 != "" {
				url = "data:" + b.MediaType + ";base64," + b.Base64
			}
			parts = append(parts, map[string]any{"type": "image_url", "image_url": map[string]any{"url": url}})
		case ir.ToolUseBlock:
			args, _ := json.Marshal(b.Input)
			toolCalls = append(toolCalls, ToolCall{
				ID:   b.ID,
				Type: "function",
				Function: ToolCallFunction{
					Name:      b.Name,
					Arguments: string(args),
				},
			})
		}
	}
	if len(parts) > 0 {
		out.Content = parts
	}
	out.ToolCalls = toolCalls
	return out
}

func toIRTools(tools []Tool) []ir.Tool {
	out := make([]ir.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, ir.Tool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			InputSchema: t.Function.Parameters,
		})
	}
	return out
}

func fromIRTools(tools []ir.Tool) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}
