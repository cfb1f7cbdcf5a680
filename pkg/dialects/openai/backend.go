package openai

import (
	"context"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	internalhttp "github.com/digitallysavvy/go-ai-mediator/pkg/internal/http"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Backend executes canonical chat requests against the OpenAI Chat
// Completions API (or a compatible gateway reachable at a different
// BaseURL, e.g. Azure OpenAI or a self-hosted proxy).
type Backend struct {
	client *internalhttp.Client
}

var _ adapter.BackendAdapter = (*Backend)(nil)

// NewBackend builds a Backend. baseURL defaults to api.openai.com when
// empty.
func NewBackend(apiKey, baseURL string) *Backend {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := internalhttp.NewClient(internalhttp.Config{
		BaseURL: baseURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
		},
	})
	return &Backend{client: client}
}

func (b *Backend) Name() string { return "openai" }

func (b *Backend) Capabilities() adapter.Capabilities {
	return adapter.Capabilities{
		SupportsStreaming:        true,
		SupportsTools:            true,
		SupportsImageInput:       true,
		SupportsStructuredOutput: true,
		SystemMessages:           adapter.SystemInMessages,
	}
}

func buildRequest(req ir.ChatRequest) Request {
	messages, _ := adapter.NormalizeSystemMessages(req, adapter.SystemInMessages)
	out := Request{Model: req.Parameters.Model}
	for _, m := range messages {
		out.Messages = append(out.Messages, fromIRMessage(m))
	}
	if p := req.Parameters; p != nil {
		out.Temperature = p.Temperature
		out.TopP = p.TopP
		out.MaxTokens = p.MaxTokens
		out.Stop = p.StopSequences
		out.Seed = p.Seed
		out.FrequencyPenalty = p.FrequencyPenalty
		out.PresencePenalty = p.PresencePenalty
		out.Tools = fromIRTools(p.Tools)
	}
	if req.Schema != nil {
		out.ResponseFormat = &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Schema,
				Strict: req.Schema.Strict,
			},
		}
	}
	return out
}

func (b *Backend) Execute(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
	wire := buildRequest(req)
	var resp Response
	if err := b.client.PostJSON(ctx, "/chat/completions", wire, &resp); err != nil {
		return ir.ChatResponse{}, irerrors.NewAdapterError("openai", 0, "", "chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return ir.ChatResponse{}, irerrors.NewAdapterError("openai", 0, "empty_response", "no choices returned", nil)
	}

	choice := resp.Choices[0]
	return ir.ChatResponse{
		Message:      toIRMessage(choice.Message),
		FinishReason: mapFinishReason(choice.FinishReason),
		Usage:        convertUsage(resp.Usage),
		Metadata:     ir.Metadata{ProviderResponseID: resp.ID},
	}, nil
}

func (b *Backend) ExecuteStream(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
	wire := buildRequest(req)
	wire.Stream = true

	httpResp, err := b.client.DoStream(ctx, internalhttp.Request{Method: "POST", Path: "/chat/completions", Body: wire})
	if err != nil {
		return nil, irerrors.NewAdapterError("openai", 0, "", "stream request failed", err)
	}

	return newSSEStream(httpResp.Body), nil
}

func convertUsage(u *Usage) *ir.Usage {
	if u == nil {
		return nil
	}
	return &ir.Usage{PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens, TotalTokens: u.TotalTokens}
}

func mapFinishReason(s string) ir.FinishReason {
	switch s {
	case "stop":
		return ir.FinishStop
	case "length":
		return ir.FinishLength
	case "content_filter":
		return ir.FinishContentFilter
	case "tool_calls":
		return ir.FinishToolCalls
	case "":
		return ir.FinishOther
	default:
		return ir.FinishOther
	}
}

