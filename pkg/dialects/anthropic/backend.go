package anthropic

import (
	"context"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	internalhttp "github.com/digitallysavvy/go-ai-mediator/pkg/internal/http"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
	irerrors "github.com/digitallysavvy/go-ai-mediator/pkg/ir/errors"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
	defaultMaxTok  = 4096
)

// Backend executes canonical chat requests against the Anthropic
// Messages API.
type Backend struct {
	client *internalhttp.Client
}

var _ adapter.BackendAdapter = (*Backend)(nil)

// NewBackend builds a Backend. baseURL defaults to api.anthropic.com
// when empty.
func NewBackend(apiKey, baseURL string) *Backend {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := internalhttp.NewClient(internalhttp.Config{
		BaseURL: baseURL,
		Headers: map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": apiVersion,
		},
	})
	return &Backend{client: client}
}

func (b *Backend) Name() string { return "anthropic" }

func (b *Backend) Capabilities() adapter.Capabilities {
	return adapter.Capabilities{
		SupportsStreaming:        true,
		SupportsTools:            true,
		SupportsImageInput:       true,
		SupportsStructuredOutput: false,
		SystemMessages:           adapter.SystemSeparateParameter,
	}
}

func buildRequest(req ir.ChatRequest) Request {
	messages, systemText := adapter.NormalizeSystemMessages(req, adapter.SystemSeparateParameter)
	out := Request{Model: req.Parameters.Model, System: systemText, MaxTokens: defaultMaxTok}
	for _, m := range messages {
		out.Messages = append(out.Messages, fromIRMessage(m))
	}
	if p := req.Parameters; p != nil {
		out.Temperature = p.Temperature
		out.TopP = p.TopP
		out.TopK = p.TopK
		if p.MaxTokens > 0 {
			out.MaxTokens = p.MaxTokens
		}
		out.StopSequences = p.StopSequences
		out.Tools = fromIRTools(p.Tools)
	}
	return out
}

func fromIRMessage(m ir.Message) Message {
	return Message{Role: string(m.Role), Content: fromIRContentBlocks(m.Content)}
}

func (b *Backend) Execute(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
	wire := buildRequest(req)
	var resp Response
	if err := b.client.PostJSON(ctx, "/messages", wire, &resp); err != nil {
		return ir.ChatResponse{}, irerrors.NewAdapterError("anthropic", 0, "", "message request failed", err)
	}
	if len(resp.Content) == 0 {
		return ir.ChatResponse{}, irerrors.NewAdapterError("anthropic", 0, "empty_response", "no content returned", nil)
	}

	blocks := make([]ir.ContentBlock, 0, len(resp.Content))
	for _, b := range resp.Content {
		blocks = append(blocks, toIRContentBlock(b))
	}

	return ir.ChatResponse{
		Message:      ir.Message{Role: ir.RoleAssistant, Content: blocks},
		FinishReason: toIRFinishReason(resp.StopReason),
		Usage:        &ir.Usage{PromptTokens: resp.Usage.InputTokens, CompletionTokens: resp.Usage.OutputTokens, TotalTokens: resp.Usage.InputTokens + resp.Usage.OutputTokens},
		Metadata:     ir.Metadata{ProviderResponseID: resp.ID},
	}, nil
}

func (b *Backend) ExecuteStream(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
	wire := buildRequest(req)
	wire.Stream = true

	httpResp, err := b.client.DoStream(ctx, internalhttp.Request{Method: "POST", Path: "/messages", Body: wire})
	if err != nil {
		return nil, irerrors.NewAdapterError("anthropic", 0, "", "stream request failed", err)
	}

	return newSSEStream(httpResp.Body), nil
}
