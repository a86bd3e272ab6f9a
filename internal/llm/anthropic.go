package llm

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client against the Anthropic API. It is the
// cloud alternative to the local Ollama runtime, selected with
// llm.provider=anthropic; the pipeline's degraded-mode contract is the same
// for both providers.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropicClient creates a Client backed by the Anthropic Claude API.
func NewAnthropicClient(apiKey, model string, logger *slog.Logger) *AnthropicClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client: &c,
		model:  model,
		logger: logger,
	}
}

// Model returns the configured model name.
func (a *AnthropicClient) Model() string { return a.model }

func (a *AnthropicClient) Generate(ctx context.Context, greq GenerateRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(greq.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(greq.Prompt)),
		},
		Temperature: anthropic.Float(greq.Temperature),
	}
	if greq.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: greq.System}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", ErrUnavailable
	}

	var text string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			text = resp.Content[i].Text
			break
		}
	}

	a.logger.Debug("generated text", "model", a.model, "chars", len(text))
	return text, nil
}

// ListModels returns the single configured model. The Anthropic API has no
// tags endpoint comparable to Ollama's, and the pipeline only needs to know
// what it would generate with.
func (a *AnthropicClient) ListModels(_ context.Context) ([]string, error) {
	return []string{a.model}, nil
}

// CheckConnection reports whether the client is usable. Actual transport
// failures surface on Generate and degrade there; an unset API key is the
// only condition known to fail up front.
func (a *AnthropicClient) CheckConnection(_ context.Context) bool {
	return a.client != nil && a.model != ""
}
