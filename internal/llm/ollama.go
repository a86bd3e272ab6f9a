package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// ollamaCheckTimeout bounds the lightweight /api/tags health probe.
	ollamaCheckTimeout = 5 * time.Second

	// defaultGenerateTimeout bounds a full decode. Generation is slow on
	// local hardware, so this is deliberately much longer than the probe.
	defaultGenerateTimeout = 120 * time.Second
)

// OllamaClient implements Client against a local Ollama server.
type OllamaClient struct {
	baseURL         string
	model           string
	generateTimeout time.Duration
	client          *http.Client
	logger          *slog.Logger
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaClient creates a Client backed by the Ollama HTTP API.
// A generateTimeout of zero selects the default.
func NewOllamaClient(baseURL, model string, generateTimeout time.Duration, logger *slog.Logger) *OllamaClient {
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaClient{
		baseURL:         baseURL,
		model:           model,
		generateTimeout: generateTimeout,
		client:          &http.Client{},
		logger:          logger,
	}
}

// Model returns the configured generation model name.
func (o *OllamaClient) Model() string { return o.model }

func (o *OllamaClient) Generate(ctx context.Context, greq GenerateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.generateTimeout)
	defer cancel()

	// Ollama's /api/generate takes a single prompt; the system instruction
	// is prepended the same way the chat template would place it.
	prompt := greq.Prompt
	if greq.System != "" {
		prompt = greq.System + "\n\n" + greq.Prompt
	}

	reqBody := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: greq.Temperature,
			NumPredict:  greq.MaxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	url := o.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama API: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	o.logger.Debug("generated text", "model", o.model, "chars", len(result.Response))
	return result.Response, nil
}

func (o *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ollamaCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Ollama API: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API returned %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// CheckConnection probes /api/tags with a short timeout. It never blocks
// longer than the probe timeout, so callers can use it per request.
func (o *OllamaClient) CheckConnection(ctx context.Context) bool {
	_, err := o.ListModels(ctx)
	return err == nil
}
