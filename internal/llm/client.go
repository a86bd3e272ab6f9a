// Package llm provides the text-generation transport used by the
// classifier, the extractor and the answer generator.
package llm

import (
	"context"
	"errors"
	"regexp"
)

// ErrUnavailable is returned when the underlying model service cannot be
// reached. Callers degrade to deterministic behavior instead of retrying.
var ErrUnavailable = errors.New("language model unavailable")

// GenerateRequest carries one generation call's prompt and sampling knobs.
type GenerateRequest struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

// Client is the language-model transport. All methods must return promptly
// with a clear failure when the service is down; none may hang indefinitely.
type Client interface {
	// Generate produces text for the given prompt. A single call, no
	// streaming; the response is the full decoded text.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ListModels returns the model names the service can serve.
	ListModels(ctx context.Context) ([]string, error)

	// CheckConnection reports whether the service is reachable.
	CheckConnection(ctx context.Context) bool
}

// jsonObjectRe matches the first brace-delimited object in model output.
// Models regularly wrap JSON in prose or code fences, so parsing is
// permissive: take the first object, ignore the rest.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*?\}`)

// FirstJSONObject extracts the first JSON object found in a model reply.
// Returns ok=false when the reply contains no braces at all.
func FirstJSONObject(reply string) ([]byte, bool) {
	m := jsonObjectRe.FindString(reply)
	if m == "" {
		return nil, false
	}
	return []byte(m), true
}
