package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected string
		ok       bool
	}{
		{name: "bare object", reply: `{"a": 1}`, expected: `{"a": 1}`, ok: true},
		{name: "prose around object", reply: "Đây là kết quả: {\"a\": 1} xong.", expected: `{"a": 1}`, ok: true},
		{name: "code fence", reply: "```json\n{\"a\": 1}\n```", expected: `{"a": 1}`, ok: true},
		{name: "two objects takes first", reply: `{"a": 1} {"b": 2}`, expected: `{"a": 1}`, ok: true},
		{name: "no object", reply: "không có JSON ở đây", ok: false},
		{name: "empty", reply: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstJSONObject(tt.reply)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, string(got))
			}
		})
	}
}

func TestOllamaGenerate(t *testing.T) {
	var captured ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "Xin chào bạn!"})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5:7b", 10*time.Second, testLogger())

	got, err := c.Generate(context.Background(), GenerateRequest{
		Prompt:      "chào",
		System:      "Trả lời ngắn gọn.",
		Temperature: 0.3,
		MaxTokens:   64,
	})
	require.NoError(t, err)
	assert.Equal(t, "Xin chào bạn!", got)

	assert.Equal(t, "qwen2.5:7b", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, 0.3, captured.Options.Temperature)
	assert.Equal(t, 64, captured.Options.NumPredict)
	// System instruction is prepended to the prompt.
	assert.Equal(t, "Trả lời ngắn gọn.\n\nchào", captured.Prompt)
}

func TestOllamaGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "missing", time.Second, testLogger())
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "chào"})
	assert.Error(t, err)
}

func TestOllamaGenerate_Unreachable(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1", "qwen2.5:7b", time.Second, testLogger())
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "chào"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOllamaListModelsAndCheckConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "qwen2.5:7b"},
				{"name": "nomic-embed-text"},
			},
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5:7b", time.Second, testLogger())

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen2.5:7b", "nomic-embed-text"}, models)

	assert.True(t, c.CheckConnection(context.Background()))
}

func TestOllamaCheckConnection_Down(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1", "qwen2.5:7b", time.Second, testLogger())
	assert.False(t, c.CheckConnection(context.Background()))
}

func TestMockClientQueue(t *testing.T) {
	m := &MockClient{Reply: "default"}
	m.Enqueue("first", "second")

	ctx := context.Background()
	got, err := m.Generate(ctx, GenerateRequest{Prompt: "a"})
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, _ = m.Generate(ctx, GenerateRequest{Prompt: "b"})
	assert.Equal(t, "second", got)

	got, _ = m.Generate(ctx, GenerateRequest{Prompt: "c"})
	assert.Equal(t, "default", got)

	assert.Equal(t, 3, m.GenerateCalls)
	assert.Equal(t, "c", m.LastRequest.Prompt)
}
