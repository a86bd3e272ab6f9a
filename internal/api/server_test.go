package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manhsontran/topgo-rag-chatbot/internal/classifier"
	"github.com/manhsontran/topgo-rag-chatbot/internal/embedder"
	"github.com/manhsontran/topgo-rag-chatbot/internal/extractor"
	"github.com/manhsontran/topgo-rag-chatbot/internal/generator"
	"github.com/manhsontran/topgo-rag-chatbot/internal/llm"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/pipeline"
	"github.com/manhsontran/topgo-rag-chatbot/internal/retriever"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

func testServer(t *testing.T, client *llm.MockClient, authToken string) (*Server, *store.MockStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	emb := &embedder.MockEmbedder{}
	st := store.NewMockStore()

	p := pipeline.New(
		classifier.New(client, logger),
		extractor.New(client, logger),
		retriever.New(emb, st, logger),
		generator.New(client, 0.7, 2048, logger),
		logger,
	)

	seed := []models.Venue{
		{ID: "v1", Name: "Nhà hàng Sen", Category: models.CategoryRestaurant, District: "Cầu Giấy", PriceTier: models.PriceModerate},
		{ID: "v2", Name: "Sky Bar", Category: models.CategoryBar, District: "Tây Hồ", PriceTier: models.PriceExpensive},
	}
	for _, v := range seed {
		vec, err := emb.Embed(context.Background(), v.Name)
		require.NoError(t, err)
		require.NoError(t, st.Upsert(context.Background(), v, vec))
	}

	return NewServer(p, st, logger, authToken), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.EqualValues(t, 2, got["venues"])
}

func TestChat(t *testing.T) {
	client := &llm.MockClient{Reply: "Bạn nên thử Nhà hàng Sen."}
	srv, _ := testServer(t, client, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat",
		map[string]any{"query": "nhà hàng ngon"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Text, "Nhà hàng Sen")
	assert.Equal(t, len(got.Sources), got.SourceCount)
}

func TestChat_EmptyQuery(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat", map[string]any{"query": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_ExplicitFilters(t *testing.T) {
	client := &llm.MockClient{Reply: "Sky Bar là lựa chọn tốt."}
	srv, _ := testServer(t, client, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat",
		map[string]any{"query": "quán bar view đẹp", "category": "bar"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 1, got.SourceCount)
	assert.Equal(t, "v2", got.Sources[0].Venue.ID)
	// Explicit filters skip extraction, so only generation hit the model.
	assert.Equal(t, 1, client.GenerateCalls)
}

func TestChat_InvalidDistrictFilter(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat",
		map[string]any{"query": "quán bar", "district": "Sao Hỏa"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_SourcesAlwaysArray(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")

	// A greeting produces no sources; the field still marshals as [].
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat",
		map[string]any{"query": "xin chào"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestSearch(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/search",
		map[string]any{"query": "Sky Bar", "category": "bar"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Results, 1)
	assert.Equal(t, "v2", got.Results[0].Venue.ID)
	assert.Equal(t, 1, got.Results[0].Rank)
}

func TestSearch_InvalidDistrict(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/search",
		map[string]any{"query": "bar", "district": "Sao Hỏa"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistricts(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/districts", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got["districts"], 30)
	assert.Contains(t, got["districts"], "Hoàn Kiếm")
}

func TestStats(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "")

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/stats", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.IndexStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 2, got.TotalVenues)
	assert.EqualValues(t, 1, got.ByCategory["bar"])
}

func TestAuth(t *testing.T) {
	srv, _ := testServer(t, &llm.MockClient{}, "secret-token")
	h := srv.Handler()

	// Missing token.
	rec := doJSON(t, h, http.MethodGet, "/v1/districts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token.
	rec = doJSON(t, h, http.MethodGet, "/v1/districts", nil,
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token.
	rec = doJSON(t, h, http.MethodGet, "/v1/districts", nil,
		map[string]string{"Authorization": "Bearer secret-token"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Healthz never requires auth.
	rec = doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
