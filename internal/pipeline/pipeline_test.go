package pipeline

import (
	"context"
	"log/slog"
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
	"github.com/manhsontran/topgo-rag-chatbot/internal/retriever"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// harness wires a full pipeline over in-memory fakes.
type harness struct {
	pipeline *Pipeline
	llm      *llm.MockClient
	store    *store.MockStore
	embedder *embedder.MockEmbedder
	gen      *generator.Generator
}

func newHarness(t *testing.T, client *llm.MockClient) *harness {
	t.Helper()
	logger := testLogger()
	emb := &embedder.MockEmbedder{}
	st := store.NewMockStore()
	gen := generator.New(client, 0.7, 2048, logger)

	p := New(
		classifier.New(client, logger),
		extractor.New(client, logger),
		retriever.New(emb, st, logger),
		gen,
		logger,
	)
	return &harness{pipeline: p, llm: client, store: st, embedder: emb, gen: gen}
}

func (h *harness) seed(t *testing.T, venues ...models.Venue) {
	t.Helper()
	ctx := context.Background()
	for _, v := range venues {
		vec, err := h.embedder.Embed(ctx, v.Name)
		require.NoError(t, err)
		require.NoError(t, h.store.Upsert(ctx, v, vec))
	}
}

func TestAnswer_Greeting(t *testing.T) {
	h := newHarness(t, &llm.MockClient{})

	got := h.pipeline.Answer(context.Background(), Request{Query: "xin chào"})

	assert.Equal(t, generator.GreetingReply, got.Text)
	assert.Zero(t, got.SourceCount)
	assert.Empty(t, got.Sources)
	// No retrieval happens for a greeting.
	assert.Equal(t, 0, h.store.QueryCalls)
	assert.Equal(t, 0, h.embedder.EmbedCalls)
}

func TestAnswer_OffTopic(t *testing.T) {
	h := newHarness(t, &llm.MockClient{})

	got := h.pipeline.Answer(context.Background(), Request{Query: "thời tiết hôm nay thế nào"})

	assert.Equal(t, generator.OffTopicReply, got.Text)
	assert.Equal(t, 0, h.store.QueryCalls)
}

func TestAnswer_VenueQuery(t *testing.T) {
	client := &llm.MockClient{}
	// First model call extracts filters, second generates the answer.
	client.Enqueue(
		`{"district": "Cầu Giấy", "category": "restaurant"}`,
		"Bạn nên thử Nhà hàng Sen ở Cầu Giấy, địa chỉ 12 Trần Thái Tông.",
	)
	h := newHarness(t, client)
	h.seed(t,
		models.Venue{ID: "v1", Name: "Nhà hàng Sen", Category: models.CategoryRestaurant, District: "Cầu Giấy", PriceTier: models.PriceModerate},
		models.Venue{ID: "v2", Name: "Sky Bar", Category: models.CategoryBar, District: "Tây Hồ", PriceTier: models.PriceExpensive},
	)

	got := h.pipeline.Answer(context.Background(), Request{Query: "nhà hàng ngon ở cầu giấy"})

	assert.Contains(t, got.Text, "Nhà hàng Sen")
	require.Equal(t, 1, got.SourceCount)
	assert.Equal(t, "v1", got.Sources[0].Venue.ID)
	assert.Equal(t, 1, got.Sources[0].Rank)
	assert.Equal(t, 1, h.store.QueryCalls)
}

func TestAnswer_InvalidDistrict(t *testing.T) {
	h := newHarness(t, &llm.MockClient{})

	got := h.pipeline.Answer(context.Background(), Request{Query: "tìm quán bar ở quận Sao Hỏa"})

	assert.Contains(t, got.Text, "sao hỏa")
	assert.Contains(t, got.Text, "không tồn tại")
	// Real districts are suggested instead.
	assert.Contains(t, got.Text, "Hoàn Kiếm")
	assert.Zero(t, got.SourceCount)
	assert.Equal(t, 0, h.store.QueryCalls)
}

func TestAnswer_ModelDownDegrades(t *testing.T) {
	h := newHarness(t, &llm.MockClient{Down: true})
	h.seed(t,
		models.Venue{ID: "v1", Name: "Phở Hà Nội", Category: models.CategoryRestaurant, District: "Hoàn Kiếm", PriceTier: models.PriceCheap},
	)

	got := h.pipeline.Answer(context.Background(), Request{Query: "phở ngon hoàn kiếm"})

	// Retrieval still ran and the answer is the deterministic listing.
	require.Equal(t, 1, got.SourceCount)
	assert.Contains(t, got.Text, "Phở Hà Nội")
	assert.Contains(t, got.Text, "Tìm thấy 1 địa điểm")
}

func TestAnswer_GenerationFailureFallsBack(t *testing.T) {
	client := &llm.MockClient{Err: context.DeadlineExceeded}
	h := newHarness(t, client)
	h.seed(t,
		models.Venue{ID: "v1", Name: "Lẩu Phan", Category: models.CategoryRestaurant, District: "Thanh Xuân", PriceTier: models.PriceModerate},
	)

	got := h.pipeline.Answer(context.Background(), Request{Query: "lẩu ngon thanh xuân"})

	require.Equal(t, 1, got.SourceCount)
	assert.Equal(t, h.gen.Fallback(got.Sources), got.Text)
}

func TestAnswer_EmptyQuery(t *testing.T) {
	h := newHarness(t, &llm.MockClient{})

	got := h.pipeline.Answer(context.Background(), Request{Query: "   "})
	assert.Equal(t, EmptyQueryReply, got.Text)
	assert.Equal(t, 0, h.store.QueryCalls)
}

func TestAnswer_NoResults(t *testing.T) {
	client := &llm.MockClient{Reply: "should not reach generation with this"}
	client.Enqueue(`{"category": "karaoke"}`)
	h := newHarness(t, client)
	h.seed(t,
		models.Venue{ID: "v1", Name: "Nhà hàng Sen", Category: models.CategoryRestaurant, District: "Cầu Giấy"},
	)

	got := h.pipeline.Answer(context.Background(), Request{Query: "karaoke gần đây"})

	assert.Zero(t, got.SourceCount)
	assert.Equal(t, generator.NoResultsMessage, got.Text)
}

func TestAnswer_ExplicitFiltersBypassExtraction(t *testing.T) {
	client := &llm.MockClient{Reply: "Giới thiệu Sky Bar ở Tây Hồ."}
	h := newHarness(t, client)
	h.seed(t,
		models.Venue{ID: "v1", Name: "Sky Bar", Category: models.CategoryBar, District: "Tây Hồ"},
		models.Venue{ID: "v2", Name: "Nhà hàng Sen", Category: models.CategoryRestaurant, District: "Cầu Giấy"},
	)

	got := h.pipeline.Answer(context.Background(), Request{
		Query:   "quán bar view đẹp",
		Filters: models.Filters{Category: models.CategoryBar},
	})

	require.Equal(t, 1, got.SourceCount)
	assert.Equal(t, "v1", got.Sources[0].Venue.ID)
	// Only the generation call hit the model; extraction was skipped.
	assert.Equal(t, 1, client.GenerateCalls)
}

func TestAnswer_ConfiguredTopK(t *testing.T) {
	client := &llm.MockClient{Reply: "Gợi ý quán bar."}
	h := newHarness(t, client)
	h.seed(t,
		models.Venue{ID: "v1", Name: "Sky Bar", Category: models.CategoryBar, District: "Tây Hồ"},
		models.Venue{ID: "v2", Name: "Moon Bar", Category: models.CategoryBar, District: "Tây Hồ"},
	)
	h.pipeline.SetDefaultTopK(1)

	// No per-request TopK: the configured default applies.
	got := h.pipeline.Answer(context.Background(), Request{
		Query:   "quán bar view đẹp",
		Filters: models.Filters{Category: models.CategoryBar},
	})
	assert.Equal(t, 1, got.SourceCount)

	// A per-request TopK still wins.
	got = h.pipeline.Answer(context.Background(), Request{
		Query:   "quán bar view đẹp",
		Filters: models.Filters{Category: models.CategoryBar},
		TopK:    2,
	})
	assert.Equal(t, 2, got.SourceCount)
}

func TestAnswer_SourcesNeverNil(t *testing.T) {
	h := newHarness(t, &llm.MockClient{})

	for _, query := range []string{"", "xin chào", "quán ăn ở quận sao hỏa"} {
		got := h.pipeline.Answer(context.Background(), Request{Query: query})
		assert.NotNil(t, got.Sources, "query %q", query)
	}
}

func TestSearch(t *testing.T) {
	client := &llm.MockClient{}
	client.Enqueue(`{"district": "Tây Hồ"}`)
	h := newHarness(t, client)
	h.seed(t,
		models.Venue{ID: "v1", Name: "Sky Bar", Category: models.CategoryBar, District: "Tây Hồ"},
		models.Venue{ID: "v2", Name: "Nhà hàng Sen", Category: models.CategoryRestaurant, District: "Cầu Giấy"},
	)

	got, err := h.pipeline.Search(context.Background(), "quán bar tây hồ", models.Filters{}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].Venue.ID)
}

func TestSearch_InvalidDistrictSurfaces(t *testing.T) {
	h := newHarness(t, &llm.MockClient{})

	_, err := h.pipeline.Search(context.Background(), "quán bar quận Sao Hỏa", models.Filters{}, 5)

	var invalid *extractor.InvalidDistrictError
	assert.ErrorAs(t, err, &invalid)
}
