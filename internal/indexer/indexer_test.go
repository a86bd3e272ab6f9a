package indexer

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manhsontran/topgo-rag-chatbot/internal/embedder"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeVenuesFile(t *testing.T, records []venueRecord) string {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "venues.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestIndexFile(t *testing.T) {
	records := []venueRecord{
		{
			ID:             "rest_001",
			Name:           "Nhà hàng Sen",
			BusinessType:   "restaurant",
			District:       "cau giay",
			PriceRange:     "trung_binh",
			Phone:          "024 1234 5678",
			Address:        "12 Trần Thái Tông",
			CuisineType:    []string{"Việt Nam"},
			SearchableText: "Nhà hàng Sen món Việt truyền thống Cầu Giấy",
		},
		{
			ID:           "bar_001",
			Name:         "Sky Bar",
			BusinessType: "bar",
			District:     "Tây Hồ",
			PriceRange:   "cao_cap",
			Description:  "Bar rooftop view Hồ Tây",
		},
		{
			// Nameless records are crawler noise and get skipped.
			ID:           "junk_001",
			BusinessType: "restaurant",
		},
	}
	path := writeVenuesFile(t, records)

	emb := &embedder.MockEmbedder{}
	st := store.NewMockStore()
	ix := New(emb, st, testLogger())

	res, err := ix.IndexFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Loaded)
	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 1, res.Skipped)

	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Stored venues carry normalized fields.
	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ByCategory["restaurant"])
	assert.EqualValues(t, 1, stats.ByCategory["bar"])
	assert.EqualValues(t, 1, stats.ByPriceTier["moderate"])
	assert.EqualValues(t, 1, stats.ByPriceTier["expensive"])
}

func TestIndexFile_MissingFile(t *testing.T) {
	ix := New(&embedder.MockEmbedder{}, store.NewMockStore(), testLogger())
	_, err := ix.IndexFile(context.Background(), "/does/not/exist.json")
	assert.Error(t, err)
}

func TestIndexFile_EmbedderDown(t *testing.T) {
	path := writeVenuesFile(t, []venueRecord{{ID: "a", Name: "Quán A"}})
	ix := New(&embedder.MockEmbedder{Down: true}, store.NewMockStore(), testLogger())
	_, err := ix.IndexFile(context.Background(), path)
	assert.Error(t, err)
}

func TestRecordToVenue(t *testing.T) {
	rec := venueRecord{
		Name:         "Quán Ốc",
		BusinessType: "quán ăn",
		District:     "hoan kiem",
		PriceRange:   "binh_dan",
	}
	v := recordToVenue(rec, 7)

	assert.Equal(t, "venue_7", v.ID)
	assert.Equal(t, models.CategoryRestaurant, v.Category)
	assert.Equal(t, "Hoàn Kiếm", v.District)
	assert.Equal(t, models.PriceCheap, v.PriceTier)
}

func TestRecordToVenue_TierFromAvgPrice(t *testing.T) {
	// When the crawler has no tier label, the per-person price decides.
	cheap := recordToVenue(venueRecord{Name: "A", AvgPrice: 60_000}, 0)
	assert.Equal(t, models.PriceCheap, cheap.PriceTier)

	pricey := recordToVenue(venueRecord{Name: "B", AvgPrice: 450_000}, 1)
	assert.Equal(t, models.PriceExpensive, pricey.PriceTier)

	// An explicit tier label wins over the price.
	labeled := recordToVenue(venueRecord{Name: "C", PriceRange: "binh_dan", AvgPrice: 450_000}, 2)
	assert.Equal(t, models.PriceCheap, labeled.PriceTier)
}

func TestRecordToVenue_UnknownFieldsDefault(t *testing.T) {
	v := recordToVenue(venueRecord{Name: "X", BusinessType: "spa", PriceRange: "??", District: "Phố Cổ"}, 0)

	assert.Equal(t, models.CategoryOther, v.Category)
	assert.Equal(t, models.PriceModerate, v.PriceTier)
	// Unknown districts pass through untouched; filtering just won't match them.
	assert.Equal(t, "Phố Cổ", v.District)
}

func TestEmbeddingText(t *testing.T) {
	withText := venueRecord{Name: "A", SearchableText: "sẵn có"}
	assert.Equal(t, "sẵn có", embeddingText(withText))

	composite := venueRecord{Name: "Quán B", Description: "lẩu ngon", Address: "1 Phố Huế", District: "Hai Bà Trưng", CuisineType: []string{"lẩu"}}
	got := embeddingText(composite)
	assert.Contains(t, got, "Quán B")
	assert.Contains(t, got, "lẩu ngon")
	assert.Contains(t, got, "1 Phố Huế")
}
