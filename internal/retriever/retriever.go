// Package retriever performs semantic venue retrieval over the vector
// index.
package retriever

import (
	"context"
	"log/slog"

	"github.com/manhsontran/topgo-rag-chatbot/internal/embedder"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

// Similarity converts an index distance to a score in (0,1]. d=0 maps to 1
// and the score decays monotonically toward 0 as d grows. This conversion
// is a fixed contract of the retrieval layer, not a tunable.
func Similarity(distance float64) float64 {
	return 1 / (1 + distance)
}

// Retriever embeds queries and runs filtered nearest-neighbor search.
type Retriever struct {
	embedder embedder.Embedder
	store    store.Store
	logger   *slog.Logger
}

// New creates a retriever over the given embedder and index.
func New(emb embedder.Embedder, st store.Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: emb, store: st, logger: logger}
}

// Retrieve returns up to k venues most similar to the query, most similar
// first, tagged with 1-based ranks. An unreachable or empty index yields an
// empty result, never an error: downstream treats zero candidates as a
// normal outcome.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters models.Filters, k int) []models.ScoredVenue {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("embedding query failed, treating as zero results", "error", err)
		return nil
	}

	hits, err := r.store.Query(ctx, vec, k, filters)
	if err != nil {
		r.logger.Warn("index query failed, treating as zero results", "error", err)
		return nil
	}

	results := make([]models.ScoredVenue, 0, len(hits))
	for i, h := range hits {
		results = append(results, models.ScoredVenue{
			Venue:      h.Venue,
			Similarity: Similarity(h.Distance),
			Rank:       i + 1,
		})
	}

	r.logger.Debug("retrieved venues", "query_chars", len(query), "count", len(results))
	return results
}
