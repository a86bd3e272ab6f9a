// Package store wraps the vector index holding venue documents.
package store

import (
	"context"

	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
)

// Hit is one nearest-neighbor result: a venue and its raw index distance.
// Distance conversion to a similarity score happens in the retriever;
// the store reports whatever metric the index uses, smaller is closer.
type Hit struct {
	Venue    models.Venue
	Distance float64
}

// Store is the vector index interface. An empty result set is a normal
// outcome, not an error; only transport and protocol failures are errors.
type Store interface {
	// EnsureCollection creates the venue collection if it doesn't exist.
	EnsureCollection(ctx context.Context) error

	// Upsert inserts or updates a venue with its embedding vector.
	Upsert(ctx context.Context, venue models.Venue, vector []float32) error

	// Query finds the k venues nearest to the query vector, restricted to
	// venues matching every set filter dimension (conjunctive).
	Query(ctx context.Context, vector []float32, k int, filters models.Filters) ([]Hit, error)

	// Count returns the number of venues in the collection.
	Count(ctx context.Context) (int64, error)

	// Stats returns collection statistics broken down by category and tier.
	Stats(ctx context.Context) (*models.IndexStats, error)

	// Close cleans up resources.
	Close() error
}
