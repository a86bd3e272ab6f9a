// Package embedder turns query and venue text into fixed-length vectors.
package embedder

import "context"

// Embedder generates vector embeddings from text. Embeddings must be
// deterministic for identical input so that repeated retrieval with the
// same query yields identical ordered results.
type Embedder interface {
	// Embed returns a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns vector embeddings for multiple texts, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int
}
