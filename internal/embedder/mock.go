package embedder

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
)

// ErrMockDown is returned by a MockEmbedder with Down set.
var ErrMockDown = errors.New("mock embedder is down")

// MockEmbedder is a deterministic in-memory Embedder for testing. Identical
// text always yields an identical vector; different texts almost always
// yield different vectors.
type MockEmbedder struct {
	mu sync.Mutex

	// Dim is the vector dimension; defaults to 8 when zero.
	Dim int

	// Down makes every call fail.
	Down bool

	// EmbedCalls counts Embed and EmbedBatch invocations.
	EmbedCalls int
}

func (m *MockEmbedder) dimension() int {
	if m.Dim <= 0 {
		return 8
	}
	return m.Dim
}

// Embed returns a deterministic pseudo-vector derived from the text.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.EmbedCalls++
	down := m.Down
	m.mu.Unlock()

	if down {
		return nil, ErrMockDown
	}
	return hashVector(text, m.dimension()), nil
}

// EmbedBatch embeds each text independently, in order.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int {
	return m.dimension()
}

// hashVector spreads an FNV hash of the text across dim dimensions.
func hashVector(text string, dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		h := fnv.New32a()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i)})
		vec[i] = float32(h.Sum32()%1000) / 1000
	}
	return vec
}
