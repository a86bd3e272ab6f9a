package store

import (
	"context"
	"sort"
	"sync"

	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
)

// MockStore is an in-memory implementation of Store for testing. Distances
// are squared euclidean, matching what the real index reports.
type MockStore struct {
	mu     sync.RWMutex
	venues map[string]*storedVenue

	// QueryCalls counts Query invocations so tests can assert the
	// retriever was (or was not) reached.
	QueryCalls int
}

type storedVenue struct {
	venue  models.Venue
	vector []float32
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		venues: make(map[string]*storedVenue),
	}
}

// EnsureCollection is a no-op for the mock store.
func (m *MockStore) EnsureCollection(_ context.Context) error {
	return nil
}

// Upsert inserts or updates a venue in the mock store.
func (m *MockStore) Upsert(_ context.Context, venue models.Venue, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Deep-copy mutable fields to prevent external mutation of stored data.
	if len(venue.Cuisines) > 0 {
		venue.Cuisines = append([]string(nil), venue.Cuisines...)
	}
	if len(venue.Features) > 0 {
		venue.Features = append([]string(nil), venue.Features...)
	}
	m.venues[venue.ID] = &storedVenue{venue: venue, vector: vector}
	return nil
}

// Query finds venues by squared euclidean distance to the query vector.
// Ties break on venue ID so repeated queries return identical order.
func (m *MockStore) Query(_ context.Context, vector []float32, k int, filters models.Filters) ([]Hit, error) {
	m.mu.Lock()
	m.QueryCalls++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Hit
	for _, sv := range m.venues {
		if !matchesFilters(sv.venue, filters) {
			continue
		}
		hits = append(hits, Hit{
			Venue:    sv.venue,
			Distance: squaredDistance(vector, sv.vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Venue.ID < hits[j].Venue.ID
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *MockStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.venues)), nil
}

func (m *MockStore) Stats(_ context.Context) (*models.IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.IndexStats{
		TotalVenues: int64(len(m.venues)),
		ByCategory:  make(map[string]int64),
		ByPriceTier: make(map[string]int64),
	}
	for _, sv := range m.venues {
		stats.ByCategory[string(sv.venue.Category)]++
		stats.ByPriceTier[string(sv.venue.PriceTier)]++
	}
	return stats, nil
}

func (m *MockStore) Close() error {
	return nil
}

func matchesFilters(v models.Venue, f models.Filters) bool {
	if f.District != "" && v.District != f.District {
		return false
	}
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	if f.PriceTier != "" && v.PriceTier != f.PriceTier {
		return false
	}
	return true
}

func squaredDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
