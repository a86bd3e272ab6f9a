package llm

import (
	"context"
	"sync"
)

// MockClient is an in-memory Client for testing. Replies are returned in
// FIFO order; when the queue is empty, Reply is returned for every call.
type MockClient struct {
	mu sync.Mutex

	// Down simulates an unreachable service: CheckConnection reports false
	// and Generate returns ErrUnavailable.
	Down bool

	// Err, when set, is returned by Generate regardless of Down.
	Err error

	// Reply is the default generation result.
	Reply string

	queue []string

	// GenerateCalls counts Generate invocations, including failed ones.
	GenerateCalls int

	// LastRequest records the most recent Generate request.
	LastRequest GenerateRequest
}

// Enqueue adds replies returned by successive Generate calls before
// falling back to Reply.
func (m *MockClient) Enqueue(replies ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, replies...)
}

func (m *MockClient) Generate(_ context.Context, req GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls++
	m.LastRequest = req
	if m.Down {
		return "", ErrUnavailable
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.queue) > 0 {
		reply := m.queue[0]
		m.queue = m.queue[1:]
		return reply, nil
	}
	return m.Reply, nil
}

func (m *MockClient) ListModels(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Down {
		return nil, ErrUnavailable
	}
	return []string{"mock"}, nil
}

func (m *MockClient) CheckConnection(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Down
}
