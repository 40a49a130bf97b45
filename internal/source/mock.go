package source

import (
	"context"
	"sync"
)

// Mock is an in-memory Strategy for tests and local development. It records
// how often it was called so tests can assert that precondition failures
// short-circuit before any upstream work.
type Mock struct {
	mu    sync.Mutex
	calls int

	// Posts is returned from every fetch; Err, when set, wins.
	Posts []RawPost
	Err   error
}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

func (m *Mock) FetchRecentActivity(_ context.Context, _ string, limit int) ([]RawPost, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := m.Posts
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// Calls reports how many fetches were attempted.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
