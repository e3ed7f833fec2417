package memory

import (
	"context"
	"sync"
)

// InMemoryStore is a process-local Store. History is lost on restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	maxTurns int
}

// NewInMemoryStore creates an empty store capped at maxTurns per user
func NewInMemoryStore(maxTurns int) *InMemoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &InMemoryStore{
		sessions: make(map[string][]Turn),
		maxTurns: maxTurns,
	}
}

func (s *InMemoryStore) Get(_ context.Context, userID string) ([]Turn, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[userID]
	out := make([]Turn, len(history))
	copy(out, history)
	return out, nil
}

func (s *InMemoryStore) Append(_ context.Context, userID string, turns ...Turn) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = truncate(append(s.sessions[userID], turns...), s.maxTurns)
	return nil
}

var _ Store = (*InMemoryStore)(nil)
