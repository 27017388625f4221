package session

import (
	"context"
	"sync"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
)

// Store persists per-session chat history. The orchestration loop never
// touches it; callers load history before asking and append the exchange
// afterwards.
type Store interface {
	History(ctx context.Context, sessionID string) ([]chat.HistoryEntry, error)
	Append(ctx context.Context, sessionID string, entries ...chat.HistoryEntry) error
	Clear(ctx context.Context, sessionID string) error
}

// InMemoryStore keeps history per session in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]chat.HistoryEntry
	limit    int
}

// NewInMemoryStore creates a store retaining at most limit entries per
// session (0 means unbounded).
func NewInMemoryStore(limit int) *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]chat.HistoryEntry), limit: limit}
}

func (s *InMemoryStore) History(_ context.Context, sessionID string) ([]chat.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.sessions[sessionID]
	out := make([]chat.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, entries ...chat.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	combined := append(s.sessions[sessionID], entries...)
	if s.limit > 0 && len(combined) > s.limit {
		combined = combined[len(combined)-s.limit:]
	}
	s.sessions[sessionID] = combined
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

var _ Store = (*InMemoryStore)(nil)
