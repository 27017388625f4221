package knowledge

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore implements VectorStore for tests and lightweight deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	snippets map[int64]Snippet
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snippets: make(map[int64]Snippet)}
}

func (s *InMemoryStore) StoreSnippet(_ context.Context, source, content string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snippets == nil {
		s.snippets = make(map[int64]Snippet)
	}
	s.nextID++
	s.snippets[s.nextID] = Snippet{
		ID:        s.nextID,
		Source:    source,
		Content:   content,
		Embedding: append([]float32(nil), embedding...),
	}
	return nil
}

func (s *InMemoryStore) SearchSnippets(_ context.Context, queryEmbedding []float32, limit int) ([]Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	scored := make([]Snippet, 0, len(s.snippets))
	for _, snippet := range s.snippets {
		snippet.Score = cosineSimilarity(queryEmbedding, snippet.Embedding)
		scored = append(scored, snippet)
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score == scored[j].Score {
			return scored[i].ID < scored[j].ID
		}
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *InMemoryStore) Close() error { return nil }
