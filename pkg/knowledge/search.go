package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/models"
)

// Searcher is the semantic search collaborator: it embeds a query and ranks
// indexed snippets against it. The orchestration loop only ever sees it
// through the knowledge_search tool handler.
type Searcher struct {
	embedder models.Embedder
	store    VectorStore
}

func NewSearcher(embedder models.Embedder, store VectorStore) *Searcher {
	return &Searcher{embedder: embedder, store: store}
}

// Index embeds and stores one snippet.
func (s *Searcher) Index(ctx context.Context, source, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("snippet content is empty")
	}
	vectors, err := s.embedder.Embed(ctx, []string{content})
	if err != nil {
		return fmt.Errorf("embed snippet: %w", err)
	}
	return s.store.StoreSnippet(ctx, source, content, vectors[0])
}

// Search returns the top-ranked snippets for a free-text query.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]Snippet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}
	if limit <= 0 {
		limit = 5
	}
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.store.SearchSnippets(ctx, vectors[0], limit)
}
