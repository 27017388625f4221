package knowledge

import (
	"context"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/portal"
)

// PortalSearcher exposes a Searcher through the portal's collaborator
// boundary so the knowledge_search tool can bind against it.
type PortalSearcher struct {
	Searcher *Searcher
}

func (p *PortalSearcher) Search(ctx context.Context, query string, limit int) ([]portal.SearchHit, error) {
	snippets, err := p.Searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]portal.SearchHit, 0, len(snippets))
	for _, s := range snippets {
		hits = append(hits, portal.SearchHit{Source: s.Source, Content: s.Content, Score: s.Score})
	}
	return hits, nil
}

var _ portal.KnowledgeSearcher = (*PortalSearcher)(nil)
