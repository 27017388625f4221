package knowledge

import (
	"context"
	"math"
)

// Snippet is one indexed piece of portal knowledge (handbook sections, LMS
// content excerpts, FAQ entries) with its similarity score after a search.
type Snippet struct {
	ID        int64
	Source    string
	Content   string
	Embedding []float32
	Score     float64
}

// VectorStore persists snippets with their embeddings and answers top-k
// similarity queries.
type VectorStore interface {
	StoreSnippet(ctx context.Context, source, content string, embedding []float32) error
	SearchSnippets(ctx context.Context, queryEmbedding []float32, limit int) ([]Snippet, error)
	Close() error
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
