package knowledge

import (
	"context"
	"testing"
)

func TestInMemoryStoreRanksBySimilarity(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("store snippet failed: %v", err)
		}
	}
	must(store.StoreSnippet(ctx, "handbook", "enrollment opens two weeks before the term", []float32{1, 0, 0}))
	must(store.StoreSnippet(ctx, "handbook", "tuition may be paid in installments", []float32{0, 1, 0}))
	must(store.StoreSnippet(ctx, "faq", "grades are released after finals week", []float32{0.9, 0.1, 0}))

	results, err := store.SearchSnippets(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Content != "enrollment opens two weeks before the term" {
		t.Fatalf("wrong top result: %q", results[0].Content)
	}
	if results[1].Content != "grades are released after finals week" {
		t.Fatalf("wrong second result: %q", results[1].Content)
	}
	if results[0].Score < results[1].Score {
		t.Fatalf("scores out of order: %f < %f", results[0].Score, results[1].Score)
	}
}

func TestInMemoryStoreLimit(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.StoreSnippet(ctx, "s", "content", []float32{1, 0}); err != nil {
			t.Fatalf("store snippet failed: %v", err)
		}
	}

	results, err := store.SearchSnippets(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("limit not applied: got %d", len(results))
	}

	results, err = store.SearchSnippets(ctx, []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("zero limit should return nothing, got %d", len(results))
	}
}

func TestInMemoryStoreCopiesEmbedding(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	vec := []float32{1, 0}
	if err := store.StoreSnippet(ctx, "s", "content", vec); err != nil {
		t.Fatalf("store snippet failed: %v", err)
	}
	vec[0] = 0
	vec[1] = 1

	results, err := store.SearchSnippets(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if results[0].Score < 0.99 {
		t.Fatalf("stored embedding aliased the caller's slice, score %f", results[0].Score)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		got := cosineSimilarity(tc.a, tc.b)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: got %f, want %f", tc.name, got, tc.want)
		}
	}
}
