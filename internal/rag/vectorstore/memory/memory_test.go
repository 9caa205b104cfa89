package memory

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"docassist/internal/domain/docmodel"
)

// bagEmbedder hashes words into a small normalized bag-of-words vector.
// Identical texts embed identically and shared vocabulary raises similarity,
// which is all the ranking tests need.
type bagEmbedder struct{}

func (bagEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	const dim = 64
	vec := make([]float32, dim)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%dim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func (e bagEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		v, err := e.GetEmbedding(ctx, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(bagEmbedder{})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func passageFrom(id string, fileName string, text string) docmodel.Passage {
	return docmodel.Passage{ID: id, Text: text, SourceType: docmodel.SourceTXT, FileName: fileName}
}

func TestNewStore_RequiresEmbedder(t *testing.T) {
	if _, err := NewStore(nil); err == nil {
		t.Fatal("expected an error for a nil embedder")
	}
}

func TestUpsert_SecondIngestOfSameSourceAddsNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []docmodel.Passage{
		passageFrom("p1", "facts.txt", "the capital of france is paris"),
		passageFrom("p2", "facts.txt", "the seine flows through paris"),
	}

	added, err := s.Upsert(ctx, batch)
	if err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("first Upsert added %d, want 2", added)
	}

	added, err = s.Upsert(ctx, batch)
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if added != 0 {
		t.Errorf("second Upsert added %d, want 0", added)
	}
}

func TestUpsert_DedupIsPerSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, []docmodel.Passage{
		passageFrom("p1", "x.txt", "content of x"),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	added, err := s.Upsert(ctx, []docmodel.Passage{
		passageFrom("p2", "x.txt", "revised content of x"),
		passageFrom("p3", "y.txt", "content of y"),
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if added != 1 {
		t.Fatalf("added %d, want only the passage from the unseen source", added)
	}

	results, err := s.Query(ctx, "content", 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	for _, r := range results {
		if r.ID == "p2" {
			t.Error("passage from an already indexed source was stored")
		}
	}
}

func TestQuery_IdenticalTextRanksFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, []docmodel.Passage{
		passageFrom("p1", "a.txt", "cats sleep most of the day"),
		passageFrom("p2", "b.txt", "the capital of france is paris"),
		passageFrom("p3", "c.txt", "gophers dig burrows"),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	results, err := s.Query(ctx, "the capital of france is paris", 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "p2" {
		t.Errorf("top result is %s, want the identical passage", results[0].ID)
	}
	if results[0].Score < 0.999 {
		t.Errorf("identical text scored %f, want ~1.0", results[0].Score)
	}
	if results[1].Score > results[0].Score {
		t.Error("results are not sorted best first")
	}
}

func TestQuery_TiesKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// identical contents across different sources embed identically
	if _, err := s.Upsert(ctx, []docmodel.Passage{
		passageFrom("p1", "first.txt", "same words here"),
		passageFrom("p2", "second.txt", "same words here"),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	results, err := s.Query(ctx, "same words here", 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 || results[0].ID != "p1" || results[1].ID != "p2" {
		t.Fatalf("tie order got %+v, want insertion order", results)
	}
}

func TestClear_ThenQueryReturnsNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, []docmodel.Passage{
		passageFrom("p1", "a.txt", "some indexed text"),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	results, err := s.Query(ctx, "some indexed text", 4)
	if err != nil {
		t.Fatalf("Query after Clear failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results after Clear, want none", len(results))
	}

	// a cleared source can be ingested again
	added, err := s.Upsert(ctx, []docmodel.Passage{
		passageFrom("p2", "a.txt", "some indexed text"),
	})
	if err != nil {
		t.Fatalf("re-Upsert failed: %v", err)
	}
	if added != 1 {
		t.Errorf("re-ingest after Clear added %d, want 1", added)
	}
}
