// Package memory is a brute-force cosine store for tests and local runs
// without a Qdrant instance. It honors the same dedup and ordering contract
// as the durable store.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"docassist/internal/config"
	"docassist/internal/domain/docmodel"
	"docassist/internal/rag/embedding"
	"docassist/internal/rag/vectorstore"
)

type Store struct {
	mu       sync.RWMutex
	embedder embedding.Embedder
	vectors  [][]float32
	passages []docmodel.Passage
}

func NewStore(embedder embedding.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("no embedder supplied")
	}
	return &Store{embedder: embedder}, nil
}

func (s *Store) Upsert(ctx context.Context, passages []docmodel.Passage) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.passages))
	for _, p := range s.passages {
		existing[p.Origin()] = struct{}{}
	}

	fresh, err := vectorstore.FilterNew(passages, func(origin string) (bool, error) {
		_, ok := existing[origin]
		return ok, nil
	})
	if err != nil {
		return 0, err
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	texts := make([]string, len(fresh))
	for i, p := range fresh {
		texts[i] = p.Text
	}
	vectors, err := s.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(fresh) {
		return 0, errors.New("embedding count mismatch")
	}

	s.passages = append(s.passages, fresh...)
	s.vectors = append(s.vectors, vectors...)
	return len(fresh), nil
}

func (s *Store) Query(ctx context.Context, text string, k int) ([]docmodel.RetrievedPassage, error) {
	if k <= 0 {
		k = config.DefaultTopK
	}

	vector, err := s.embedder.GetEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]docmodel.RetrievedPassage, len(s.passages))
	for i := range s.passages {
		results[i] = docmodel.RetrievedPassage{
			Passage: s.passages[i],
			Score:   dot(s.vectors[i], vector),
		}
	}

	// stable sort keeps insertion order on ties, earliest first
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.passages = nil
	return nil
}

// dot is cosine similarity for L2-normalized vectors.
func dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
