package vectorstore

import (
	"context"

	"docassist/internal/domain/docmodel"
)

// Store is the persistent vector index: (vector, text, metadata) records
// with source-level dedup on insert and cosine k-NN on query. Implementations
// own the Embedder they were built with; queries must use the same one.
type Store interface {
	// Upsert embeds and persists every passage whose origin identifier is
	// not already present, returning the number actually inserted.
	Upsert(ctx context.Context, passages []docmodel.Passage) (int, error)

	// Query embeds text and returns the k nearest records, best first.
	Query(ctx context.Context, text string, k int) ([]docmodel.RetrievedPassage, error)

	// Clear deletes the entire index. Calling it when no index exists is a
	// no-op, not an error.
	Clear(ctx context.Context) error
}

// FilterNew drops passages whose origin identifier already exists in the
// index. Dedup is at whole-source granularity: one indexed passage with a
// given origin shadows every incoming passage sharing it, even if the
// content differs. Reloading a revised same-named document therefore
// requires a Clear first. Passages inside the same batch never shadow each
// other; the check runs against pre-existing state only.
func FilterNew(passages []docmodel.Passage, hasOrigin func(origin string) (bool, error)) ([]docmodel.Passage, error) {
	known := make(map[string]bool)
	var fresh []docmodel.Passage

	for _, p := range passages {
		origin := p.Origin()
		indexed, checked := known[origin]
		if !checked {
			var err error
			indexed, err = hasOrigin(origin)
			if err != nil {
				return nil, err
			}
			known[origin] = indexed
		}
		if !indexed {
			fresh = append(fresh, p)
		}
	}
	return fresh, nil
}
