// Package retriever answers "given a question, which k passages matter".
// It is a thin composition over the vector store; the store carries the
// embedder its content was built with, so retrieval can never mix embedders.
package retriever

import (
	"context"
	"errors"

	"docassist/internal/config"
	"docassist/internal/domain/docmodel"
	"docassist/internal/rag/vectorstore"
)

var ErrNoStore = errors.New("retriever: no vector store supplied")

type Retriever struct {
	store vectorstore.Store
}

// New rejects a nil store outright. Callers must wire the dependency
// explicitly; there is no lazily constructed default.
func New(store vectorstore.Store) (*Retriever, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	return &Retriever{store: store}, nil
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]docmodel.RetrievedPassage, error) {
	if k <= 0 {
		k = config.DefaultTopK
	}
	return r.store.Query(ctx, query, k)
}
