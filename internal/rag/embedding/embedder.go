package embedding

import "context"

// Embedder maps text to fixed-dimension normalized vectors. The index and
// every query against it must go through the same Embedder instance (or one
// with identical parameters); mixing embedders silently ruins retrieval.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
