package rag_test

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"docassist/internal/domain/docmodel"
	"docassist/internal/rag/llm"
)

// hashEmbedder gives the in-memory vector store a deterministic embedding:
// words hash into a normalized bag-of-words vector, so identical texts score
// 1.0 and shared vocabulary scores high.
type hashEmbedder struct{}

func (hashEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
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

func (e hashEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
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

// MockStore implements vectorstore.Store
type MockStore struct {
	// Control fields to simulate different behaviors
	OnUpsert func(ctx context.Context, passages []docmodel.Passage) (int, error)
	OnQuery  func(ctx context.Context, text string, k int) ([]docmodel.RetrievedPassage, error)
	OnClear  func(ctx context.Context) error

	Queries []string
}

func (m *MockStore) Upsert(ctx context.Context, passages []docmodel.Passage) (int, error) {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, passages)
	}
	return len(passages), nil
}

func (m *MockStore) Query(ctx context.Context, text string, k int) ([]docmodel.RetrievedPassage, error) {
	m.Queries = append(m.Queries, text)
	if m.OnQuery != nil {
		return m.OnQuery(ctx, text, k)
	}
	return nil, nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	if m.OnClear != nil {
		return m.OnClear(ctx)
	}
	return nil
}

// MockLLM implements llm.Provider. Rewrite calls and answer calls share one
// provider, so the mock splits them on the prompt shape.
type MockLLM struct {
	OnRewrite  func(ctx context.Context, req llm.Request) (string, error)
	OnGenerate func(ctx context.Context, req llm.Request) (string, error)

	AnswerPrompts []string
}

func (m *MockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	if strings.HasPrefix(req.Prompt, "Rewrite the following question") {
		if m.OnRewrite != nil {
			return m.OnRewrite(ctx, req)
		}
		return "rewritten query", nil
	}

	m.AnswerPrompts = append(m.AnswerPrompts, req.Prompt)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req)
	}
	return "mocked llm response", nil
}

// MockCache implements rag.AnswerCache
type MockCache struct {
	OnGet func(ctx context.Context, question string) (string, bool, error)
	OnPut func(ctx context.Context, question string, answer string) error

	PutCalls int
}

func (m *MockCache) Get(ctx context.Context, question string) (string, bool, error) {
	if m.OnGet != nil {
		return m.OnGet(ctx, question)
	}
	return "", false, nil
}

func (m *MockCache) Put(ctx context.Context, question string, answer string) error {
	m.PutCalls++
	if m.OnPut != nil {
		return m.OnPut(ctx, question, answer)
	}
	return nil
}

func passage(id string, fileName string, text string, score float32) docmodel.RetrievedPassage {
	return docmodel.RetrievedPassage{
		Passage: docmodel.Passage{
			ID:         id,
			Text:       text,
			SourceType: docmodel.SourceTXT,
			FileName:   fileName,
		},
		Score: score,
	}
}
