package rag

import (
	"context"
	"errors"
	"fmt"

	"docassist/internal/config"
	"docassist/internal/domain/docmodel"
	"docassist/internal/metrics"
	"docassist/internal/rag/llm"
	"docassist/internal/rag/loader"
	"docassist/internal/rag/retriever"
	"docassist/internal/rag/vectorstore"
	"docassist/pkg/logger_i"
)

// Service is the question answering pipeline: ingest documents into the
// vector index, answer questions grounded in retrieved passages, and reset
// the index.
type Service interface {
	Ask(ctx context.Context, question string, opts AskOptions, history []string) (docmodel.Answer, error)
	Ingest(ctx context.Context, sources []docmodel.Source, chunkSize int, chunkOverlap int) (int, error)
	ClearIndex(ctx context.Context) error
}

// AskOptions tunes a single Ask call. Zero values fall back to
// config defaults.
type AskOptions struct {
	K        int
	Strategy PromptStrategy
	Rewrite  bool
}

// AnswerCache stores answers keyed by question similarity. A nil cache
// disables caching.
type AnswerCache interface {
	Get(ctx context.Context, question string) (string, bool, error)
	Put(ctx context.Context, question string, answer string) error
}

type ragService struct {
	store       vectorstore.Store
	retriever   *retriever.Retriever
	llmProvider llm.Provider
	cache       AnswerCache
	logger      *logger_i.Logger
}

var (
	errNoProvider = errors.New("no llm provider configured")
	errNoQuestion = errors.New("question must not be empty")
)

func NewService(store vectorstore.Store, rt *retriever.Retriever, provider llm.Provider, cache AnswerCache) (Service, error) {
	if store == nil || rt == nil {
		return nil, retriever.ErrNoStore
	}
	if provider == nil {
		return nil, errNoProvider
	}
	return &ragService{
		store:       store,
		retriever:   rt,
		llmProvider: provider,
		cache:       cache,
		logger:      logger_i.NewLogger("ragService"),
	}, nil
}

func (r *ragService) Ask(ctx context.Context, question string, opts AskOptions, history []string) (docmodel.Answer, error) {
	if question == "" {
		return docmodel.Answer{}, errNoQuestion
	}

	ctx, cancel := context.WithTimeout(ctx, config.AskRequestTimeout)
	defer cancel()

	if opts.K <= 0 {
		opts.K = config.DefaultTopK
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyStrictCite
	}

	if cached, ok := r.executeCacheCheckStep(ctx, question); ok {
		r.logger.Info("answer served from semantic cache")
		return docmodel.Answer{Question: question, Text: cached}, nil
	}

	searchQuery := question
	if opts.Rewrite || opts.Strategy == StrategyHybrid {
		searchQuery = r.executeRewriteStep(ctx, question)
	}

	passages, err := r.executeRetrieveStep(ctx, question, searchQuery, opts)
	if err != nil {
		return docmodel.Answer{}, fmt.Errorf("retrieval failed: %w", err)
	}

	prompt := buildPrompt(opts.Strategy, formatContext(passages), question, history)
	answerText, err := r.executeGenerateStep(ctx, prompt)
	if err != nil {
		return docmodel.Answer{}, fmt.Errorf("generation failed: %w", err)
	}

	answer := docmodel.Answer{
		Question: question,
		Text:     answerText,
		Sources:  distinctOrigins(passages),
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, question, answerText); err != nil {
			r.logger.Warn("failed to cache answer", "error", err.Error())
		}
	}

	return answer, nil
}

func (r *ragService) Ingest(ctx context.Context, sources []docmodel.Source, chunkSize int, chunkOverlap int) (int, error) {
	if len(sources) == 0 {
		return 0, errors.New("no sources to ingest")
	}
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}
	// An omitted chunk_overlap decodes to 0, so zero means the default here,
	// same as chunk size.
	if chunkOverlap <= 0 || chunkOverlap >= chunkSize {
		chunkOverlap = config.DefaultChunkOverlap
	}

	documents, err := loader.Load(ctx, sources)
	if err != nil {
		return 0, fmt.Errorf("loading sources failed: %w", err)
	}

	passages := loader.Chunk(documents, chunkSize, chunkOverlap)
	if len(passages) == 0 {
		r.logger.Warn("sources produced no passages")
		return 0, nil
	}

	added, err := r.store.Upsert(ctx, passages)
	if err != nil {
		return added, fmt.Errorf("indexing failed: %w", err)
	}
	metrics.AddPassagesIndexed(added)
	metrics.AddPassagesSkipped(len(passages) - added)

	r.logger.Info("ingest complete", "chunks", len(passages), "added", added)
	return added, nil
}

func (r *ragService) ClearIndex(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing index failed: %w", err)
	}
	r.logger.Info("index cleared")
	return nil
}
