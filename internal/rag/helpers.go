package rag

import (
	"context"
	"strings"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain/docmodel"
	"docassist/internal/metrics"
	"docassist/internal/rag/llm"
)

func (r *ragService) executeCacheCheckStep(ctx context.Context, question string) (string, bool) {
	if r.cache == nil {
		return "", false
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	answer, found, err := r.cache.Get(ctx, question)
	if err != nil {
		r.logger.Warn("cache lookup failed", "error", err.Error())
		return "", false
	}
	return answer, found
}

// executeRewriteStep turns the user question into a retrieval query. The
// rewrite is advisory: on any failure the original question is used.
func (r *ragService) executeRewriteStep(ctx context.Context, question string) string {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_rewrite", time.Since(start)) }()

	rewritten, err := r.llmProvider.Generate(ctx, llm.Request{
		Prompt:      rewritePrompt(question),
		Temperature: config.ModelTemperature,
		MaxTokens:   config.MaxAnswerTokens,
	})
	if err != nil {
		r.logger.Warn("query rewrite failed, using original question", "error", err.Error())
		return question
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question
	}
	r.logger.Debug("query rewritten", "original", question, "rewritten", rewritten)
	return rewritten
}

func (r *ragService) executeRetrieveStep(ctx context.Context, question string, searchQuery string, opts AskOptions) ([]docmodel.RetrievedPassage, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	if opts.Strategy != StrategyHybrid || searchQuery == question {
		return r.retriever.Retrieve(ctx, searchQuery, opts.K)
	}

	original, err := r.retriever.Retrieve(ctx, question, opts.K)
	if err != nil {
		return nil, err
	}
	rewritten, err := r.retriever.Retrieve(ctx, searchQuery, opts.K)
	if err != nil {
		return nil, err
	}
	return mergeRanked(original, rewritten, opts.K), nil
}

func (r *ragService) executeGenerateStep(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return r.llmProvider.Generate(ctx, llm.Request{
		System:      systemInstruction,
		Prompt:      prompt,
		Temperature: config.ModelTemperature,
		MaxTokens:   config.MaxAnswerTokens,
	})
}

// mergeRanked interleaves nothing: passages from the original query keep
// their rank, rewritten-query passages fill in behind them. Duplicates are
// dropped by passage ID and the union is truncated to k.
func mergeRanked(original []docmodel.RetrievedPassage, rewritten []docmodel.RetrievedPassage, k int) []docmodel.RetrievedPassage {
	seen := make(map[string]struct{}, len(original)+len(rewritten))
	merged := make([]docmodel.RetrievedPassage, 0, k)

	for _, list := range [][]docmodel.RetrievedPassage{original, rewritten} {
		for _, p := range list {
			if len(merged) >= k {
				return merged
			}
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}
