package main

import (
	"context"
	"flag"
	"strings"

	"github.com/joho/godotenv"

	"docassist/internal/config"
	"docassist/internal/domain/docmodel"
	"docassist/internal/rag"
	"docassist/internal/rag/embedding"
	"docassist/internal/rag/embedding/googleEmbedding"
	"docassist/internal/rag/embedding/openaiEmbedding"
	"docassist/internal/rag/eval"
	"docassist/internal/rag/llm"
	"docassist/internal/rag/llm/gemini"
	"docassist/internal/rag/llm/openaiLLM"
	"docassist/internal/rag/loader"
	"docassist/internal/rag/retriever"
	"docassist/internal/rag/vectorstore/qdrantDB"
	"docassist/pkg/logger_i"
)

var (
	testSetPath  string
	outDir       string
	sourceList   string
	strategyName string
	rewrite      bool
	k            int
	chunkSize    int
	chunkOverlap int
)

// Rebuilds the index from the given sources, answers every test set
// question, has the judge model score each exchange and writes the
// aggregate to a parameter-stamped results file.
func main() {

	_ = godotenv.Load()

	logger_i.Init()
	logger := logger_i.NewLogger("evaluate")

	flag.StringVar(&testSetPath, "test-set", "evaluation/test_set.json", "path to the test set json")
	flag.StringVar(&outDir, "out-dir", "evaluation", "directory for the results file")
	flag.StringVar(&sourceList, "sources", "", "comma separated files or urls to index before evaluating")
	flag.StringVar(&strategyName, "strategy", string(rag.StrategyStrictCite), "prompt strategy: strict-cite, step-by-step or hybrid")
	flag.BoolVar(&rewrite, "rewrite", false, "rewrite questions before retrieval")
	flag.IntVar(&k, "k", config.DefaultTopK, "passages retrieved per question")
	flag.IntVar(&chunkSize, "chunk-size", config.DefaultChunkSize, "chunk size in characters")
	flag.IntVar(&chunkOverlap, "chunk-overlap", config.DefaultChunkOverlap, "chunk overlap in characters")
	flag.Parse()

	if sourceList == "" {
		logger.Error("no sources given, pass -sources file1.pdf,file2.txt")
		return
	}

	testSet, err := eval.LoadTestSet(testSetPath)
	if err != nil {
		logger.Error("Failed to load test set", "error", err)
		return
	}

	ctx, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	var embedder embedding.Embedder
	var llmProvider llm.Provider
	var judgeProvider llm.Provider
	switch config.Provider {
	case "openai":
		embedder = openaiEmbedding.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
		llmProvider = openaiLLM.GetOpenAIClient(ctx, config.OpenAIModelName, config.OpenAIAPIKey)
		judgeProvider = openaiLLM.GetOpenAIClient(ctx, config.OpenAIJudgeModelName, config.OpenAIAPIKey)
	default:
		embedder = googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey)
		llmProvider = gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GoogleAPIKey)
		judgeProvider = gemini.GetGeminiClient(ctx, config.GeminiJudgeModelName, config.GoogleAPIKey)
	}

	vectorStore := qdrantDB.GetQdrantStore(ctx, embedder)
	if vectorStore == nil || llmProvider == nil || judgeProvider == nil {
		logger.Error("One or more external services failed to initialize")
		return
	}

	rt, err := retriever.New(vectorStore)
	if err != nil {
		logger.Error("Failed to build retriever", "error", err)
		return
	}

	ragService, err := rag.NewService(vectorStore, rt, llmProvider, nil)
	if err != nil {
		logger.Error("Failed to build rag service", "error", err)
		return
	}

	sources := make([]docmodel.Source, 0)
	for _, location := range strings.Split(sourceList, ",") {
		location = strings.TrimSpace(location)
		if location == "" {
			continue
		}
		source, err := loader.InferSource(location)
		if err != nil {
			logger.Error("Unrecognized source", "location", location, "error", err)
			return
		}
		sources = append(sources, source)
	}

	// A fresh index per run keeps sweeps over chunking parameters honest.
	if err := ragService.ClearIndex(ctx); err != nil {
		logger.Error("Failed to clear index", "error", err)
		return
	}
	added, err := ragService.Ingest(ctx, sources, chunkSize, chunkOverlap)
	if err != nil {
		logger.Error("Ingest failed", "error", err)
		return
	}
	logger.Info("Index rebuilt", "passages", added, "k", k, "chunkSize", chunkSize, "chunkOverlap", chunkOverlap)

	evaluator, err := eval.NewEvaluator(ragService, rt, judgeProvider, rag.AskOptions{
		K:        k,
		Strategy: rag.PromptStrategy(strategyName),
		Rewrite:  rewrite,
	})
	if err != nil {
		logger.Error("Failed to build evaluator", "error", err)
		return
	}

	allScores, err := evaluator.Run(ctx, testSet)
	if err != nil {
		logger.Error("Evaluation run failed", "error", err)
		return
	}

	aggregate, answered, unanswered := eval.Aggregate(allScores)
	logger.Info("Evaluation complete",
		"answered", answered,
		"unanswered", unanswered,
		"faithfulness", aggregate.Faithfulness,
		"answer_relevancy", aggregate.AnswerRelevancy,
		"context_recall", aggregate.ContextRecall,
		"completeness", aggregate.Completeness,
	)

	path, err := eval.SaveResult(outDir, eval.Result{
		Config: eval.Config{K: k, ChunkSize: chunkSize, ChunkOverlap: chunkOverlap},
		Scores: aggregate,
	})
	if err != nil {
		logger.Error("Failed to save results", "error", err)
		return
	}
	logger.Info("Results saved", "path", path)
}
