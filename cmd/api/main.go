package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"docassist/internal/config"
	"docassist/internal/data/store"
	"docassist/internal/domain/docmodel"
	"docassist/internal/handlers"
	"docassist/internal/rag"
	"docassist/internal/rag/embedding"
	"docassist/internal/rag/embedding/googleEmbedding"
	"docassist/internal/rag/embedding/openaiEmbedding"
	"docassist/internal/rag/llm"
	"docassist/internal/rag/llm/gemini"
	"docassist/internal/rag/llm/openaiLLM"
	"docassist/internal/rag/retriever"
	"docassist/internal/rag/vectorstore/qdrantDB"
	"docassist/internal/server"
	"docassist/pkg/logger_i"
)

var listenAddr string

func main() {

	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	var embedder embedding.Embedder
	var llmProvider llm.Provider
	switch config.Provider {
	case "openai":
		embedder = openaiEmbedding.GetOpenAIEmbeddingClient(serviceContext, config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
		llmProvider = openaiLLM.GetOpenAIClient(serviceContext, config.OpenAIModelName, config.OpenAIAPIKey)
	default:
		embedder = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey)
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey)
	}

	vectorStore := qdrantDB.GetQdrantStore(serviceContext, embedder)

	if vectorStore == nil || embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services", "VectorStore", vectorStore != nil, "Embedder", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	rt, err := retriever.New(vectorStore)
	if err != nil {
		logger.Error("Failed to build retriever", "error", err)
		return
	}

	var answerCache rag.AnswerCache
	if config.CacheEnabled {
		if cache := qdrantDB.GetAnswerCache(serviceContext, embedder); cache != nil {
			answerCache = cache
		} else {
			logger.Warn("Semantic cache unavailable, continuing without it")
		}
	}

	ragService, err := rag.NewService(vectorStore, rt, llmProvider, answerCache)
	if err != nil {
		logger.Error("Failed to build rag service", "error", err)
		return
	}

	var messageStore docmodel.MessageStore
	if redisMessages := store.GetRedisMessageStore(serviceContext); redisMessages != nil {
		messageStore = redisMessages
	} else {
		logger.Error("Redis is offline, using in-memory chat history")
		messageStore = store.InitMessageStore()
	}

	handlers.InitHandlers(ragService, messageStore)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
