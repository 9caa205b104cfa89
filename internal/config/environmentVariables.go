package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking defaults, overridable per ingest request
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50

	//retrieval
	DefaultTopK = 4

	//dedup is at whole-source granularity: a passage whose origin identifier
	//already exists in the index is skipped, even if its content differs
	CollectionName      = "rag_collection"
	CacheCollectionName = "semantic-cache"

	CacheSimilarityCutoff = 0.97

	EmbeddingOutputDimensionality int32 = 1536
	UpsertBatchSize                     = 100

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//a single ask runs rewrite + retrieve + generate sequentially
	AskRequestTimeout = 90 * time.Second

	ServerListenAddr = ":3000"

	//vectorDB
	QdrantHost     = ""
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//models
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GeminiJudgeModelName = "gemini-2.5-flash"
	GoogleEmbeddingModel = "gemini-embedding-001"

	OpenAIModelName      = "gpt-4o-mini"
	OpenAIJudgeModelName = "gpt-4o"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	//answers must be reproducible for evaluation runs
	ModelTemperature float32 = 0
	MaxAnswerTokens  int32   = 1024

	//url loader
	URLFetchTimeout     = 30 * time.Second
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword     = ""
	RedisMessageStore = 1

	RedisMessageStoreTTL = 24 * time.Hour
)

// Env-driven settings, resolved once at startup.
var (
	GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	// Provider selects the embedding + generation backend: "gemini" or "openai".
	Provider = envOr("PROVIDER", "gemini")

	AuthToken = os.Getenv("AUTH_TOKEN")
	//dev convenience: an empty token disables auth entirely
	NoAuthBypass = AuthToken == ""

	//the semantic answer cache short-circuits retrieval, so it stays off
	//unless explicitly enabled (evaluation runs need cold answers)
	CacheEnabled = os.Getenv("CACHE_ENABLED") == "true"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
