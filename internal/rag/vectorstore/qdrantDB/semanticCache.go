package qdrantDB

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"docassist/internal/config"
	"docassist/internal/rag/embedding"
)

// Cache stores finished answers keyed by question embedding. A lookup hit
// needs near-identity (cutoff 0.97); anything looser would serve answers to
// questions that merely resemble each other.
type Cache struct {
	client   *qdrant.Client
	embedder embedding.Embedder
}

func GetAnswerCache(ctx context.Context, embedder embedding.Embedder) *Cache {
	store := GetQdrantStore(ctx, embedder)
	if store == nil {
		return nil
	}
	if err := createCollection(ctx, qdrantInstance, config.CacheCollectionName); err != nil {
		logger.Error("Semantic cache collection creation failed", "error", err)
		return nil
	}
	return &Cache{client: qdrantInstance, embedder: embedder}
}

func (c *Cache) Get(ctx context.Context, question string) (string, bool, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	vector, err := c.embedder.GetEmbedding(ctx, question)
	if err != nil {
		return "", false, err
	}

	searchResult, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.CacheCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Cache Query failed", "error", err)
		return "", false, err
	}
	if len(searchResult) == 0 || searchResult[0].Score < config.CacheSimilarityCutoff {
		return "", false, nil
	}

	loggr.Info("Semantic cache hit", "score", searchResult[0].Score)
	return searchResult[0].Payload["answer"].GetStringValue(), true, nil
}

func (c *Cache) Put(ctx context.Context, question string, answer string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	vector, err := c.embedder.GetEmbedding(ctx, question)
	if err != nil {
		return err
	}

	loggr.Debug("Saving answer to cache")
	_, err = c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.CacheCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(uuid.New().String()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"question":  question,
					"answer":    answer,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
