package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"docassist/internal/config"
	"docassist/internal/domain/docmodel"
	"docassist/internal/rag/embedding"
	"docassist/internal/rag/vectorstore"
	"docassist/pkg/logger_i"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type Store struct {
	client     *qdrant.Client
	embedder   embedding.Embedder
	collection string
}

// GetQdrantStore returns the durable vector index. The embedder is required:
// the index content is only meaningful against the embedder it was built
// with, so "no embedder supplied" is a caller error, not a fallback case.
func GetQdrantStore(ctx context.Context, embedder embedding.Embedder) vectorstore.Store {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	if embedder == nil {
		logger.Error("No embedder supplied to the vector store")
		return nil
	}
	return &Store{
		client:     qdrantInstance,
		embedder:   embedder,
		collection: config.CollectionName,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *Store) Upsert(ctx context.Context, passages []docmodel.Passage) (int, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if err := createCollection(ctx, db.client, db.collection); err != nil {
		return 0, fmt.Errorf("ensuring collection: %w", err)
	}

	fresh, err := vectorstore.FilterNew(passages, func(origin string) (bool, error) {
		return db.hasOrigin(ctx, origin)
	})
	if err != nil {
		return 0, fmt.Errorf("dedup check failed: %w", err)
	}
	if len(fresh) == 0 {
		loggr.Info("No new documents to add")
		return 0, nil
	}

	loggr.Debug("Adding new chunks to the vector store", "count", len(fresh))

	// Sub-batched to respect provider limits; the end state is the same as
	// one giant call would give, and a mid-run failure leaves only fully
	// embedded-and-persisted batches behind.
	added := 0
	for i := 0; i < len(fresh); i += config.UpsertBatchSize {
		end := min(i+config.UpsertBatchSize, len(fresh))
		batch := fresh[i:end]

		texts := make([]string, len(batch))
		for j, p := range batch {
			texts[j] = p.Text
		}

		vectors, err := db.embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return added, fmt.Errorf("embedding batch failed: %w", err)
		}

		if err := db.upsertBatch(ctx, batch, vectors); err != nil {
			return added, err
		}
		added += len(batch)
	}

	return added, nil
}

func (db *Store) upsertBatch(ctx context.Context, passages []docmodel.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("mismatch: got %d passages but %d vectors", len(passages), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(passages))
	for i, p := range passages {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":     p.Text,
				"source_type": string(p.SourceType),
				"file_name":   p.FileName,
				"source":      p.SourceURL,
				"page":        p.Page,
				"chunk_order": p.Order,
				"chunk_id":    p.ID,
				"ingested_at": p.IngestedAt.Unix(),
			}),
		}
	}

	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// hasOrigin checks both provenance keys; file_name first, matching the
// priority Origin() uses everywhere else.
func (db *Store) hasOrigin(ctx context.Context, origin string) (bool, error) {
	count, err := db.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: db.collection,
		Filter: &qdrant.Filter{
			Should: []*qdrant.Condition{
				qdrant.NewMatch("file_name", origin),
				qdrant.NewMatch("source", origin),
			},
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (db *Store) Query(ctx context.Context, text string, k int) ([]docmodel.RetrievedPassage, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if k <= 0 {
		k = config.DefaultTopK
	}

	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	vector, err := db.embedder.GetEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}

	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]docmodel.RetrievedPassage, 0, len(result))
	for _, hit := range result {
		matches = append(matches, docmodel.RetrievedPassage{
			Passage: docmodel.Passage{
				ID:         hit.Payload["chunk_id"].GetStringValue(),
				Text:       hit.Payload["content"].GetStringValue(),
				SourceType: docmodel.SourceType(hit.Payload["source_type"].GetStringValue()),
				FileName:   hit.Payload["file_name"].GetStringValue(),
				SourceURL:  hit.Payload["source"].GetStringValue(),
				Page:       int(hit.Payload["page"].GetIntegerValue()),
				Order:      int(hit.Payload["chunk_order"].GetIntegerValue()),
				IngestedAt: time.Unix(hit.Payload["ingested_at"].GetIntegerValue(), 0),
			},
			Score: hit.Score,
		})
	}

	loggr.Debug("Vector search done", "matches", len(matches))
	return matches, nil
}

func (db *Store) Clear(ctx context.Context) error {
	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return db.client.DeleteCollection(ctx, db.collection)
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
