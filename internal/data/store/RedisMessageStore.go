package store

import (
	"context"
	"encoding/json"
	"errors"

	"docassist/internal/adapter/utils"
	"docassist/internal/config"
	"docassist/internal/data/redisStore"
	"docassist/internal/domain/docmodel"
	"docassist/pkg/logger_i"
)

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisMessageStore returns nil when redis is unreachable; main falls
// back to the in-memory store in that case.
func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if backing == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  backing,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

// NewTestRedisMessageStore wires a miniredis-backed store for tests.
func NewTestRedisMessageStore(backing *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  backing,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("validating chatId")
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, exchange docmodel.Exchange) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	if !s.ValidateChatId(ctx, id) {
		err := errors.New("invalid chat id")
		log.Error("Failed validation before saving", "err", err)
		return err
	}
	return s.saveChatId(ctx, id, exchange)
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, exchange docmodel.Exchange) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	err := s.store.ListPush(ctx, id, marshallJson(exchange, s.logger), config.RedisMessageStoreTTL)
	if err != nil {
		log.Error("error saving chat", "error:", err)
		return err
	}
	log.Debug("Saved chat successfully")
	return nil
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, id); err != nil && !s.store.IsNil(err) {
		log.Error("Error initializing chat", "chat Id", id, "error", err)
		return err
	}
	// Seed entry keeps the list key alive so ValidateChatId works.
	return s.saveChatId(ctx, id, docmodel.Exchange{})
}

func marshallJson(exchange docmodel.Exchange, logger *logger_i.Logger) []byte {
	data, err := json.Marshal(exchange)
	if err != nil {
		logger.Error("Error marshalling json", "error", err)
	}
	return data
}

// GetMessageHistory returns the most recent turns, newest first. The seed
// entry written by InitNewChat is filtered out.
func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Getting message history")

	res, err := s.store.ListGet5PastMessage(ctx, chatId)
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	turns := make([]string, 0, len(res))
	for _, entry := range res {
		var e docmodel.Exchange
		if err := json.Unmarshal([]byte(entry), &e); err != nil || e.Question == "" {
			continue
		}
		turns = append(turns, entry)
	}
	return utils.ReverseStringArray(turns), nil
}
