package store

import (
	"context"
	"encoding/json"
	"sync"

	"docassist/internal/domain/docmodel"
	"docassist/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMemoryMessageStore")

type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]docmodel.Exchange
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]docmodel.Exchange),
	}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryMessageStore) saveChatId(id string, exchange docmodel.Exchange) {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = append(store.chatMap[id], exchange)
	inMemLogger.Debug("Saved convo to chat message store", "chat Id", id)
}

func (store *InMemoryMessageStore) TrySaveChat(ctx context.Context, id string, exchange docmodel.Exchange) error {
	if !store.ValidateChatId(ctx, id) {
		return nil
	}
	store.saveChatId(id, exchange)
	return nil
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = make([]docmodel.Exchange, 0)
	return nil
}

// GetMessageHistory returns up to the five most recent turns, newest first.
func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]string, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	turns := store.chatMap[chatId]
	start := 0
	if len(turns) > 5 {
		start = len(turns) - 5
	}

	history := make([]string, 0, len(turns)-start)
	for i := len(turns) - 1; i >= start; i-- {
		data, err := json.Marshal(turns[i])
		if err != nil {
			continue
		}
		history = append(history, string(data))
	}
	return history, nil
}
