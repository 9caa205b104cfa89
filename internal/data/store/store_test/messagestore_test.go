package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"docassist/internal/config"
	"docassist/internal/data/redisStore"
	"docassist/internal/data/store"
	"docassist/internal/domain/docmodel"
)

func newRedisMessageStore(t *testing.T) *store.RedisMessageStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.NewTestRedisMessageStore(redisStore.NewTestStore(client))
}

func TestRedisMessageStore_Lifecycle(t *testing.T) {
	msgStore := newRedisMessageStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	chatID := "chat_abc_123"

	t.Run("Unknown Chat Is Invalid", func(t *testing.T) {
		if msgStore.ValidateChatId(ctx, "ghost-chat") {
			t.Error("expected found=false for a chat that was never initialized")
		}
	})

	t.Run("Save Without Init Fails", func(t *testing.T) {
		err := msgStore.TrySaveChat(ctx, chatID, docmodel.Exchange{Question: "q", Answer: "a"})
		if err == nil {
			t.Fatal("expected an error saving to an uninitialized chat")
		}
	})

	t.Run("Init Then Save And Read Back", func(t *testing.T) {
		if err := msgStore.InitNewChat(ctx, chatID); err != nil {
			t.Fatalf("InitNewChat failed: %v", err)
		}
		if !msgStore.ValidateChatId(ctx, chatID) {
			t.Fatal("chat invalid right after init")
		}

		exchange := docmodel.Exchange{
			Question: "How do I mock Redis?",
			Answer:   "Use miniredis.",
			Sources:  []string{"testing.txt"},
		}
		if err := msgStore.TrySaveChat(ctx, chatID, exchange); err != nil {
			t.Fatalf("TrySaveChat failed: %v", err)
		}

		history, err := msgStore.GetMessageHistory(ctx, chatID)
		if err != nil {
			t.Fatalf("GetMessageHistory failed: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("history has %d entries, want 1 (the init seed must be filtered)", len(history))
		}

		var got docmodel.Exchange
		if err := json.Unmarshal([]byte(history[0]), &got); err != nil {
			t.Fatalf("history entry is not valid json: %v", err)
		}
		if got.Question != exchange.Question || got.Answer != exchange.Answer {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, exchange)
		}
	})

	t.Run("History Is Capped And Newest First", func(t *testing.T) {
		capChat := "chat_cap"
		if err := msgStore.InitNewChat(ctx, capChat); err != nil {
			t.Fatalf("InitNewChat failed: %v", err)
		}
		for i := 0; i < 8; i++ {
			exchange := docmodel.Exchange{Question: fmt.Sprintf("question %d", i), Answer: "a"}
			if err := msgStore.TrySaveChat(ctx, capChat, exchange); err != nil {
				t.Fatalf("TrySaveChat %d failed: %v", i, err)
			}
		}

		history, err := msgStore.GetMessageHistory(ctx, capChat)
		if err != nil {
			t.Fatalf("GetMessageHistory failed: %v", err)
		}
		if len(history) != 5 {
			t.Fatalf("history has %d entries, want the 5 most recent", len(history))
		}

		var first docmodel.Exchange
		if err := json.Unmarshal([]byte(history[0]), &first); err != nil {
			t.Fatalf("history entry is not valid json: %v", err)
		}
		if first.Question != "question 7" {
			t.Errorf("newest entry got %q, want question 7", first.Question)
		}
	})
}

func TestInMemoryMessageStore(t *testing.T) {
	msgStore := store.InitMessageStore()
	ctx := context.Background()
	chatID := "local-chat"

	if msgStore.ValidateChatId(ctx, chatID) {
		t.Error("expected found=false before init")
	}
	if err := msgStore.TrySaveChat(ctx, chatID, docmodel.Exchange{Question: "q"}); err != nil {
		t.Fatalf("TrySaveChat on unknown chat should be a no-op, got %v", err)
	}
	history, err := msgStore.GetMessageHistory(ctx, chatID)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history for an unsaved chat, got %v %v", history, err)
	}

	if err := msgStore.InitNewChat(ctx, chatID); err != nil {
		t.Fatalf("InitNewChat failed: %v", err)
	}
	for i := 0; i < 7; i++ {
		exchange := docmodel.Exchange{Question: fmt.Sprintf("question %d", i), Answer: "a"}
		if err := msgStore.TrySaveChat(ctx, chatID, exchange); err != nil {
			t.Fatalf("TrySaveChat failed: %v", err)
		}
	}

	history, err = msgStore.GetMessageHistory(ctx, chatID)
	if err != nil {
		t.Fatalf("GetMessageHistory failed: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("history has %d entries, want 5", len(history))
	}
	var first docmodel.Exchange
	if err := json.Unmarshal([]byte(history[0]), &first); err != nil {
		t.Fatalf("history entry is not valid json: %v", err)
	}
	if first.Question != "question 6" {
		t.Errorf("newest entry got %q, want question 6", first.Question)
	}
}
