package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"ailawyer/internal/model"
)

// HistoryCache keeps the recent messages of a chat session in Redis. Each
// session has a generation counter that every append bumps. A reader that
// misses gets the generation it saw, and its later Set is dropped if an
// append happened in between, so a list read before a commit never
// overwrites the invalidation.
type HistoryCache struct {
	client        *redisv9.Client
	historyTTL    time.Duration
	generationTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL, generationTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if generationTTL < historyTTL {
		generationTTL = 24 * time.Hour
	}
	return &HistoryCache{
		client:        client,
		historyTTL:    historyTTL,
		generationTTL: generationTTL,
	}
}

// Get returns the cached messages. On a miss it returns the generation to
// hand back to Set.
func (c *HistoryCache) Get(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, int64, error) {
	pipe := c.client.Pipeline()
	gen := pipe.Get(ctx, generationKey(sessionID))
	cached := pipe.Get(ctx, historyKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redisv9.Nil) {
		return nil, false, 0, fmt.Errorf("redis get history failed: %w", err)
	}
	version, err := gen.Int64()
	if err != nil && !errors.Is(err, redisv9.Nil) {
		return nil, false, 0, fmt.Errorf("redis read history generation failed: %w", err)
	}

	raw, err := cached.Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, version, nil
	}
	if err != nil {
		return nil, false, 0, fmt.Errorf("redis get history failed: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, 0, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return messages, true, version, nil
}

// Set caches messages read at the given generation. It is a no-op when the
// session was appended to since.
func (c *HistoryCache) Set(ctx context.Context, sessionID uint, version int64, messages []model.ChatMessage) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	genKey := generationKey(sessionID)
	err = c.client.Watch(ctx, func(tx *redisv9.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redisv9.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
			pipe.Set(ctx, historyKey(sessionID), payload, c.historyTTL)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redisv9.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached list and moves the generation in one
// transaction.
func (c *HistoryCache) Invalidate(ctx context.Context, sessionID uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.Incr(ctx, generationKey(sessionID))
		pipe.Expire(ctx, generationKey(sessionID), c.generationTTL)
		pipe.Del(ctx, historyKey(sessionID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate history failed: %w", err)
	}
	return nil
}

func historyKey(sessionID uint) string {
	return fmt.Sprintf("lawyer:session:%d:messages", sessionID)
}

func generationKey(sessionID uint) string {
	return fmt.Sprintf("lawyer:session:%d:generation", sessionID)
}
