package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/pkg/llm"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "chat:history:"
	defaultTTL        = 24 * time.Hour
	maxStoredMessages = 100
)

// HistoryRepository stores each session as a capped Redis list of JSON messages.
type HistoryRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ contract.HistoryRepository = (*HistoryRepository)(nil)

func NewHistoryRepository(rdb redis.Cmdable, ttl time.Duration) *HistoryRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &HistoryRepository{rdb: rdb, ttl: ttl}
}

func key(sessionId string) string {
	return keyPrefix + sessionId
}

func (r *HistoryRepository) Load(ctx context.Context, sessionId string, limit int) ([]llm.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := r.rdb.LRange(ctx, key(sessionId), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", sessionId, err)
	}

	messages := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var msg llm.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (r *HistoryRepository) Append(ctx context.Context, sessionId string, messages ...llm.Message) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, len(messages))
	for i, msg := range messages {
		b, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		values[i] = b
	}

	k := key(sessionId)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, values...)
		pipe.LTrim(ctx, k, -maxStoredMessages, -1)
		pipe.Expire(ctx, k, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history %s: %w", sessionId, err)
	}
	return nil
}

func (r *HistoryRepository) Clear(ctx context.Context, sessionId string) error {
	return r.rdb.Del(ctx, key(sessionId)).Err()
}
