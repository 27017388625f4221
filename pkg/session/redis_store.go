package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
)

// RedisStore keeps per-session history in a Redis list so chatbot sessions
// survive process restarts and can be shared across portal instances.
type RedisStore struct {
	client *redis.Client
	limit  int64
	ttl    time.Duration
}

// NewRedisStore connects to Redis and returns a session store. Each session
// retains at most limit entries (0 means unbounded) and expires after ttl of
// inactivity (0 means never).
func NewRedisStore(ctx context.Context, addr string, limit int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return &RedisStore{client: client, limit: int64(limit), ttl: ttl}, nil
}

func sessionKey(sessionID string) string {
	return "chatbot:session:" + sessionID
}

func (s *RedisStore) History(ctx context.Context, sessionID string) ([]chat.HistoryEntry, error) {
	raw, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history: %w", err)
	}
	entries := make([]chat.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry chat.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, entries ...chat.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	key := sessionKey(sessionID)
	values := make([]any, 0, len(entries))
	for _, entry := range entries {
		encoded, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode history entry: %w", err)
		}
		values = append(values, encoded)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.limit > 0 {
		pipe.LTrim(ctx, key, -s.limit, -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
