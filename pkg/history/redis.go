package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list key used when none is configured.
const DefaultRedisKey = "pager:history"

// RedisHistory stores the navigation trail as a Redis list of JSON
// entries, so it survives process restarts and can be shared between
// instances driving the same view.
type RedisHistory struct {
	redis *redis.Client
	key   string

	// TTL, when positive, is refreshed on every push so abandoned
	// sessions eventually expire.
	ttl time.Duration
}

// NewRedisHistory creates a Redis-backed history under the given list
// key. An empty key falls back to DefaultRedisKey.
func NewRedisHistory(redisClient *redis.Client, key string) *RedisHistory {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisHistory{
		redis: redisClient,
		key:   key,
	}
}

// WithTTL sets the expiry refreshed on each push and returns the history
// for chaining.
func (h *RedisHistory) WithTTL(ttl time.Duration) *RedisHistory {
	h.ttl = ttl
	return h
}

// Push appends a new entry to the Redis list.
func (h *RedisHistory) Push(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	if err := h.redis.RPush(ctx, h.key, data).Err(); err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}

	if h.ttl > 0 {
		if err := h.redis.Expire(ctx, h.key, h.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}

	return nil
}

// Current returns the most recent entry.
func (h *RedisHistory) Current(ctx context.Context) (*Entry, error) {
	data, err := h.redis.LIndex(ctx, h.key, -1).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("redis lindex: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal history entry: %w", err)
	}

	return &entry, nil
}

// Len returns the number of recorded entries.
func (h *RedisHistory) Len(ctx context.Context) (int, error) {
	n, err := h.redis.LLen(ctx, h.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen: %w", err)
	}
	return int(n), nil
}

// Entries returns all recorded entries in push order.
func (h *RedisHistory) Entries(ctx context.Context) ([]Entry, error) {
	items, err := h.redis.LRange(ctx, h.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Clear drops the recorded trail.
func (h *RedisHistory) Clear(ctx context.Context) error {
	if err := h.redis.Del(ctx, h.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
