package refs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the default key used to store the address book in Redis.
const DefaultRedisKey = "clicker:refs"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379/0")
	URL string

	// Key is the Redis key holding the book (defaults to "clicker:refs")
	Key string
}

// RedisStore implements Store on a single Redis key so that several API
// instances share one address book. The key never expires.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = DefaultRedisKey
	}

	slog.Info("redis refs store connected", "key", key)

	return &RedisStore{
		client: client,
		key:    key,
	}, nil
}

// Get retrieves the book from Redis.
func (s *RedisStore) Get(ctx context.Context) (Book, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refs from redis: %w", err)
	}

	var book Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("failed to parse refs from redis: %w", err)
	}

	return book, nil
}

// Set stores the book in Redis.
func (s *RedisStore) Set(ctx context.Context, book Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to marshal refs: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set refs in redis: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
