package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisScanBatchSize = 100

// RedisStore is a Store backed by Redis, for deployments where several
// instances must see rate changes at the same time.
type RedisStore struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
	logger     *zap.Logger
}

// RedisStoreOption is a functional option for configuring the store
type RedisStoreOption func(*RedisStore)

// WithRedisStoreLogger sets the logger for the store
func WithRedisStoreLogger(logger *zap.Logger) RedisStoreOption {
	return func(s *RedisStore) {
		s.logger = logger
	}
}

// NewRedisStore creates a store with its own Redis connection
func NewRedisStore(addr, password string, db int, prefix string, opts ...RedisStoreOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &RedisStore{
		client:     client,
		ownsClient: true,
		prefix:     prefix,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// NewRedisStoreWithClient creates a store over an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisStoreWithClient(client *redis.Client, prefix string, opts ...RedisStoreOption) *RedisStore {
	store := &RedisStore{
		client:     client,
		ownsClient: false,
		prefix:     prefix,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) fullKey(key string) string {
	return s.prefix + key
}

// Get returns the cached bytes for the key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get from cache: %w", err)
	}
	return data, true, nil
}

// Set stores bytes under the key with a TTL
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.fullKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// DeleteAll removes every key under the store's prefix. SCAN is used to
// avoid blocking Redis with a KEYS command.
func (s *RedisStore) DeleteAll(ctx context.Context) error {
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = s.client.Scan(ctx, cursor, s.prefix+"*", redisScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	s.logger.Info("Invalidated cache", zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close releases the Redis connection when the store owns it
func (s *RedisStore) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
