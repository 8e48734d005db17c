package draftstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// RedisStore implements Store on top of Redis string keys with expiry.
// Redis drops expired drafts itself, so RedisStore is not a Sweeper.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configures a RedisStore
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries int
	Prefix     string
	TTL        time.Duration
}

func (o RedisOptions) clientOptions() *redis.Options {
	return &redis.Options{
		Addr:       o.Addr,
		Password:   o.Password,
		DB:         o.DB,
		MaxRetries: o.MaxRetries,
	}
}

// NewRedisStore connects to Redis and verifies the connection with PING
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(opts.clientOptions())
	if _, err := client.Ping().Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStoreWithClient(client, opts.Prefix, opts.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "draft"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) redisKey(scope, key string) string {
	return s.prefix + ":" + scope + ":" + key
}

func (s *RedisStore) Save(ctx context.Context, scope, key string, value []byte) error {
	if err := s.client.Set(s.redisKey(scope, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, scope, key string) ([]byte, error) {
	v, err := s.client.Get(s.redisKey(scope, key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return v, nil
}

func (s *RedisStore) Clear(ctx context.Context, scope, key string) error {
	if err := s.client.Del(s.redisKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
