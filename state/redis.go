package state

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis-backed counter store.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// Key is the hash key the counter map is stored under. Deployments
	// sharing a Redis instance across sources should include the source id
	// (e.g., "genattr:counters:<sourceId>").
	Key string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations.
	WriteTimeout time.Duration
}

// RedisStore implements Store on a Redis hash. It exists for connector
// deployments with more than one replica, where counter state cannot ride
// the host-persisted blob of a single instance.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed counter store and verifies the
// connection.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Key == "" {
		opts.Key = "genattr:counters"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, key: opts.Key}, nil
}

// Load reads the counter map from the Redis hash.
func (s *RedisStore) Load(ctx context.Context) (map[string]int, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrStorageFailed, s.key, err)
	}

	counters := make(map[string]int, len(fields))
	for name, raw := range fields {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: counter %q has non-integer value %q", ErrStorageFailed, name, raw)
		}
		counters[name] = value
	}
	return counters, nil
}

// Save replaces the Redis hash with the given counter map.
func (s *RedisStore) Save(ctx context.Context, counters map[string]int) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(counters) > 0 {
		fields := make(map[string]any, len(counters))
		for name, value := range counters {
			fields[name] = strconv.Itoa(value)
		}
		pipe.HSet(ctx, s.key, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrStorageFailed, s.key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
