package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/repository"
	"github.com/jwalitptl/walkin-api/pkg/circuitbreaker"
)

// DefaultKey is the list that mirrors submitted records.
const DefaultKey = "walkin:patients:backup"

type Config struct {
	URL          string
	Key          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

type backupCache struct {
	client *redis.Client
	key    string
	cb     *circuitbreaker.CircuitBreaker
	logger *zerolog.Logger
}

// NewClient parses the URL, applies pool settings and checks the connection.
func NewClient(ctx context.Context, config Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pooling
	opts.MaxRetries = config.MaxRetries
	opts.MinRetryBackoff = config.RetryBackoff
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewBackupCache mirrors records into a Redis list guarded by a circuit breaker.
func NewBackupCache(client *redis.Client, key string, logger *zerolog.Logger) repository.BackupCache {
	if key == "" {
		key = DefaultKey
	}
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "redis-backup",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
	})
	return &backupCache{client: client, key: key, cb: cb, logger: logger}
}

func (b *backupCache) Append(ctx context.Context, record *model.PatientRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal backup entry: %w", err)
	}
	err = b.cb.Execute(func() error {
		return b.client.RPush(ctx, b.key, payload).Err()
	})
	if err != nil {
		b.logger.Warn().Err(err).Str("id", record.ID).Str("key", b.key).Msg("backup append failed")
		return fmt.Errorf("failed to append backup entry: %w", err)
	}
	return nil
}

func (b *backupCache) Dump(ctx context.Context) ([][]byte, error) {
	var entries []string
	err := b.cb.Execute(func() error {
		var err error
		entries, err = b.client.LRange(ctx, b.key, 0, -1).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read backup list: %w", err)
	}
	out := make([][]byte, 0, len(entries))
	for _, e := range entries {
		out = append(out, []byte(e))
	}
	return out, nil
}
