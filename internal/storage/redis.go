package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/hunt-engine/pkg/state"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

// RedisStorage implements the Storage interface using Redis for session
// progress and the filesystem for hunt definitions. Progress keys carry
// no TTL: an abandoned hunt must survive until it is deleted.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	huntDir
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		huntDir: newHuntDir(dataDir, logger),
	}
}

// Client exposes the underlying connection for components that share it,
// such as the pub/sub event broker.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Progress operations (Redis-backed)

func (r *RedisStorage) SaveProgress(ctx context.Context, id uuid.UUID, p *state.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Error("Failed to marshal progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	// Use progress: prefix for progress keys. No expiration: sessions
	// are resumable indefinitely.
	key := "progress:" + id.String()
	cmd := r.client.Set(ctx, key, string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadProgress(ctx context.Context, id uuid.UUID) (*state.Progress, error) {
	key := "progress:" + id.String()
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load progress", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		return nil, nil
	}

	var p state.Progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		// Malformed records are treated as absent so a corrupt write
		// cannot brick a session id.
		r.logger.Warn("Discarding malformed progress record", "uuid", id, "error", err)
		return nil, nil
	}

	return &p, nil
}

func (r *RedisStorage) DeleteProgress(ctx context.Context, id uuid.UUID) error {
	key := "progress:" + id.String()
	cmd := r.client.Del(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}
