// Package bulk persists bulk-operation records in redis so their status can
// be polled while the background run is in flight.
package bulk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vbjayanti/cumulus/internal/config"
	"github.com/vbjayanti/cumulus/internal/domain/granules"
	"github.com/vbjayanti/cumulus/internal/usecase"
)

const keyPrefix = "bulk_operation:"

// Records expire after a month; bulk status is operational, not archival.
const recordTTL = 30 * 24 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.Config) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Save(ctx context.Context, op usecase.BulkOperation) error {
	body, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal bulk operation: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+op.ID, body, recordTTL).Err(); err != nil {
		return fmt.Errorf("save bulk operation %s: %w", op.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (usecase.BulkOperation, error) {
	body, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return usecase.BulkOperation{}, granules.ErrNotFound
	}
	if err != nil {
		return usecase.BulkOperation{}, fmt.Errorf("get bulk operation %s: %w", id, err)
	}
	var op usecase.BulkOperation
	if err := json.Unmarshal(body, &op); err != nil {
		return usecase.BulkOperation{}, fmt.Errorf("decode bulk operation %s: %w", id, err)
	}
	return op, nil
}
