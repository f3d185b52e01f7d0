package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"evidgate/internal/registration/models"
	"evidgate/pkg/platform/sentinel"
)

const redisRecordKeyPrefix = "evidgate:user:"

// RedisStore is a Redis-backed remote tier for deployments that share records
// across instances without a relational database. Records are stored as JSON
// with no TTL; registrations do not expire.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, address string) (*models.UserRecord, error) {
	data, err := s.client.Get(ctx, redisRecordKeyPrefix+address).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get user: %w", err)
	}
	return decodeRecord(data)
}

func (s *RedisStore) Put(ctx context.Context, record *models.UserRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisRecordKeyPrefix+record.WalletAddress, data, 0).Err(); err != nil {
		return fmt.Errorf("redis save user: %w", err)
	}
	return nil
}
