package token

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "auth:token:"

// Store persists issued token records. Lookup returns an empty user id
// when the record is missing or expired.
type Store interface {
	Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, tokenID string) (string, error)
	Delete(ctx context.Context, tokenID string) error
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func tokenKey(tokenID string) string {
	return tokenKeyPrefix + tokenID
}

func (s *redisStore) Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, tokenKey(tokenID), userID, ttl).Err()
}

func (s *redisStore) Lookup(ctx context.Context, tokenID string) (string, error) {
	userID, err := s.rdb.Get(ctx, tokenKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return userID, err
}

func (s *redisStore) Delete(ctx context.Context, tokenID string) error {
	return s.rdb.Del(ctx, tokenKey(tokenID)).Err()
}
