package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "bloodbank:revoked:"

// RevocationList records logged-out token ids until they would have expired
// anyway.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewRedisClient connects to redis. An empty URL returns a nil client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type redisRevocationList struct {
	client *redis.Client
}

// NewRevocationList returns a redis-backed list, or a no-op list when client
// is nil so logout still succeeds without redis.
func NewRevocationList(client *redis.Client) RevocationList {
	if client == nil {
		return noopRevocationList{}
	}
	return &redisRevocationList{client: client}
}

func (l *redisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

func (l *redisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type noopRevocationList struct{}

func (noopRevocationList) Revoke(context.Context, string, time.Duration) error { return nil }
func (noopRevocationList) IsRevoked(context.Context, string) (bool, error)    { return false, nil }
