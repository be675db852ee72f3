package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mnuddindev/foodgram/pkg/logger"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps go-redis. A nil *RedisClient is valid and behaves as an
// always-missing cache, so the store stays the source of truth.
type RedisClient struct {
	*redis.Client
}

// NewRedis initializes a Redis client with context.
func NewRedis(ctx context.Context, addr, password string) (*RedisClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "redis initialization canceled")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, utils.NewError(utils.ErrInternalServerError.Code, "Failed to connect to Redis", err.Error())
	}

	return &RedisClient{client}, nil
}

// GetJSON loads key into out. It reports false on a miss or any Redis error.
func (r *RedisClient) GetJSON(ctx context.Context, key string, out interface{}) bool {
	if r == nil || r.Client == nil {
		return false
	}
	raw, err := r.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// SetJSON stores v under key for ttl. Failures are returned for logging only.
func (r *RedisClient) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, data, ttl).Err()
}

// Forget deletes keys, ignoring a nil client.
func (r *RedisClient) Forget(ctx context.Context, keys ...string) error {
	if r == nil || r.Client == nil || len(keys) == 0 {
		return nil
	}
	return r.Del(ctx, keys...).Err()
}

// Blacklist marks a token id as revoked until ttl elapses.
func (r *RedisClient) Blacklist(ctx context.Context, tokenID string, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return utils.NewError(utils.ErrInternalServerError.Code, "Token blacklist unavailable")
	}
	if ttl <= 0 {
		return nil
	}
	return r.Set(ctx, "blacklist:access:"+tokenID, "invalid", ttl).Err()
}

// IsBlacklisted reports whether the token id was revoked.
func (r *RedisClient) IsBlacklisted(ctx context.Context, tokenID string) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Exists(ctx, "blacklist:access:"+tokenID).Val() > 0
}

// Close shuts down the Redis connection.
func (r *RedisClient) Close(log *logger.Logger) error {
	if r == nil || r.Client == nil {
		return nil
	}
	if err := r.Client.Close(); err != nil {
		log.Error(context.Background()).WithMeta(map[string]string{"error": err.Error()}).Logs("Redis close failed")
		return utils.NewError(utils.ErrInternalServerError.Code, "Failed to close Redis", err.Error())
	}
	log.Info(context.Background()).Logs("Redis connection closed successfully")
	return nil
}
