package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hotelmend/ticket-service/internal/domain"
)

// SuggestionCache stores suggestion results by normalized description.
type SuggestionCache interface {
	// Get reports false on a miss.
	Get(ctx context.Context, key string) ([]domain.SuggestedTicket, bool, error)
	Set(ctx context.Context, key string, suggestions []domain.SuggestedTicket) error
}

type redisSuggestionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSuggestionCache builds a cache whose entries expire after ttl.
func NewRedisSuggestionCache(client *redis.Client, prefix string, ttl time.Duration) SuggestionCache {
	return &redisSuggestionCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *redisSuggestionCache) Get(ctx context.Context, key string) ([]domain.SuggestedTicket, bool, error) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []domain.SuggestedTicket
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *redisSuggestionCache) Set(ctx context.Context, key string, suggestions []domain.SuggestedTicket) error {
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.redisKey(key), raw, c.ttl).Err()
}

func (c *redisSuggestionCache) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return c.prefix + hex.EncodeToString(sum[:])
}
