package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccessCodeRepository holds issued access codes in issue order.
type AccessCodeRepository interface {
	List(ctx context.Context) ([]string, error)
	// Add reports false when the code was already present.
	Add(ctx context.Context, code string) (bool, error)
	// Remove reports false when the code was absent.
	Remove(ctx context.Context, code string) (bool, error)
	Contains(ctx context.Context, code string) (bool, error)
}

type redisAccessCodeRepository struct {
	client *redis.Client
	key    string
}

// NewRedisAccessCodeRepository keeps codes in a sorted set scored by issue time.
func NewRedisAccessCodeRepository(client *redis.Client, key string) AccessCodeRepository {
	return &redisAccessCodeRepository{client: client, key: key}
}

func (r *redisAccessCodeRepository) List(ctx context.Context) ([]string, error) {
	codes, err := r.client.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *redisAccessCodeRepository) Add(ctx context.Context, code string) (bool, error) {
	added, err := r.client.ZAddNX(ctx, r.key, redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: code,
	}).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (r *redisAccessCodeRepository) Remove(ctx context.Context, code string) (bool, error) {
	removed, err := r.client.ZRem(ctx, r.key, code).Result()
	if err != nil {
		return false, err
	}
	return removed == 1, nil
}

func (r *redisAccessCodeRepository) Contains(ctx context.Context, code string) (bool, error) {
	err := r.client.ZScore(ctx, r.key, code).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type memoryAccessCodeRepository struct {
	mu    sync.RWMutex
	codes []string
}

// NewMemoryAccessCodeRepository keeps codes in process.
func NewMemoryAccessCodeRepository() AccessCodeRepository {
	return &memoryAccessCodeRepository{}
}

func (r *memoryAccessCodeRepository) List(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.codes...), nil
}

func (r *memoryAccessCodeRepository) Add(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(code) >= 0 {
		return false, nil
	}
	r.codes = append(r.codes, code)
	return true, nil
}

func (r *memoryAccessCodeRepository) Remove(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(code)
	if idx < 0 {
		return false, nil
	}
	r.codes = append(r.codes[:idx], r.codes[idx+1:]...)
	return true, nil
}

func (r *memoryAccessCodeRepository) Contains(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(code) >= 0, nil
}

func (r *memoryAccessCodeRepository) indexOf(code string) int {
	for i, c := range r.codes {
		if c == code {
			return i
		}
	}
	return -1
}
