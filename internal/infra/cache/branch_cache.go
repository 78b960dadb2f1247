package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	generationKey = "branches:generation"
	listKeyPrefix = "branches:list"
)

// BranchCache кеш сериализованных списков отделений в Redis
//
// Ключи содержат номер поколения. Invalidate увеличивает поколение,
// старые ключи перестают читаться и истекают по TTL.
type BranchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBranchCache создает кеш поверх клиента Redis
func NewBranchCache(client *redis.Client, ttl time.Duration) *BranchCache {
	return &BranchCache{client: client, ttl: ttl}
}

// Get возвращает данные по ключу и поколение, в котором они искались
// Поколение нужно передать в Set, чтобы не записать устаревшие данные в новое поколение
func (c *BranchCache) Get(ctx context.Context, key string) ([]byte, int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("%w: Get - read generation: %v", ErrUnavailable, err)
	}

	data, err := c.client.Get(ctx, itemKey(generation, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, ErrMiss
	}
	if err != nil {
		return nil, generation, fmt.Errorf("%w: Get - read %s: %v", ErrUnavailable, key, err)
	}

	return data, generation, nil
}

// Set сохраняет данные в указанном поколении
func (c *BranchCache) Set(ctx context.Context, key string, generation int64, data []byte) error {
	if err := c.client.Set(ctx, itemKey(generation, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set - write %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Invalidate делает недоступными все ранее сохраненные списки
func (c *BranchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate - bump generation: %v", ErrUnavailable, err)
	}
	return nil
}

func itemKey(generation int64, key string) string {
	return listKeyPrefix + ":" + strconv.FormatInt(generation, 10) + ":" + key
}

// NoopCache кеш-заглушка, когда Redis выключен
type NoopCache struct{}

// NewNoopCache создает кеш-заглушку
func NewNoopCache() NoopCache {
	return NoopCache{}
}

func (NoopCache) Get(ctx context.Context, key string) ([]byte, int64, error) {
	return nil, 0, ErrMiss
}

func (NoopCache) Set(ctx context.Context, key string, generation int64, data []byte) error {
	return nil
}

func (NoopCache) Invalidate(ctx context.Context) error {
	return nil
}
