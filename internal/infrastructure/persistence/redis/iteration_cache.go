package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/pkg/logger"
	"collab-novel-api/pkg/metrics"
)

// LatestIterationKey 最新迭代缓存键
const LatestIterationKey = "novel:iteration:latest"

const defaultLatestIterationTTL = 30 * time.Second

// LatestIterationCache 最新迭代读缓存
type LatestIterationCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewLatestIterationCache 创建最新迭代缓存
func NewLatestIterationCache(cache *Cache, ttl time.Duration) *LatestIterationCache {
	if ttl <= 0 {
		ttl = defaultLatestIterationTTL
	}
	return &LatestIterationCache{cache: cache, ttl: ttl}
}

// Latest 读取最新迭代，Redis 不可用时直接回源
func (c *LatestIterationCache) Latest(ctx context.Context, load func(ctx context.Context) (*entity.NovelIteration, error)) (*entity.NovelIteration, error) {
	var loadErr error
	bytes, hit, err := c.cache.GetOrLoad(ctx, LatestIterationKey, c.ttl, func(ctx context.Context) (any, error) {
		it, err := load(ctx)
		if err != nil {
			loadErr = err
			return nil, err
		}
		if it == nil {
			return nil, nil
		}
		return it, nil
	})
	if err != nil {
		if loadErr != nil {
			return nil, loadErr
		}
		metrics.CacheRequestsTotal.WithLabelValues(LatestIterationKey, "error").Inc()
		logger.Warn(ctx, "latest iteration cache unavailable, falling back to database", "error", err.Error())
		return load(ctx)
	}

	if hit {
		metrics.CacheRequestsTotal.WithLabelValues(LatestIterationKey, "hit").Inc()
	} else {
		metrics.CacheRequestsTotal.WithLabelValues(LatestIterationKey, "miss").Inc()
	}

	if bytes == nil {
		return nil, nil
	}

	var it entity.NovelIteration
	if err := json.Unmarshal(bytes, &it); err != nil {
		return nil, fmt.Errorf("failed to decode cached iteration: %w", err)
	}
	return &it, nil
}

// Store 写入最新迭代
func (c *LatestIterationCache) Store(ctx context.Context, it *entity.NovelIteration) error {
	return c.cache.Set(ctx, LatestIterationKey, it, c.ttl)
}

// Invalidate 删除最新迭代缓存
func (c *LatestIterationCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, LatestIterationKey)
}
