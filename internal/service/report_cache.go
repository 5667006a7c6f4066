package service

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/review-catalog/internal/config"
)

// CacheInvalidator drops cached reports after the catalog changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RedisReportCache retires the entries written by middleware.NewReportCache.
type RedisReportCache struct {
	rdb    *redis.Client
	prefix string
	genKey string
}

// NewRedisReportCache returns nil when rdb is nil so callers can pass the
// result straight to NewReviewService.
func NewRedisReportCache(rdb *redis.Client, prefix string) CacheInvalidator {
	if rdb == nil {
		return nil
	}
	return &RedisReportCache{rdb: rdb, prefix: prefix, genKey: config.ReportGenerationKey(prefix)}
}

// Invalidate bumps the cache generation, which makes every existing entry
// unreachable, then scans for prefix:* and deletes the stale entries in
// batches.  The generation counter itself is kept.
func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.genKey).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		if iter.Val() == c.genKey {
			continue
		}
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.rdb.Del(ctx, batch...).Err()
	}
	return nil
}
