package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/redis"
)

// CacheService provides cache-aside listings and webhook dedup on Redis.
// Redis errors never fail a request; they fall through to the database.
type CacheService struct {
	redis    *redis.Client
	listTTL  time.Duration
	dedupTTL time.Duration
	logger   *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, listTTL, dedupTTL time.Duration, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:    redisClient,
		listTTL:  listTTL,
		dedupTTL: dedupTTL,
		logger:   logger,
	}
}

// Range returns the cached listing for a date range, loading it on a miss
func (c *CacheService) Range(ctx context.Context, start, end string, load func(context.Context) ([]domain.Activity, error)) ([]domain.Activity, error) {
	return c.getOrLoad(ctx, c.redis.KeyBuilder.KeyActivitiesRange(start, end), load)
}

// All returns the cached full listing, loading it on a miss
func (c *CacheService) All(ctx context.Context, load func(context.Context) ([]domain.Activity, error)) ([]domain.Activity, error) {
	return c.getOrLoad(ctx, c.redis.KeyBuilder.KeyActivitiesAll(), load)
}

func (c *CacheService) getOrLoad(ctx context.Context, key string, load func(context.Context) ([]domain.Activity, error)) ([]domain.Activity, error) {
	cached, err := c.redis.Get(ctx, key)
	if err == nil && cached != "" {
		var activities []domain.Activity
		if jsonErr := json.Unmarshal([]byte(cached), &activities); jsonErr == nil {
			c.logger.Debug("Activity cache hit", zap.String("key", key))
			if activities == nil {
				activities = []domain.Activity{}
			}
			return activities, nil
		} else {
			c.logger.Warn("Activity cache corrupted, falling back to database",
				zap.String("key", key),
				zap.Error(jsonErr))
		}
	} else if err != nil && err != redis.Nil {
		c.logger.Warn("Activity cache error, falling back to database",
			zap.String("key", key),
			zap.Error(err))
	}

	activities, err := load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(activities)
	if err != nil {
		c.logger.Error("Failed to marshal activities for caching", zap.Error(err))
		return activities, nil
	}
	if err := c.redis.Set(ctx, key, string(data), c.listTTL); err != nil {
		c.logger.Warn("Failed to cache activities", zap.String("key", key), zap.Error(err))
	}
	return activities, nil
}

// Invalidate drops every cached listing after a write
func (c *CacheService) Invalidate(ctx context.Context) {
	removed, err := c.redis.InvalidatePattern(ctx, c.redis.KeyBuilder.KeyActivitiesPattern())
	if err != nil {
		c.logger.Error("Failed to invalidate activity cache", zap.Error(err))
		return
	}
	c.logger.Debug("Activity cache invalidated", zap.Int("keys", removed))
}

// FirstDelivery records eventID and reports whether it was new. When Redis
// is unavailable every event is treated as new.
func (c *CacheService) FirstDelivery(ctx context.Context, eventID string) bool {
	if eventID == "" {
		return true
	}
	ok, err := c.redis.SetNX(ctx, c.redis.KeyBuilder.KeyWebhookEvent(eventID), "1", c.dedupTTL)
	if err != nil {
		c.logger.Warn("Webhook dedup unavailable", zap.Error(err))
		return true
	}
	return ok
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}
