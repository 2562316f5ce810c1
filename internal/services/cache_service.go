package services

import (
	"context"
	"errors"
	"time"

	"goride-ledger/pkg/cache"
	"goride-ledger/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CacheService caches read projections. Every method is best-effort: a cache
// outage degrades to a miss and is only logged.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	// Set stores value tagged with the projection's version. The cache keeps
	// whichever write carries the higher version.
	Set(ctx context.Context, key string, value interface{}, version int64, expiration time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type cacheService struct {
	cache  *cache.RedisCache
	logger *logger.Logger
}

// NewCacheService returns a no-op cache when redisCache is nil.
func NewCacheService(redisCache *cache.RedisCache, log *logger.Logger) CacheService {
	return &cacheService{
		cache:  redisCache,
		logger: log,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	return false
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, version int64, expiration time.Duration) {
	if s.cache == nil {
		return
	}
	stored, err := s.cache.Set(ctx, key, value, version, expiration)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
		return
	}
	if !stored {
		s.logger.WithField("key", key).Debugf("Kept newer cache entry, dropped version %d", version)
	}
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WithError(err).WithField("keys", keys).Warn("Cache invalidation failed")
	}
}

func cacheKey(prefix string, id primitive.ObjectID) string {
	return prefix + id.Hex()
}
