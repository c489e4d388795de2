package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"equipment-store/internal/repositories"
)

// BaseService holds the JSON cache helpers shared by the store services.
type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewBaseService(cache repositories.CacheRepositoryInterface, logger *zap.Logger) *BaseService {
	return &BaseService{cache: cache, logger: logger}
}

// CacheGet decodes the cached value of key into dest and reports a hit.
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		s.logger.Warn("cache entry is not valid JSON", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	serialized, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, serialized, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *BaseService) CacheDel(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

const remainingCacheKey = "store:remaining"

// RemainingCounterInterface serves the number of unassigned units per type.
type RemainingCounterInterface interface {
	Remaining(ctx context.Context) (map[uint64]uint64, error)
	Invalidate(ctx context.Context)
}

type RemainingCounter struct {
	*BaseService
	equipmentRepo repositories.EquipmentRepositoryInterface
	ttl           time.Duration
	generation    atomic.Uint64
}

func NewRemainingCounter(
	cache repositories.CacheRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	ttl time.Duration,
	logger *zap.Logger,
) RemainingCounterInterface {
	return &RemainingCounter{
		BaseService:   NewBaseService(cache, logger),
		equipmentRepo: equipmentRepo,
		ttl:           ttl,
	}
}

func (c *RemainingCounter) Remaining(ctx context.Context) (map[uint64]uint64, error) {
	var counts map[uint64]uint64
	if c.CacheGet(ctx, remainingCacheKey, &counts) {
		return counts, nil
	}
	generation := c.generation.Load()
	counts, err := c.equipmentRepo.CountUnassignedByType(ctx)
	if err != nil {
		return nil, err
	}
	// An Invalidate during the count means counts may predate that mutation.
	if c.generation.Load() == generation {
		c.CacheSet(ctx, remainingCacheKey, counts, c.ttl)
	}
	return counts, nil
}

// Invalidate drops the cached counters after any equipment or allocation
// mutation.
func (c *RemainingCounter) Invalidate(ctx context.Context) {
	c.generation.Add(1)
	c.CacheDel(ctx, remainingCacheKey)
}
