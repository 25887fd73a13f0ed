// Package cache keeps published stop sequences in Redis. A run's stops never
// change once published, so entries only leave the cache by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"train-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type TopologyCache interface {
	// Get reports false on a miss.
	Get(ctx context.Context, runID uuid.UUID) ([]*entity.ScheduleStop, bool, error)
	Set(ctx context.Context, runID uuid.UUID, stops []*entity.ScheduleStop) error
}

type redisTopologyCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewTopologyCache(client *redis.Client, ttl time.Duration, log *zap.Logger) TopologyCache {
	return &redisTopologyCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "topology")),
	}
}

func topologyKey(runID uuid.UUID) string {
	return "topology:run:" + runID.String()
}

func (c *redisTopologyCache) Get(ctx context.Context, runID uuid.UUID) ([]*entity.ScheduleStop, bool, error) {
	raw, err := c.client.Get(ctx, topologyKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached stops of run %s: %w", runID.String(), err)
	}

	var stops []*entity.ScheduleStop
	if err := json.Unmarshal(raw, &stops); err != nil {
		c.log.Warn("Dropping unreadable cache entry",
			zap.Error(err),
			zap.String("train_run_id", runID.String()),
		)
		_ = c.client.Del(ctx, topologyKey(runID)).Err()
		return nil, false, nil
	}
	return stops, true, nil
}

func (c *redisTopologyCache) Set(ctx context.Context, runID uuid.UUID, stops []*entity.ScheduleStop) error {
	raw, err := json.Marshal(stops)
	if err != nil {
		return fmt.Errorf("encode stops of run %s: %w", runID.String(), err)
	}
	if err := c.client.Set(ctx, topologyKey(runID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache stops of run %s: %w", runID.String(), err)
	}
	return nil
}
