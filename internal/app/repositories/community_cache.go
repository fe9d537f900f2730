package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/pkg/logger"
)

// CommunityCache is a read-through Redis cache for community rows. A nil
// client disables caching entirely; every method becomes a no-op miss, so
// the service layer never branches on whether Redis is configured.
type CommunityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCommunityCache creates a community cache backed by the given Redis
// client. Pass nil to disable caching.
func NewCommunityCache(client *redis.Client, ttl time.Duration) *CommunityCache {
	return &CommunityCache{client: client, ttl: ttl}
}

func communityCacheKey(id int64) string {
	return fmt.Sprintf("community:%d", id)
}

// Get retrieves a cached community by ID. Returns nil on miss or when the
// cache is disabled; cache errors are logged and treated as misses.
func (c *CommunityCache) Get(ctx context.Context, id int64) *models.Community {
	if c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, communityCacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn().Err(err).Int64("community_id", id).Msg("Community cache read failed")
		}
		return nil
	}

	var community models.Community
	if err := json.Unmarshal(data, &community); err != nil {
		logger.Warn().Err(err).Int64("community_id", id).Msg("Community cache entry corrupt, dropping")
		c.Invalidate(ctx, id)
		return nil
	}

	return &community
}

// Set stores a community in the cache. Errors are logged, never returned:
// the cache is best-effort and the database remains the source of truth.
func (c *CommunityCache) Set(ctx context.Context, community *models.Community) {
	if c.client == nil || community == nil {
		return
	}

	data, err := json.Marshal(community)
	if err != nil {
		logger.Warn().Err(err).Int64("community_id", community.ID).Msg("Community cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, communityCacheKey(community.ID), data, c.ttl).Err(); err != nil {
		logger.Warn().Err(err).Int64("community_id", community.ID).Msg("Community cache write failed")
	}
}

// Invalidate drops a community from the cache. Called after every mutation
// that changes the row, counters included.
func (c *CommunityCache) Invalidate(ctx context.Context, id int64) {
	if c.client == nil {
		return
	}

	if err := c.client.Del(ctx, communityCacheKey(id)).Err(); err != nil {
		logger.Warn().Err(err).Int64("community_id", id).Msg("Community cache invalidation failed")
	}
}
