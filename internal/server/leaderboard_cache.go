package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "geoquest:leaderboard"

// LeaderboardCache is a short-TTL Redis cache in front of the completed
// teams query. A nil *LeaderboardCache is valid and always misses, so
// callers never branch on whether Redis is configured.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

func (c *LeaderboardCache) Get(ctx context.Context) ([]LeaderboardEntry, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *LeaderboardCache) Set(ctx context.Context, entries []LeaderboardEntry) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardKey, data, c.ttl).Err()
}

// Invalidate drops the cached board after a team finishes.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	// Best-effort: a stale entry expires via TTL anyway.
	c.client.Del(ctx, leaderboardKey)
}

// Ping exposes the underlying connection check for /healthz.
func (c *LeaderboardCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
