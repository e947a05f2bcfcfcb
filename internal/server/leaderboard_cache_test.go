package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLeaderboardCache(client, 30*time.Second), mr
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if _, hit := cache.Get(ctx); hit {
		t.Fatal("empty cache must miss")
	}

	entries := []LeaderboardEntry{
		{Rank: 1, Name: "Fast", TotalTime: "01:30"},
		{Rank: 2, Name: "Slow", TotalTime: "03:00"},
	}
	if err := cache.Set(ctx, entries); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, hit := cache.Get(ctx)
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if len(got) != 2 || got[0].Name != "Fast" || got[1].TotalTime != "03:00" {
		t.Errorf("unexpected entries: %+v", got)
	}

	// Entries disappear once the TTL elapses.
	mr.FastForward(time.Minute)
	if _, hit := cache.Get(ctx); hit {
		t.Error("expected a miss after TTL expiry")
	}
}

func TestLeaderboardCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, []LeaderboardEntry{{Rank: 1, Name: "Fast", TotalTime: "01:30"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	cache.Invalidate(ctx)
	if _, hit := cache.Get(ctx); hit {
		t.Error("expected a miss after invalidation")
	}
}

func TestLeaderboardCacheNilIsSafe(t *testing.T) {
	var cache *LeaderboardCache
	ctx := context.Background()

	if _, hit := cache.Get(ctx); hit {
		t.Error("nil cache must miss")
	}
	if err := cache.Set(ctx, nil); err != nil {
		t.Errorf("nil cache set: %v", err)
	}
	cache.Invalidate(ctx)
	if err := cache.Ping(ctx); err != nil {
		t.Errorf("nil cache ping: %v", err)
	}
}
