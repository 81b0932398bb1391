package cache

import (
	"context"
	"testing"
	"time"

	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func newTestCache(t *testing.T) (*LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewLeaderboardCache(rdb, time.Minute), mr
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "2026-10-12"); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	sharpe := 1.25
	entries := []model.LeaderboardEntry{
		{UserID: "alice", Rank: 1, WeeklyProfit: decimal.RequireFromString("120.50"), SharpeRatio: &sharpe, Badges: []string{"first_trade"}},
		{UserID: "bob", Rank: 2, WeeklyProfit: decimal.RequireFromString("-3.10")},
	}
	if err := c.Set(ctx, "2026-10-12", entries); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "2026-10-12"); ttl != time.Minute {
		t.Fatalf("TTL=%v, expected 1m", ttl)
	}

	got, ok, err := c.Get(ctx, "2026-10-12")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].UserID != "alice" || got[1].Rank != 2 {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if !got[0].WeeklyProfit.Equal(decimal.RequireFromString("120.5")) {
		t.Fatalf("WeeklyProfit=%s, expected 120.5", got[0].WeeklyProfit)
	}
	if got[0].SharpeRatio == nil || *got[0].SharpeRatio != 1.25 {
		t.Fatalf("SharpeRatio=%v, expected 1.25", got[0].SharpeRatio)
	}
	if got[1].SharpeRatio != nil {
		t.Fatalf("expected nil SharpeRatio for bob")
	}

	if err := c.Invalidate(ctx, "2026-10-12"); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "2026-10-12"); ok {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestLeaderboardCacheDropsCorruptPayload(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := mr.Set(keyPrefix+"2026-10-12", "not-json"); err != nil {
		t.Fatalf("miniredis Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "2026-10-12"); err == nil || ok {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
	if mr.Exists(keyPrefix + "2026-10-12") {
		t.Fatalf("expected corrupt key to be deleted")
	}
}

func TestLeaderboardCacheReportsRedisFailure(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	if _, _, err := c.Get(context.Background(), "2026-10-12"); err == nil {
		t.Fatalf("expected error with redis down")
	}
}
