package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "trademind:leaderboard:"

// LeaderboardCache stores ranked weekly standings in Redis as JSON.
type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLeaderboardCache(rdb *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb, ttl: ttl}
}

func key(week string) string {
	return keyPrefix + week
}

func (c *LeaderboardCache) Get(ctx context.Context, week string) ([]model.LeaderboardEntry, bool, error) {
	data, err := c.rdb.Get(ctx, key(week)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A bad payload is dropped and rebuilt from the database.
		c.rdb.Del(ctx, key(week))
		return nil, false, fmt.Errorf("decode cached leaderboard: %w", err)
	}
	return entries, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, week string, entries []model.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := c.rdb.Set(ctx, key(week), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *LeaderboardCache) Invalidate(ctx context.Context, week string) error {
	if err := c.rdb.Del(ctx, key(week)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
