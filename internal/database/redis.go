package database

import (
	"context"
	"fmt"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/config"
	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when REDIS_ADDR is empty: the leaderboard then
// reads straight from Postgres.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Warning("REDIS_ADDR not set, leaderboard cache disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		ReadTimeout:  cfg.StoreTimeout,
		WriteTimeout: cfg.StoreTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	logger.Success("Connected to Redis %s", cfg.RedisAddr)
	return rdb, nil
}
