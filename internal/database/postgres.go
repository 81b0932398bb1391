package database

import (
	"context"
	"fmt"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/config"
	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres opens the connection pool and checks it with a ping.
func ConnectPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	// Server-side guard in addition to the per-call context timeout.
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StoreTimeout.Milliseconds())
	poolCfg.ConnConfig.RuntimeParams["lock_timeout"] = fmt.Sprintf("%d", cfg.StoreTimeout.Milliseconds())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Success("Connected to PostgreSQL %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return pool, nil
}
