package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/api"
	"github.com/MassBabyGeek/TradeMind-backend/internal/cache"
	"github.com/MassBabyGeek/TradeMind-backend/internal/config"
	"github.com/MassBabyGeek/TradeMind-backend/internal/database"
	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	"github.com/MassBabyGeek/TradeMind-backend/internal/handler"
	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	"github.com/MassBabyGeek/TradeMind-backend/internal/middleware"
	"github.com/MassBabyGeek/TradeMind-backend/internal/repository"
	"github.com/MassBabyGeek/TradeMind-backend/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store     gamification.Store
		positions gamification.TradeHistory
		checks    = map[string]handler.DependencyCheck{}
	)

	switch cfg.StorageDriver {
	case "memory":
		logger.Warning("Using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		store, positions = mem, mem
	default:
		if cfg.RunMigrations {
			if err := database.RunMigrations(cfg.PostgresURL()); err != nil {
				logger.Error("Migrations failed: %v", err)
				os.Exit(1)
			}
		}

		// Connect to PostgreSQL
		pool, err := database.ConnectPostgres(cfg)
		if err != nil {
			logger.Error("Database connection failed: %v", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := repository.NewPostgresStore(pool)
		store, positions = pg, repository.NewPositionsReader(pool)
		checks["postgres"] = pg.Ping
	}

	opts := gamification.Options{
		Location:     cfg.Location,
		StoreTimeout: cfg.StoreTimeout,
	}

	// Redis is optional: without it the leaderboard is computed on every read.
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warning("Redis unavailable, leaderboard cache disabled: %v", err)
	} else if rdb != nil {
		defer rdb.Close()
		opts.Cache = cache.NewLeaderboardCache(rdb, cfg.LeaderboardCacheTTL)
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	engine := gamification.NewEngine(store, positions, opts)
	logger.Info("Loaded %d badge definitions, week zone %s", len(engine.Badges()), engine.Location())

	limiter := middleware.NewUserRateLimiter(cfg.TradeRateLimit, cfg.TradeRateBurst)
	go limiter.StartJanitor(time.Hour, ctx.Done())

	if cfg.EnableScheduler {
		go scheduler.StartWeekly(ctx, engine, cfg.Location, time.Now)
	}

	// Initialize routes
	router := api.SetupRouter(api.Deps{
		Handler:        handler.New(engine, checks),
		Auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer),
		TradeLimiter:   limiter,
		CronSecretHash: cfg.CronSecretHash,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		// Start server
		logger.Success("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	logger.Success("Server stopped")
}
