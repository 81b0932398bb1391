package gamification

import (
	"context"
	"time"

	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/shopspring/decimal"
)

// Store persists one gamification record per user plus earned badges.
// GetStats, ApplyStreak and SetSharpe return ErrNotFound for unknown users.
type Store interface {
	GetStats(ctx context.Context, userID string) (*model.UserGamificationRecord, error)
	// UpsertOnTrade must apply the whole outcome atomically, creating the record if needed.
	UpsertOnTrade(ctx context.Context, userID string, outcome model.TradeOutcome, at time.Time) (*model.UserGamificationRecord, error)
	// ApplyStreak is a no-op (Applied=false) when the period was already evaluated.
	ApplyStreak(ctx context.Context, userID string, upd StreakUpdate) (model.StreakResult, error)
	// AwardBadges returns only the badges this call actually inserted.
	AwardBadges(ctx context.Context, userID string, badgeIDs []string, at time.Time) ([]model.EarnedBadge, error)
	Standings(ctx context.Context) ([]model.LeaderboardEntry, error)
	Nearby(ctx context.Context, userID string, rng int) ([]model.LeaderboardEntry, error)
	UserIDs(ctx context.Context) ([]string, error)
	SetSharpe(ctx context.Context, userID string, sharpe *float64, at time.Time) error
	SetDisplayName(ctx context.Context, userID, name string, at time.Time) (*model.UserGamificationRecord, error)
}

// StreakUpdate describes one evaluation period for ApplyStreak.
type StreakUpdate struct {
	Period string // week start, YYYY-MM-DD
	Won    bool
	// Settle is subtracted from weekly profit when the update applies.
	// Trades recorded after the weekly read stay counted for the new week.
	Settle decimal.Decimal
	At     time.Time
}

// TradeHistory is the positions collaborator feeding the Sharpe estimator.
type TradeHistory interface {
	ClosedTrades(ctx context.Context, userID string, since time.Time) ([]model.ClosedTrade, error)
}

// StandingsCache caches ranked standings per week key.
type StandingsCache interface {
	Get(ctx context.Context, week string) ([]model.LeaderboardEntry, bool, error)
	Set(ctx context.Context, week string, entries []model.LeaderboardEntry) error
	Invalidate(ctx context.Context, week string) error
}
