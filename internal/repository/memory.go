package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
)

// MemoryStore keeps gamification state in process memory. It backs
// STORAGE_DRIVER=memory for local runs and the handler tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*model.UserGamificationRecord
	trades  map[string][]model.ClosedTrade
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.UserGamificationRecord),
		trades:  make(map[string][]model.ClosedTrade),
	}
}

func clone(rec *model.UserGamificationRecord) *model.UserGamificationRecord {
	c := *rec
	c.Badges = append([]model.EarnedBadge{}, rec.Badges...)
	if rec.DisplayName != nil {
		name := *rec.DisplayName
		c.DisplayName = &name
	}
	if rec.SharpeRatio != nil {
		s := *rec.SharpeRatio
		c.SharpeRatio = &s
	}
	return &c
}

func (m *MemoryStore) GetStats(ctx context.Context, userID string) (*model.UserGamificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		return nil, gamification.ErrNotFound
	}
	return clone(rec), nil
}

func (m *MemoryStore) ensure(userID string, at time.Time) *model.UserGamificationRecord {
	rec, ok := m.records[userID]
	if !ok {
		rec = &model.UserGamificationRecord{UserID: userID, Badges: []model.EarnedBadge{}, CreatedAt: at}
		m.records[userID] = rec
	}
	return rec
}

func (m *MemoryStore) UpsertOnTrade(ctx context.Context, userID string, outcome model.TradeOutcome, at time.Time) (*model.UserGamificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.ensure(userID, at)
	rec.TotalTrades++
	if outcome.IsWin {
		rec.TotalWins++
	}
	rec.TotalProfit = rec.TotalProfit.Add(outcome.PnL)
	rec.WeeklyProfit = rec.WeeklyProfit.Add(outcome.PnL)
	rec.UpdatedAt = at

	// The memory store doubles as the positions history.
	m.trades[userID] = append(m.trades[userID], model.ClosedTrade{PnL: outcome.PnL, ClosedAt: at})
	return clone(rec), nil
}

func (m *MemoryStore) ApplyStreak(ctx context.Context, userID string, upd gamification.StreakUpdate) (model.StreakResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		return model.StreakResult{}, gamification.ErrNotFound
	}
	if gamification.AlreadyEvaluated(rec.LastEvaluatedWeek, upd.Period) {
		return model.StreakResult{Current: rec.CurrentStreak, Longest: rec.LongestStreak}, nil
	}

	rec.CurrentStreak, rec.LongestStreak = gamification.NextStreak(rec.CurrentStreak, rec.LongestStreak, upd.Won)
	rec.WeeklyProfit = rec.WeeklyProfit.Sub(upd.Settle)
	rec.LastEvaluatedWeek = upd.Period
	rec.UpdatedAt = upd.At
	return model.StreakResult{Current: rec.CurrentStreak, Longest: rec.LongestStreak, Applied: true}, nil
}

func (m *MemoryStore) AwardBadges(ctx context.Context, userID string, badgeIDs []string, at time.Time) ([]model.EarnedBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		return nil, gamification.ErrNotFound
	}
	var earned []model.EarnedBadge
	for _, id := range badgeIDs {
		if rec.HasBadge(id) {
			continue
		}
		eb := model.EarnedBadge{BadgeID: id, EarnedAt: at}
		rec.Badges = append(rec.Badges, eb)
		earned = append(earned, eb)
	}
	return earned, nil
}

func (m *MemoryStore) Standings(ctx context.Context) ([]model.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]model.LeaderboardEntry, 0, len(m.records))
	for _, rec := range m.records {
		entries = append(entries, entryFor(clone(rec)))
	}
	return entries, nil
}

func (m *MemoryStore) Nearby(ctx context.Context, userID string, rng int) ([]model.LeaderboardEntry, error) {
	entries, err := m.Standings(ctx)
	if err != nil {
		return nil, err
	}
	return gamification.NearbyStandings(gamification.RankStandings(entries), userID, rng), nil
}

func (m *MemoryStore) UserIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) SetSharpe(ctx context.Context, userID string, sharpe *float64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		return gamification.ErrNotFound
	}
	if sharpe != nil {
		s := *sharpe
		rec.SharpeRatio = &s
	} else {
		rec.SharpeRatio = nil
	}
	rec.UpdatedAt = at
	return nil
}

func (m *MemoryStore) SetDisplayName(ctx context.Context, userID, name string, at time.Time) (*model.UserGamificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.ensure(userID, at)
	rec.DisplayName = &name
	rec.UpdatedAt = at
	return clone(rec), nil
}

// ClosedTrades implements gamification.TradeHistory.
func (m *MemoryStore) ClosedTrades(ctx context.Context, userID string, since time.Time) ([]model.ClosedTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.ClosedTrade
	for _, t := range m.trades[userID] {
		if !t.ClosedAt.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

// AddClosedTrade records a closed position without touching the stats.
func (m *MemoryStore) AddClosedTrade(userID string, trade model.ClosedTrade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[userID] = append(m.trades[userID], trade)
}

func entryFor(rec *model.UserGamificationRecord) model.LeaderboardEntry {
	entry := model.LeaderboardEntry{
		UserID:        rec.UserID,
		WeeklyProfit:  rec.WeeklyProfit,
		SharpeRatio:   rec.SharpeRatio,
		CurrentStreak: rec.CurrentStreak,
		Badges:        make([]string, 0, len(rec.Badges)),
	}
	if rec.DisplayName != nil {
		entry.DisplayName = *rec.DisplayName
	}
	for _, b := range rec.Badges {
		entry.Badges = append(entry.Badges, b.BadgeID)
	}
	return entry
}
