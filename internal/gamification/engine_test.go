package gamification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/MassBabyGeek/TradeMind-backend/internal/repository"
	"github.com/shopspring/decimal"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Wednesday 2024-01-10 12:00 UTC, in the week starting 2024-01-08.
var wednesday = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*gamification.Engine, *repository.MemoryStore, *clock) {
	t.Helper()
	store := repository.NewMemoryStore()
	clk := &clock{t: wednesday}
	engine := gamification.NewEngine(store, store, gamification.Options{
		Location:     time.UTC,
		StoreTimeout: time.Second,
		Now:          clk.Now,
	})
	return engine, store, clk
}

func trade(pnl string) model.TradeOutcome {
	d := decimal.RequireFromString(pnl)
	return model.TradeOutcome{PnL: d, IsWin: d.IsPositive(), Symbol: "aapl", Strategy: "momentum"}
}

func TestUpsertOnTradeAggregates(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	for _, pnl := range []string{"10.50", "-4.25", "20"} {
		if _, err := engine.UpsertOnTrade(ctx, "alice", trade(pnl)); err != nil {
			t.Fatalf("UpsertOnTrade(%s): %v", pnl, err)
		}
	}

	rec, err := engine.GetStats(ctx, "alice")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if rec.TotalTrades != 3 || rec.TotalWins != 2 {
		t.Errorf("trades/wins = %d/%d, want 3/2", rec.TotalTrades, rec.TotalWins)
	}
	if !rec.TotalProfit.Equal(decimal.RequireFromString("26.25")) {
		t.Errorf("total profit = %s, want 26.25", rec.TotalProfit)
	}
	if !rec.WeeklyProfit.Equal(rec.TotalProfit) {
		t.Errorf("weekly profit = %s, want %s", rec.WeeklyProfit, rec.TotalProfit)
	}
	if rec.TotalWins > rec.TotalTrades {
		t.Error("more wins than trades")
	}
}

func TestUpsertOnTradeRejectsInvalidInput(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		outcome model.TradeOutcome
	}{
		{"empty user", "", trade("1")},
		{"blank user", "   ", trade("1")},
		{"pnl out of range", "bob", trade("1000000000000")},
		{"symbol too long", "bob", model.TradeOutcome{PnL: decimal.NewFromInt(1), Symbol: "ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGHIJ"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.UpsertOnTrade(ctx, tt.userID, tt.outcome)
			if !errors.Is(err, gamification.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := engine.GetStats(ctx, "bob"); !errors.Is(err, gamification.ErrNotFound) {
		t.Errorf("rejected trades must not create a record, got %v", err)
	}
}

func TestUpsertOnTradeConcurrent(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.UpsertOnTrade(ctx, "carol", trade("1")); err != nil {
				t.Errorf("UpsertOnTrade: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, err := engine.GetStats(ctx, "carol")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if rec.TotalTrades != 50 || !rec.TotalProfit.Equal(decimal.NewFromInt(50)) {
		t.Errorf("lost updates: trades=%d profit=%s", rec.TotalTrades, rec.TotalProfit)
	}
}

func TestGetStatsUnknownUser(t *testing.T) {
	engine, _, _ := newEngine(t)
	if _, err := engine.GetStats(context.Background(), "nobody"); !errors.Is(err, gamification.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckAndAwardIsMonotonic(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	if _, err := engine.UpsertOnTrade(ctx, "dave", trade("5")); err != nil {
		t.Fatal(err)
	}
	first, err := engine.CheckAndAward(ctx, "dave")
	if err != nil {
		t.Fatalf("CheckAndAward: %v", err)
	}
	got := map[string]bool{}
	for _, a := range first {
		got[a.ID] = true
		if a.Name == "" {
			t.Errorf("award %s has no name", a.ID)
		}
	}
	if !got["first_trade"] || !got["first_win"] {
		t.Fatalf("awards = %v, want first_trade and first_win", got)
	}

	second, err := engine.CheckAndAward(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Errorf("badges awarded twice: %v", second)
	}

	// A losing trade never revokes a badge.
	if _, err := engine.UpsertOnTrade(ctx, "dave", trade("-500")); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.CheckAndAward(ctx, "dave"); err != nil {
		t.Fatal(err)
	}
	rec, _ := engine.GetStats(ctx, "dave")
	if !rec.HasBadge("first_trade") || !rec.HasBadge("first_win") {
		t.Error("earned badges disappeared")
	}
}

func TestUpdateStreakIsIdempotentPerPeriod(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	if _, err := engine.UpsertOnTrade(ctx, "erin", trade("1")); err != nil {
		t.Fatal(err)
	}

	res, err := engine.UpdateStreak(ctx, "erin", wednesday, true)
	if err != nil {
		t.Fatalf("UpdateStreak: %v", err)
	}
	if !res.Applied || res.Current != 1 || res.Longest != 1 {
		t.Fatalf("first update = %+v", res)
	}

	res, err = engine.UpdateStreak(ctx, "erin", wednesday.Add(24*time.Hour), true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied || res.Current != 1 {
		t.Errorf("same week applied twice: %+v", res)
	}

	if _, err := engine.UpdateStreak(ctx, "nobody", wednesday, true); !errors.Is(err, gamification.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEstimateSharpeNeedsFiveTrades(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	for _, pnl := range []string{"10", "-5", "20", "15"} {
		if _, err := engine.UpsertOnTrade(ctx, "frank", trade(pnl)); err != nil {
			t.Fatal(err)
		}
	}
	est, err := engine.EstimateSharpe(ctx, "frank")
	if err != nil {
		t.Fatal(err)
	}
	if est.SharpeRatio != nil || est.TradeCount != 4 {
		t.Fatalf("estimate = %+v, want no ratio over 4 trades", est)
	}

	if _, err := engine.UpsertOnTrade(ctx, "frank", trade("-10")); err != nil {
		t.Fatal(err)
	}
	est, err = engine.EstimateSharpe(ctx, "frank")
	if err != nil {
		t.Fatal(err)
	}
	if est.SharpeRatio == nil || *est.SharpeRatio != 0.51 {
		t.Fatalf("sharpe = %v, want 0.51", est.SharpeRatio)
	}
}

func TestEstimateSharpeWindow(t *testing.T) {
	engine, store, _ := newEngine(t)
	ctx := context.Background()

	old := wednesday.AddDate(0, 0, -45)
	for i := 0; i < 5; i++ {
		store.AddClosedTrade("gina", model.ClosedTrade{PnL: decimal.NewFromInt(5), ClosedAt: old})
	}
	est, err := engine.EstimateSharpe(ctx, "gina")
	if err != nil {
		t.Fatal(err)
	}
	if est.TradeCount != 0 || est.SharpeRatio != nil {
		t.Errorf("trades outside the window were counted: %+v", est)
	}
}

func TestGetLeaderboard(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	profits := map[string]string{"u1": "300", "u2": "200", "u3": "200", "u4": "-50"}
	for id, p := range profits {
		if _, err := engine.UpsertOnTrade(ctx, id, trade(p)); err != nil {
			t.Fatal(err)
		}
	}

	board, err := engine.GetLeaderboard(ctx, "u4", 2)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if board.Week != "2024-01-08" {
		t.Errorf("week = %s", board.Week)
	}
	if len(board.Top) != 2 || board.Top[0].UserID != "u1" || board.Top[1].UserID != "u2" {
		t.Fatalf("top = %+v", board.Top)
	}
	if board.RequesterRank == nil || *board.RequesterRank != 4 {
		t.Fatalf("requester rank = %v, want 4", board.RequesterRank)
	}

	nearby, err := engine.GetNearby(ctx, "u3", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(nearby) != 3 || nearby[1].UserID != "u3" || nearby[1].Rank != 3 {
		t.Errorf("nearby = %+v", nearby)
	}
}

func TestSetDisplayName(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	for _, bad := range []string{"", "ab", "has space", "way_too_long_display_name", "bang!"} {
		if _, err := engine.SetDisplayName(ctx, "hank", bad); !errors.Is(err, gamification.ErrInvalidInput) {
			t.Errorf("SetDisplayName(%q) err = %v, want ErrInvalidInput", bad, err)
		}
	}

	rec, err := engine.SetDisplayName(ctx, "hank", " hank_42 ")
	if err != nil {
		t.Fatal(err)
	}
	if rec.DisplayName == nil || *rec.DisplayName != "hank_42" {
		t.Errorf("display name = %v", rec.DisplayName)
	}
}

func TestRunWeeklyClosesWeekOnce(t *testing.T) {
	engine, _, clk := newEngine(t)
	ctx := context.Background()

	for _, pnl := range []string{"10", "-5", "20", "15", "-10"} {
		if _, err := engine.UpsertOnTrade(ctx, "ivan", trade(pnl)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := engine.UpsertOnTrade(ctx, "judy", trade("-3")); err != nil {
		t.Fatal(err)
	}

	monday := time.Date(2024, 1, 15, 0, 0, 5, 0, time.UTC)
	clk.Set(monday)

	summary, err := engine.RunWeekly(ctx, monday)
	if err != nil {
		t.Fatalf("RunWeekly: %v", err)
	}
	if summary.Period != "2024-01-08" || summary.Processed != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	ivan, _ := engine.GetStats(ctx, "ivan")
	if ivan.CurrentStreak != 1 || ivan.LongestStreak != 1 {
		t.Errorf("ivan streak = %d/%d, want 1/1", ivan.CurrentStreak, ivan.LongestStreak)
	}
	if !ivan.WeeklyProfit.IsZero() {
		t.Errorf("ivan weekly profit = %s, want 0", ivan.WeeklyProfit)
	}
	if ivan.SharpeRatio == nil || *ivan.SharpeRatio != 0.51 {
		t.Errorf("ivan sharpe = %v, want 0.51", ivan.SharpeRatio)
	}
	if !ivan.TotalProfit.Equal(decimal.NewFromInt(30)) {
		t.Errorf("total profit must survive the reset, got %s", ivan.TotalProfit)
	}

	judy, _ := engine.GetStats(ctx, "judy")
	if judy.CurrentStreak != 0 || !judy.WeeklyProfit.IsZero() {
		t.Errorf("judy = streak %d weekly %s", judy.CurrentStreak, judy.WeeklyProfit)
	}

	// A trade after the close, then the same week evaluated again.
	if _, err := engine.UpsertOnTrade(ctx, "ivan", trade("7")); err != nil {
		t.Fatal(err)
	}
	again, err := engine.RunWeekly(ctx, monday.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if again.Processed != 0 || again.Skipped != 2 {
		t.Fatalf("second run = %+v, want everything skipped", again)
	}
	ivan, _ = engine.GetStats(ctx, "ivan")
	if ivan.CurrentStreak != 1 || !ivan.WeeklyProfit.Equal(decimal.NewFromInt(7)) {
		t.Errorf("second run changed ivan: streak %d weekly %s", ivan.CurrentStreak, ivan.WeeklyProfit)
	}
}

type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) GetStats(context.Context, string) (*model.UserGamificationRecord, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailuresAreStorageUnavailable(t *testing.T) {
	mem := repository.NewMemoryStore()
	engine := gamification.NewEngine(failingStore{mem}, mem, gamification.Options{Location: time.UTC})

	_, err := engine.GetStats(context.Background(), "kate")
	if !errors.Is(err, gamification.ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}

type mapCache struct {
	mu          sync.Mutex
	weeks       map[string][]model.LeaderboardEntry
	invalidated int
}

func (c *mapCache) Get(_ context.Context, week string) ([]model.LeaderboardEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.weeks[week]
	return entries, ok, nil
}

func (c *mapCache) Set(_ context.Context, week string, entries []model.LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weeks[week] = entries
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, week string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.weeks, week)
	c.invalidated++
	return nil
}

func TestCheckAndAwardRefreshesCachedLeaderboard(t *testing.T) {
	store := repository.NewMemoryStore()
	cache := &mapCache{weeks: map[string][]model.LeaderboardEntry{}}
	engine := gamification.NewEngine(store, store, gamification.Options{
		Location: time.UTC,
		Cache:    cache,
		Now:      func() time.Time { return wednesday },
	})
	ctx := context.Background()

	if _, err := engine.UpsertOnTrade(ctx, "lena", trade("8")); err != nil {
		t.Fatal(err)
	}
	// Cached before the badges are awarded.
	board, err := engine.GetLeaderboard(ctx, "lena", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(board.Top[0].Badges) != 0 {
		t.Fatalf("badges before award = %v", board.Top[0].Badges)
	}

	before := cache.invalidated
	awards, err := engine.CheckAndAward(ctx, "lena")
	if err != nil || len(awards) == 0 {
		t.Fatalf("awards = %v, %v", awards, err)
	}
	if cache.invalidated != before+1 {
		t.Errorf("cache invalidated %d times, want 1", cache.invalidated-before)
	}

	board, err = engine.GetLeaderboard(ctx, "lena", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(board.Top[0].Badges) != len(awards) {
		t.Errorf("leaderboard badges = %v, want the %d new badges", board.Top[0].Badges, len(awards))
	}

	// Nothing new to award leaves the cache alone.
	before = cache.invalidated
	if _, err := engine.CheckAndAward(ctx, "lena"); err != nil {
		t.Fatal(err)
	}
	if cache.invalidated != before {
		t.Error("cache invalidated without a new badge")
	}
}
