package gamification

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/shopspring/decimal"
)

const (
	maxUserIDLen   = 128
	maxSymbolLen   = 32
	maxStrategyLen = 64
)

var (
	displayNameRE = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	// NUMERIC(16,2) upper bound for a single P&L value.
	maxPnL = decimal.New(1, 12)
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Location     *time.Location
	StoreTimeout time.Duration
	Cache        StandingsCache
	Badges       []BadgeDefinition
	Now          func() time.Time
}

// Engine runs the gamification operations on top of a Store.
type Engine struct {
	store     Store
	positions TradeHistory
	cache     StandingsCache
	badges    []BadgeDefinition
	byID      map[string]BadgeDefinition
	loc       *time.Location
	timeout   time.Duration
	now       func() time.Time
}

func NewEngine(store Store, positions TradeHistory, opts Options) *Engine {
	e := &Engine{
		store:     store,
		positions: positions,
		cache:     opts.Cache,
		badges:    opts.Badges,
		loc:       opts.Location,
		timeout:   opts.StoreTimeout,
		now:       opts.Now,
	}
	if e.badges == nil {
		e.badges = DefaultBadges()
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.timeout <= 0 {
		e.timeout = 5 * time.Second
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.byID = make(map[string]BadgeDefinition, len(e.badges))
	for _, b := range e.badges {
		e.byID[b.ID] = b
	}
	return e
}

func (e *Engine) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

// Location returns the reference zone used for week boundaries.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Badges returns the badge table.
func (e *Engine) Badges() []BadgeDefinition {
	return e.badges
}

// GetStats returns the user's record, or ErrNotFound before the first trade.
func (e *Engine) GetStats(ctx context.Context, userID string) (*model.UserGamificationRecord, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	ctx, cancel := e.bounded(ctx)
	defer cancel()

	rec, err := e.store.GetStats(ctx, userID)
	if err != nil {
		return nil, storeErr("get stats", err)
	}
	return rec, nil
}

// UpsertOnTrade aggregates one closed trade into the user's record.
func (e *Engine) UpsertOnTrade(ctx context.Context, userID string, outcome model.TradeOutcome) (*model.UserGamificationRecord, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateOutcome(&outcome); err != nil {
		return nil, err
	}

	bctx, cancel := e.bounded(ctx)
	defer cancel()

	now := e.now()
	rec, err := e.store.UpsertOnTrade(bctx, userID, outcome, now)
	if err != nil {
		return nil, storeErr("upsert trade", err)
	}
	e.invalidateWeek(ctx, WeekStart(now, e.loc))
	return rec, nil
}

// UpdateStreak applies one evaluation period. A period already applied is a no-op.
func (e *Engine) UpdateStreak(ctx context.Context, userID string, period time.Time, won bool) (model.StreakResult, error) {
	if err := validateUserID(userID); err != nil {
		return model.StreakResult{}, err
	}
	ctx, cancel := e.bounded(ctx)
	defer cancel()

	res, err := e.store.ApplyStreak(ctx, userID, StreakUpdate{
		Period: PeriodKey(WeekStart(period, e.loc)),
		Won:    won,
		Settle: decimal.Zero,
		At:     e.now(),
	})
	if err != nil {
		return model.StreakResult{}, storeErr("update streak", err)
	}
	return res, nil
}

// CheckAndAward awards every badge whose threshold the record now meets.
// Earned badges are never re-awarded nor revoked.
func (e *Engine) CheckAndAward(ctx context.Context, userID string) ([]model.BadgeAward, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	bctx, cancel := e.bounded(ctx)
	defer cancel()

	rec, err := e.store.GetStats(bctx, userID)
	if err != nil {
		return nil, storeErr("check badges", err)
	}

	pending := PendingBadges(e.badges, *rec)
	if len(pending) == 0 {
		return []model.BadgeAward{}, nil
	}
	ids := make([]string, len(pending))
	for i, b := range pending {
		ids[i] = b.ID
	}

	now := e.now()
	earned, err := e.store.AwardBadges(bctx, userID, ids, now)
	if err != nil {
		return nil, storeErr("award badges", err)
	}
	if len(earned) > 0 {
		// Leaderboard entries carry the badge list.
		e.invalidateWeek(ctx, WeekStart(now, e.loc))
	}

	awards := make([]model.BadgeAward, 0, len(earned))
	for _, eb := range earned {
		def := e.byID[eb.BadgeID]
		awards = append(awards, model.BadgeAward{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			EarnedAt:    eb.EarnedAt,
		})
	}
	return awards, nil
}

// GetLeaderboard returns the top entries of the current week and the requester's rank.
func (e *Engine) GetLeaderboard(ctx context.Context, requesterID string, limit int) (model.Leaderboard, error) {
	if err := validateUserID(requesterID); err != nil {
		return model.Leaderboard{}, err
	}

	week := PeriodKey(WeekStart(e.now(), e.loc))
	ranked, err := e.standings(ctx, week)
	if err != nil {
		return model.Leaderboard{}, err
	}

	board := BuildLeaderboard(ranked, requesterID, limit)
	board.Week = week
	return board, nil
}

// GetNearby returns the users ranked within rng places of userID.
func (e *Engine) GetNearby(ctx context.Context, userID string, rng int) ([]model.LeaderboardEntry, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	ctx, cancel := e.bounded(ctx)
	defer cancel()

	entries, err := e.store.Nearby(ctx, userID, ClampRange(rng))
	if err != nil {
		return nil, storeErr("nearby users", err)
	}
	return entries, nil
}

func (e *Engine) standings(ctx context.Context, week string) ([]model.LeaderboardEntry, error) {
	if e.cache != nil {
		cctx, cancel := e.bounded(ctx)
		cached, ok, err := e.cache.Get(cctx, week)
		cancel()
		if err != nil {
			logger.Warning("leaderboard cache read failed for week %s: %v", week, err)
		} else if ok {
			return cached, nil
		}
	}

	sctx, cancel := e.bounded(ctx)
	defer cancel()
	entries, err := e.store.Standings(sctx)
	if err != nil {
		return nil, storeErr("leaderboard", err)
	}
	ranked := RankStandings(entries)

	if e.cache != nil {
		if err := e.cache.Set(sctx, week, ranked); err != nil {
			logger.Warning("leaderboard cache write failed for week %s: %v", week, err)
		}
	}
	return ranked, nil
}

func (e *Engine) invalidateWeek(ctx context.Context, weekStart time.Time) {
	if e.cache == nil {
		return
	}
	ctx, cancel := e.bounded(ctx)
	defer cancel()
	week := PeriodKey(weekStart)
	if err := e.cache.Invalidate(ctx, week); err != nil {
		logger.Warning("leaderboard cache invalidation failed for week %s: %v", week, err)
	}
}

// EstimateSharpe reads the user's closed trades over the trailing window.
// SharpeRatio is nil when there are fewer than MinSharpeTrades trades.
func (e *Engine) EstimateSharpe(ctx context.Context, userID string) (model.SharpeEstimate, error) {
	if err := validateUserID(userID); err != nil {
		return model.SharpeEstimate{}, err
	}
	ctx, cancel := e.bounded(ctx)
	defer cancel()

	since := e.now().AddDate(0, 0, -SharpeWindowDays)
	trades, err := e.positions.ClosedTrades(ctx, userID, since)
	if err != nil {
		return model.SharpeEstimate{}, storeErr("closed trades", err)
	}

	pnls := make([]decimal.Decimal, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnL
	}

	est := model.SharpeEstimate{UserID: userID, TradeCount: len(trades), WindowDays: SharpeWindowDays}
	if v, ok := EstimateSharpe(pnls); ok {
		est.SharpeRatio = &v
	}
	return est, nil
}

// SetDisplayName validates and stores the leaderboard display name.
func (e *Engine) SetDisplayName(ctx context.Context, userID, name string) (*model.UserGamificationRecord, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if !displayNameRE.MatchString(name) {
		return nil, invalid("display name must be 3-20 letters, digits or underscores")
	}
	bctx, cancel := e.bounded(ctx)
	defer cancel()

	rec, err := e.store.SetDisplayName(bctx, userID, name, e.now())
	if err != nil {
		return nil, storeErr("set display name", err)
	}
	e.invalidateWeek(ctx, WeekStart(e.now(), e.loc))
	return rec, nil
}

// RunWeekly closes the last elapsed week for every user: Sharpe refresh,
// streak update from the week's profit, weekly profit reset and badge check.
// Running it twice for the same week leaves streaks and weekly profit untouched.
func (e *Engine) RunWeekly(ctx context.Context, now time.Time) (model.WeeklySummary, error) {
	period := PeriodKey(PreviousWeekStart(now, e.loc))
	summary := model.WeeklySummary{Period: period}

	lctx, cancel := e.bounded(ctx)
	ids, err := e.store.UserIDs(lctx)
	cancel()
	if err != nil {
		return summary, storeErr("list users", err)
	}

	logger.Info("weekly evaluation for week %s: %d users", period, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		applied, err := e.closeWeek(ctx, id, period)
		switch {
		case err != nil:
			summary.Failed++
			logger.Error("weekly evaluation failed for user %s: %v", id, err)
		case applied:
			summary.Processed++
		default:
			summary.Skipped++
		}
	}

	e.invalidateWeek(ctx, WeekStart(now, e.loc))
	logger.Success("weekly evaluation %s done: %d processed, %d skipped, %d failed",
		period, summary.Processed, summary.Skipped, summary.Failed)
	return summary, nil
}

func (e *Engine) closeWeek(ctx context.Context, userID, period string) (bool, error) {
	est, err := e.EstimateSharpe(ctx, userID)
	if err != nil {
		return false, err
	}

	bctx, cancel := e.bounded(ctx)
	defer cancel()

	at := e.now()
	if err := e.store.SetSharpe(bctx, userID, est.SharpeRatio, at); err != nil {
		return false, storeErr("set sharpe", err)
	}

	rec, err := e.store.GetStats(bctx, userID)
	if err != nil {
		return false, storeErr("get stats", err)
	}
	res, err := e.store.ApplyStreak(bctx, userID, StreakUpdate{
		Period: period,
		Won:    rec.WeeklyProfit.IsPositive(),
		Settle: rec.WeeklyProfit,
		At:     at,
	})
	if err != nil {
		return false, storeErr("apply streak", err)
	}
	if !res.Applied {
		return false, nil
	}

	if _, err := e.CheckAndAward(ctx, userID); err != nil {
		logger.Warning("badge check failed for user %s: %v", userID, err)
	}
	return true, nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user id is required")
	}
	if len(userID) > maxUserIDLen {
		return invalid("user id too long")
	}
	return nil
}

func validateOutcome(o *model.TradeOutcome) error {
	if o.PnL.Abs().GreaterThanOrEqual(maxPnL) {
		return invalid("pnl out of range")
	}
	o.Symbol = strings.ToUpper(strings.TrimSpace(o.Symbol))
	o.Strategy = strings.TrimSpace(o.Strategy)
	if len(o.Symbol) > maxSymbolLen {
		return invalid("symbol too long")
	}
	if len(o.Strategy) > maxStrategyLen {
		return invalid("strategy too long")
	}
	o.PnL = o.PnL.Round(2)
	return nil
}
