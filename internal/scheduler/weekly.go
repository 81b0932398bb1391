package scheduler

import (
	"context"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	"github.com/MassBabyGeek/TradeMind-backend/internal/logger"
	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
)

// runDelay keeps the run clear of the boundary so late trades land in the old week's totals first.
const runDelay = 5 * time.Second

// WeeklyRunner is implemented by gamification.Engine.
type WeeklyRunner interface {
	RunWeekly(ctx context.Context, now time.Time) (model.WeeklySummary, error)
}

// NextRun returns the first Monday 00:00 in loc strictly after now, plus runDelay.
func NextRun(now time.Time, loc *time.Location) time.Time {
	ws := gamification.WeekStart(now, loc)
	y, m, d := ws.Date()
	return time.Date(y, m, d+7, 0, 0, 0, 0, loc).Add(runDelay)
}

// StartWeekly blocks, running the weekly evaluation at every week boundary
// until ctx is cancelled. It also runs once on start so a boundary crossed
// while the process was down is evaluated before new trades pile onto it;
// a week already evaluated is skipped by the runner.
func StartWeekly(ctx context.Context, runner WeeklyRunner, loc *time.Location, now func() time.Time) {
	if now == nil {
		now = time.Now
	}

	if ctx.Err() == nil {
		run(ctx, runner, now())
	}

	for {
		next := NextRun(now(), loc)
		logger.Info("next weekly evaluation at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("weekly scheduler stopped")
			return
		case <-timer.C:
		}

		run(ctx, runner, now())
	}
}

func run(ctx context.Context, runner WeeklyRunner, at time.Time) {
	summary, err := runner.RunWeekly(ctx, at)
	if err != nil {
		logger.Error("weekly evaluation failed: %v", err)
		return
	}
	if summary.Processed > 0 {
		logger.Info("weekly evaluation caught up week %s for %d users", summary.Period, summary.Processed)
	}
}
