package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/gamification"
	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/MassBabyGeek/TradeMind-backend/internal/scanner"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// DB is the subset of *pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

var _ DB = (*pgxpool.Pool)(nil)

// PostgresStore implements gamification.Store on the user_gamification and
// user_badges tables.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// mapError converts driver errors into the engine's error kinds.
// Anything not recognised is returned as is and treated as storage-unavailable upstream.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return gamification.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503": // foreign_key_violation
			return gamification.ErrNotFound
		case pgErr.Code == "23514", len(pgErr.Code) == 5 && pgErr.Code[:2] == "22": // check_violation, data exceptions
			return fmt.Errorf("%w: %s", gamification.ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}

func (s *PostgresStore) GetStats(ctx context.Context, userID string) (*model.UserGamificationRecord, error) {
	rec, err := scanner.ScanGamificationRecord(s.db.QueryRow(ctx,
		`SELECT `+scanner.RecordColumns+` FROM user_gamification WHERE user_id = $1`,
		userID,
	))
	if err != nil {
		return nil, mapError(err)
	}

	if rec.Badges, err = s.badges(ctx, userID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) badges(ctx context.Context, userID string) ([]model.EarnedBadge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT badge_id, earned_at FROM user_badges WHERE user_id = $1 ORDER BY earned_at, badge_id`,
		userID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	badges := []model.EarnedBadge{}
	for rows.Next() {
		b, err := scanner.ScanEarnedBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan badge row: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, mapError(rows.Err())
}

// UpsertOnTrade is a single INSERT ... ON CONFLICT statement, so concurrent
// closes for one user serialize on the row lock and no increment is lost.
func (s *PostgresStore) UpsertOnTrade(ctx context.Context, userID string, outcome model.TradeOutcome, at time.Time) (*model.UserGamificationRecord, error) {
	wins := 0
	if outcome.IsWin {
		wins = 1
	}

	rec, err := scanner.ScanGamificationRecord(s.db.QueryRow(ctx, `
		INSERT INTO user_gamification (user_id, total_trades, total_wins, total_profit, weekly_profit, created_at, updated_at)
		VALUES ($1, 1, $2, $3::numeric, $3::numeric, $4, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_trades  = user_gamification.total_trades + 1,
			total_wins    = user_gamification.total_wins + EXCLUDED.total_wins,
			total_profit  = user_gamification.total_profit + EXCLUDED.total_profit,
			weekly_profit = user_gamification.weekly_profit + EXCLUDED.weekly_profit,
			updated_at    = EXCLUDED.updated_at
		RETURNING `+scanner.RecordColumns,
		userID, wins, outcome.PnL.String(), at,
	))
	if err != nil {
		return nil, mapError(err)
	}

	if rec.Badges, err = s.badges(ctx, userID); err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyStreak locks the row so a concurrent weekly run cannot apply the same period twice.
func (s *PostgresStore) ApplyStreak(ctx context.Context, userID string, upd gamification.StreakUpdate) (model.StreakResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return model.StreakResult{}, err
	}

	res, err := applyStreakTx(ctx, tx, userID, upd)
	if err != nil || !res.Applied {
		_ = tx.Rollback(ctx)
		return res, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.StreakResult{}, err
	}
	return res, nil
}

func applyStreakTx(ctx context.Context, tx pgx.Tx, userID string, upd gamification.StreakUpdate) (model.StreakResult, error) {
	var res model.StreakResult
	var lastWeek string
	err := tx.QueryRow(ctx, `
		SELECT current_streak, longest_streak, COALESCE(to_char(last_evaluated_week, 'YYYY-MM-DD'), '')
		FROM user_gamification
		WHERE user_id = $1
		FOR UPDATE`,
		userID,
	).Scan(&res.Current, &res.Longest, &lastWeek)
	if err != nil {
		return model.StreakResult{}, mapError(err)
	}

	if gamification.AlreadyEvaluated(lastWeek, upd.Period) {
		return res, nil
	}

	res.Current, res.Longest = gamification.NextStreak(res.Current, res.Longest, upd.Won)
	_, err = tx.Exec(ctx, `
		UPDATE user_gamification
		SET current_streak = $2,
			longest_streak = $3,
			weekly_profit = weekly_profit - $4::numeric,
			last_evaluated_week = $5::date,
			updated_at = $6
		WHERE user_id = $1`,
		userID, res.Current, res.Longest, upd.Settle.String(), upd.Period, upd.At,
	)
	if err != nil {
		return model.StreakResult{}, mapError(err)
	}
	res.Applied = true
	return res, nil
}

// AwardBadges relies on the (user_id, badge_id) primary key: a badge already
// present is skipped and not returned, which keeps concurrent checks from
// awarding twice.
func (s *PostgresStore) AwardBadges(ctx context.Context, userID string, badgeIDs []string, at time.Time) ([]model.EarnedBadge, error) {
	if len(badgeIDs) == 0 {
		return []model.EarnedBadge{}, nil
	}

	rows, err := s.db.Query(ctx, `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		SELECT $1, b, $3 FROM unnest($2::text[]) AS b
		ON CONFLICT (user_id, badge_id) DO NOTHING
		RETURNING badge_id, earned_at`,
		userID, pq.Array(badgeIDs), at,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	earned := []model.EarnedBadge{}
	for rows.Next() {
		b, err := scanner.ScanEarnedBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan awarded badge: %w", err)
		}
		earned = append(earned, b)
	}
	return earned, mapError(rows.Err())
}

func (s *PostgresStore) Standings(ctx context.Context) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT
			g.user_id,
			g.display_name,
			g.weekly_profit,
			g.sharpe_ratio,
			g.current_streak,
			COALESCE(array_agg(b.badge_id ORDER BY b.badge_id) FILTER (WHERE b.badge_id IS NOT NULL), '{}')::text
		FROM user_gamification g
		LEFT JOIN user_badges b ON b.user_id = g.user_id
		GROUP BY g.user_id
		ORDER BY g.weekly_profit DESC, g.sharpe_ratio DESC NULLS LAST, g.user_id COLLATE "C" ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		e, err := scanner.ScanStanding(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, mapError(rows.Err())
}

// Nearby ranks in SQL with the same ordering as gamification.RankLess.
func (s *PostgresStore) Nearby(ctx context.Context, userID string, rng int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx, `
		WITH ranked AS (
			SELECT
				g.user_id,
				g.display_name,
				g.weekly_profit,
				g.sharpe_ratio,
				g.current_streak,
				ROW_NUMBER() OVER (
					ORDER BY g.weekly_profit DESC, g.sharpe_ratio DESC NULLS LAST, g.user_id COLLATE "C" ASC
				) AS rank
			FROM user_gamification g
		),
		target AS (
			SELECT rank FROM ranked WHERE user_id = $1
		)
		SELECT
			r.user_id, r.display_name, r.weekly_profit, r.sharpe_ratio, r.current_streak, r.rank,
			COALESCE((SELECT array_agg(b.badge_id ORDER BY b.badge_id) FROM user_badges b WHERE b.user_id = r.user_id), '{}')::text
		FROM ranked r, target t
		WHERE r.rank BETWEEN t.rank - $2 AND t.rank + $2
		ORDER BY r.rank`,
		userID, rng,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	nearby := []model.LeaderboardEntry{}
	for rows.Next() {
		e, err := scanner.ScanRankedStanding(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan nearby user row: %w", err)
		}
		nearby = append(nearby, e)
	}
	return nearby, mapError(rows.Err())
}

func (s *PostgresStore) UserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM user_gamification ORDER BY user_id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("could not scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, mapError(rows.Err())
}

func (s *PostgresStore) SetSharpe(ctx context.Context, userID string, sharpe *float64, at time.Time) error {
	res, err := s.db.Exec(ctx,
		`UPDATE user_gamification SET sharpe_ratio = $2::numeric, updated_at = $3 WHERE user_id = $1`,
		userID, sharpe, at,
	)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return gamification.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetDisplayName(ctx context.Context, userID, name string, at time.Time) (*model.UserGamificationRecord, error) {
	rec, err := scanner.ScanGamificationRecord(s.db.QueryRow(ctx, `
		INSERT INTO user_gamification (user_id, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			updated_at   = EXCLUDED.updated_at
		RETURNING `+scanner.RecordColumns,
		userID, name, at,
	))
	if err != nil {
		return nil, mapError(err)
	}

	if rec.Badges, err = s.badges(ctx, userID); err != nil {
		return nil, err
	}
	return rec, nil
}

// Ping is used by the health check.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
