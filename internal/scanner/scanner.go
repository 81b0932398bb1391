package scanner

import (
	"database/sql"

	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
)

// Row est satisfait par pgx.Row et pgx.Rows
type Row interface {
	Scan(dest ...interface{}) error
}

// RecordColumns est l'ordre des colonnes attendu par ScanGamificationRecord
const RecordColumns = `user_id, display_name, current_streak, longest_streak, total_wins, total_trades,
	total_profit, weekly_profit, sharpe_ratio, to_char(last_evaluated_week, 'YYYY-MM-DD'),
	created_at, updated_at`

// ScanGamificationRecord scanne une ligne user_gamification (sans les badges)
func ScanGamificationRecord(row Row) (*model.UserGamificationRecord, error) {
	var rec model.UserGamificationRecord
	var displayName, lastWeek sql.NullString
	var sharpe sql.NullFloat64

	err := row.Scan(
		&rec.UserID, &displayName, &rec.CurrentStreak, &rec.LongestStreak,
		&rec.TotalWins, &rec.TotalTrades, &rec.TotalProfit, &rec.WeeklyProfit,
		&sharpe, &lastWeek, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.DisplayName = utils.NullStringToPointer(displayName)
	rec.SharpeRatio = utils.NullFloat64ToPointer(sharpe)
	rec.LastEvaluatedWeek = utils.NullStringToString(lastWeek)
	rec.Badges = []model.EarnedBadge{}

	return &rec, nil
}

// ScanEarnedBadge scanne une ligne user_badges (badge_id, earned_at)
func ScanEarnedBadge(row Row) (model.EarnedBadge, error) {
	var b model.EarnedBadge
	err := row.Scan(&b.BadgeID, &b.EarnedAt)
	return b, err
}

// ScanStanding scanne une ligne du classement.
// Colonnes: user_id, display_name, weekly_profit, sharpe_ratio, current_streak, badges (text[] en texte)
func ScanStanding(row Row) (model.LeaderboardEntry, error) {
	var e model.LeaderboardEntry
	var displayName, badges sql.NullString
	var sharpe sql.NullFloat64

	if err := row.Scan(&e.UserID, &displayName, &e.WeeklyProfit, &sharpe, &e.CurrentStreak, &badges); err != nil {
		return e, err
	}

	e.DisplayName = utils.NullStringToString(displayName)
	e.SharpeRatio = utils.NullFloat64ToPointer(sharpe)
	e.Badges = utils.NullStringToStringArray(badges)
	return e, nil
}

// ScanRankedStanding scanne une ligne avec rang calculé par ROW_NUMBER()
// Colonnes: user_id, display_name, weekly_profit, sharpe_ratio, current_streak, rank, badges
func ScanRankedStanding(row Row) (model.LeaderboardEntry, error) {
	var e model.LeaderboardEntry
	var displayName, badges sql.NullString
	var sharpe sql.NullFloat64

	if err := row.Scan(&e.UserID, &displayName, &e.WeeklyProfit, &sharpe, &e.CurrentStreak, &e.Rank, &badges); err != nil {
		return e, err
	}

	e.DisplayName = utils.NullStringToString(displayName)
	e.SharpeRatio = utils.NullFloat64ToPointer(sharpe)
	e.Badges = utils.NullStringToStringArray(badges)
	return e, nil
}
