package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserGamificationRecord est la ligne user_gamification d'un utilisateur
type UserGamificationRecord struct {
	UserID            string          `json:"userId"`
	DisplayName       *string         `json:"displayName,omitempty"`
	CurrentStreak     int             `json:"currentStreak"`
	LongestStreak     int             `json:"longestStreak"`
	TotalWins         int             `json:"totalWins"`
	TotalTrades       int             `json:"totalTrades"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	WeeklyProfit      decimal.Decimal `json:"weeklyProfit"`
	SharpeRatio       *float64        `json:"sharpeRatio"`
	LastEvaluatedWeek string          `json:"lastEvaluatedWeek,omitempty"` // YYYY-MM-DD
	Badges            []EarnedBadge   `json:"badges"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// WinRate retourne le pourcentage de trades gagnants (0 sans trade)
func (r UserGamificationRecord) WinRate() decimal.Decimal {
	if r.TotalTrades == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.TotalWins)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(r.TotalTrades)))
}

// HasBadge indique si le badge est déjà gagné
func (r UserGamificationRecord) HasBadge(id string) bool {
	for _, b := range r.Badges {
		if b.BadgeID == id {
			return true
		}
	}
	return false
}

type EarnedBadge struct {
	BadgeID  string    `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

// TradeOutcome est le résultat d'un trade clôturé, agrégé dans le record
type TradeOutcome struct {
	PnL      decimal.Decimal `json:"pnl"`
	IsWin    bool            `json:"isWin"`
	Symbol   string          `json:"symbol"`
	Strategy string          `json:"strategy"`
}

// ClosedTrade vient de l'historique des positions (closed_positions)
type ClosedTrade struct {
	PnL      decimal.Decimal `json:"pnl"`
	ClosedAt time.Time       `json:"closedAt"`
}

type StreakResult struct {
	Current int  `json:"current"`
	Longest int  `json:"longest"`
	Applied bool `json:"applied"`
}

// TradeResult est renvoyé après l'enregistrement d'un trade
type TradeResult struct {
	Stats     *UserGamificationRecord `json:"stats"`
	NewBadges []BadgeAward            `json:"newBadges"`
}

// BadgeAward associe un badge gagné à sa définition
type BadgeAward struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

type SharpeEstimate struct {
	UserID      string   `json:"userId"`
	SharpeRatio *float64 `json:"sharpeRatio"`
	TradeCount  int      `json:"tradeCount"`
	WindowDays  int      `json:"windowDays"`
}

// WeeklySummary résume un passage du job hebdomadaire
type WeeklySummary struct {
	Period    string `json:"period"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}
