package model

import "github.com/shopspring/decimal"

type LeaderboardEntry struct {
	UserID        string          `json:"userId"`
	DisplayName   string          `json:"displayName,omitempty"`
	Rank          int             `json:"rank"`
	WeeklyProfit  decimal.Decimal `json:"weeklyProfit"`
	SharpeRatio   *float64        `json:"sharpeRatio"`
	CurrentStreak int             `json:"currentStreak"`
	Badges        []string        `json:"badges,omitempty"`
}

// Leaderboard est la réponse du classement hebdomadaire.
// Requester n'est rempli que si l'utilisateur est hors du top.
type Leaderboard struct {
	Week          string             `json:"week"` // lundi de la semaine, YYYY-MM-DD
	Top           []LeaderboardEntry `json:"top"`
	RequesterRank *int               `json:"requesterRank,omitempty"`
	Requester     *LeaderboardEntry  `json:"requester,omitempty"`
	TotalUsers    int                `json:"totalUsers"`
}
