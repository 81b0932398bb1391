package gamification

import (
	"sort"

	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
	DefaultNearbyRange      = 5
	MaxNearbyRange          = 25
)

// RankLess orders by weekly profit desc, then Sharpe desc (missing last),
// then user id asc so that equal standings always come out the same way.
func RankLess(a, b model.LeaderboardEntry) bool {
	if c := a.WeeklyProfit.Cmp(b.WeeklyProfit); c != 0 {
		return c > 0
	}
	switch {
	case a.SharpeRatio != nil && b.SharpeRatio == nil:
		return true
	case a.SharpeRatio == nil && b.SharpeRatio != nil:
		return false
	case a.SharpeRatio != nil && *a.SharpeRatio != *b.SharpeRatio:
		return *a.SharpeRatio > *b.SharpeRatio
	}
	return a.UserID < b.UserID
}

// RankStandings sorts a copy of entries and assigns 1-based ranks.
func RankStandings(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	ranked := make([]model.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool { return RankLess(ranked[i], ranked[j]) })
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// ClampLimit applies the default and bounds to a requested top-N size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// ClampRange applies the default and bounds to a nearby-users range.
func ClampRange(rng int) int {
	if rng <= 0 {
		return DefaultNearbyRange
	}
	if rng > MaxNearbyRange {
		return MaxNearbyRange
	}
	return rng
}

// BuildLeaderboard slices ranked standings into the top N and, when the
// requester sits below it, appends their own entry and rank.
func BuildLeaderboard(ranked []model.LeaderboardEntry, requesterID string, limit int) model.Leaderboard {
	limit = ClampLimit(limit)
	n := limit
	if n > len(ranked) {
		n = len(ranked)
	}

	board := model.Leaderboard{
		Top:        append([]model.LeaderboardEntry{}, ranked[:n]...),
		TotalUsers: len(ranked),
	}

	for i := range ranked {
		if ranked[i].UserID != requesterID {
			continue
		}
		rank := ranked[i].Rank
		board.RequesterRank = &rank
		if i >= n {
			entry := ranked[i]
			board.Requester = &entry
		}
		break
	}
	return board
}

// NearbyStandings returns the entries within rng ranks of the user.
func NearbyStandings(ranked []model.LeaderboardEntry, userID string, rng int) []model.LeaderboardEntry {
	rng = ClampRange(rng)
	for i := range ranked {
		if ranked[i].UserID != userID {
			continue
		}
		lo, hi := i-rng, i+rng+1
		if lo < 0 {
			lo = 0
		}
		if hi > len(ranked) {
			hi = len(ranked)
		}
		return append([]model.LeaderboardEntry{}, ranked[lo:hi]...)
	}
	return []model.LeaderboardEntry{}
}
