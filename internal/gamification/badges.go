package gamification

import (
	_ "embed"
	"fmt"

	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Metrics a badge threshold can be evaluated against.
const (
	MetricTotalTrades   = "total_trades"
	MetricTotalWins     = "total_wins"
	MetricTotalProfit   = "total_profit"
	MetricCurrentStreak = "current_streak"
	MetricLongestStreak = "longest_streak"
	MetricWinRate       = "win_rate"
	MetricSharpeRatio   = "sharpe_ratio"
)

//go:embed badges.yaml
var badgesYAML []byte

// BadgeDefinition is one fixed threshold rule.
type BadgeDefinition struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Icon        string          `yaml:"icon" json:"icon"`
	Metric      string          `yaml:"metric" json:"metric"`
	Operator    string          `yaml:"operator" json:"operator"`
	Threshold   decimal.Decimal `yaml:"threshold" json:"threshold"`
	MinTrades   int             `yaml:"min_trades,omitempty" json:"minTrades,omitempty"`
}

// Satisfied evaluates the rule against a record.
func (b BadgeDefinition) Satisfied(rec model.UserGamificationRecord) bool {
	if rec.TotalTrades < b.MinTrades {
		return false
	}

	var value decimal.Decimal
	switch b.Metric {
	case MetricTotalTrades:
		value = decimal.NewFromInt(int64(rec.TotalTrades))
	case MetricTotalWins:
		value = decimal.NewFromInt(int64(rec.TotalWins))
	case MetricTotalProfit:
		value = rec.TotalProfit
	case MetricCurrentStreak:
		value = decimal.NewFromInt(int64(rec.CurrentStreak))
	case MetricLongestStreak:
		value = decimal.NewFromInt(int64(rec.LongestStreak))
	case MetricWinRate:
		value = rec.WinRate()
	case MetricSharpeRatio:
		if rec.SharpeRatio == nil {
			return false
		}
		value = decimal.NewFromFloat(*rec.SharpeRatio)
	default:
		return false
	}

	if b.Operator == ">" {
		return value.GreaterThan(b.Threshold)
	}
	return value.GreaterThanOrEqual(b.Threshold)
}

// ParseBadgeDefinitions decodes and validates a YAML badge table.
func ParseBadgeDefinitions(data []byte) ([]BadgeDefinition, error) {
	var defs []BadgeDefinition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("decode badge definitions: %w", err)
	}

	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("badge #%d: missing id", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("badge %s: duplicate id", d.ID)
		}
		seen[d.ID] = true

		switch d.Metric {
		case MetricTotalTrades, MetricTotalWins, MetricTotalProfit, MetricCurrentStreak,
			MetricLongestStreak, MetricWinRate, MetricSharpeRatio:
		default:
			return nil, fmt.Errorf("badge %s: unknown metric %q", d.ID, d.Metric)
		}
		if d.Operator != ">=" && d.Operator != ">" {
			return nil, fmt.Errorf("badge %s: unsupported operator %q", d.ID, d.Operator)
		}
	}
	return defs, nil
}

// DefaultBadges returns the embedded badge table.
func DefaultBadges() []BadgeDefinition {
	defs, err := ParseBadgeDefinitions(badgesYAML)
	if err != nil {
		panic(err)
	}
	return defs
}

// PendingBadges returns the definitions the record now satisfies but has not earned.
func PendingBadges(defs []BadgeDefinition, rec model.UserGamificationRecord) []BadgeDefinition {
	var out []BadgeDefinition
	for _, d := range defs {
		if rec.HasBadge(d.ID) {
			continue
		}
		if d.Satisfied(rec) {
			out = append(out, d)
		}
	}
	return out
}
