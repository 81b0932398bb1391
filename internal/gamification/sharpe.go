package gamification

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// MinSharpeTrades is the minimum number of closed trades in the window.
	MinSharpeTrades = 5
	// SharpeWindowDays is the trailing window of closed trades considered.
	SharpeWindowDays = 30

	riskFreeRate       = 0.04
	zeroVariancePosRet = 3.0
	sharpeFloor        = -2.0
	sharpeCeil         = 5.0
)

// EstimateSharpe computes the bounded, non-annualized Sharpe proxy over the
// P&L values. ok is false when there are fewer than MinSharpeTrades values.
// Stored values depend on the exact constant, rounding and clamp.
func EstimateSharpe(pnls []decimal.Decimal) (float64, bool) {
	n := len(pnls)
	if n < MinSharpeTrades {
		return 0, false
	}

	// Sorted copy so float accumulation does not depend on input order.
	vals := make([]decimal.Decimal, n)
	copy(vals, pnls)
	sort.Slice(vals, func(i, j int) bool { return vals[i].LessThan(vals[j]) })

	sum := decimal.Zero
	for _, p := range vals {
		sum = sum.Add(p)
	}
	mean, _ := sum.Div(decimal.NewFromInt(int64(n))).Float64()

	var sq float64
	for _, p := range vals {
		v, _ := p.Float64()
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(n))

	if std == 0 {
		if mean > 0 {
			return zeroVariancePosRet, true
		}
		return 0, true
	}

	ratio := math.Round((mean-riskFreeRate)/std*100) / 100
	return math.Max(sharpeFloor, math.Min(sharpeCeil, ratio)), true
}
