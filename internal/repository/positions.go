package repository

import (
	"context"
	"fmt"
	"time"

	model "github.com/MassBabyGeek/TradeMind-backend/internal/models"
)

// PositionsReader reads realized P&L from the positions subsystem's
// closed_positions table.
type PositionsReader struct {
	db DB
}

func NewPositionsReader(db DB) *PositionsReader {
	return &PositionsReader{db: db}
}

func (p *PositionsReader) ClosedTrades(ctx context.Context, userID string, since time.Time) ([]model.ClosedTrade, error) {
	rows, err := p.db.Query(ctx, `
		SELECT realized_pnl, closed_at
		FROM closed_positions
		WHERE user_id = $1 AND closed_at >= $2`,
		userID, since,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	trades := []model.ClosedTrade{}
	for rows.Next() {
		var t model.ClosedTrade
		if err := rows.Scan(&t.PnL, &t.ClosedAt); err != nil {
			return nil, fmt.Errorf("could not scan closed position: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, mapError(rows.Err())
}
