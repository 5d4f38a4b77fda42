package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// Ensure TradeRepo implements TradeRepository
var _ repositories.TradeRepository = (*TradeRepo)(nil)

// TradeRepo implements TradeRepository using PostgreSQL
type TradeRepo struct {
	db *sqlx.DB
}

// NewTradeRepo creates a new trade repository
func NewTradeRepo(db *sqlx.DB) *TradeRepo {
	return &TradeRepo{db: db}
}

// Upsert inserts a trade keyed by event id; a replayed event hits the
// primary-key conflict and is a no-op
func (r *TradeRepo) Upsert(ctx context.Context, trade *entities.Trade) error {
	query := `
		INSERT INTO trades (event, token_address, from_address, recipient_address, type,
							true_eth, true_order_size, total_supply, fee, is_graduate, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (event) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		trade.Event,
		trade.TokenAddress,
		trade.FromAddress,
		trade.Recipient,
		trade.Type,
		trade.TrueEth,
		trade.TrueOrderSize,
		trade.TotalSupply,
		trade.Fee,
		trade.IsGraduate,
		trade.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trade: %w", err)
	}

	return nil
}

// GetByFilter retrieves trades matching the given filter
func (r *TradeRepo) GetByFilter(ctx context.Context, filter entities.TradeFilter) ([]entities.Trade, error) {
	query, args := r.buildFilterQuery(filter, false)

	var trades []entities.Trade
	if err := r.db.SelectContext(ctx, &trades, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}

	return trades, nil
}

// GetCount returns the count of trades matching the filter
func (r *TradeRepo) GetCount(ctx context.Context, filter entities.TradeFilter) (int64, error) {
	query, args := r.buildFilterQuery(filter, true)

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to get trade count: %w", err)
	}

	return count, nil
}

// buildFilterQuery builds the SQL query for filtering trades
func (r *TradeRepo) buildFilterQuery(filter entities.TradeFilter, countOnly bool) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.TokenAddress != nil {
		conditions = append(conditions, fmt.Sprintf("token_address = $%d", argIdx))
		args = append(args, *filter.TokenAddress)
		argIdx++
	}

	if filter.Side != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *filter.Side)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	if countOnly {
		return fmt.Sprintf("SELECT COUNT(*) FROM trades %s", whereClause), args
	}

	query := fmt.Sprintf(`
		SELECT event, token_address, from_address, recipient_address, type,
			   true_eth, true_order_size, total_supply, fee, is_graduate, timestamp
		FROM trades
		%s
		ORDER BY event DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, filter.Offset)

	return query, args
}
