package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// Ensure TransferRepo implements TransferRepository
var _ repositories.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implements TransferRepository using PostgreSQL
type TransferRepo struct {
	db *sqlx.DB
}

// NewTransferRepo creates a new transfer repository
func NewTransferRepo(db *sqlx.DB) *TransferRepo {
	return &TransferRepo{db: db}
}

// Upsert inserts a transfer keyed by event id; a replayed event hits
// the primary-key conflict and is a no-op
func (r *TransferRepo) Upsert(ctx context.Context, transfer *entities.Transfer) error {
	query := `
		INSERT INTO transfers (event, token_address, from_address, to_address, amount,
							   from_token_balance, to_token_balance, total_supply, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		transfer.Event,
		transfer.TokenAddress,
		transfer.FromAddress,
		transfer.ToAddress,
		transfer.Amount,
		transfer.FromTokenBalance,
		transfer.ToTokenBalance,
		transfer.TotalSupply,
		transfer.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transfer: %w", err)
	}

	return nil
}

// GetByFilter retrieves transfers matching the given filter
func (r *TransferRepo) GetByFilter(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error) {
	query, args := r.buildFilterQuery(filter, false)

	var transfers []entities.Transfer
	if err := r.db.SelectContext(ctx, &transfers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}

	return transfers, nil
}

// GetCount returns the count of transfers matching the filter
func (r *TransferRepo) GetCount(ctx context.Context, filter entities.TransferFilter) (int64, error) {
	query, args := r.buildFilterQuery(filter, true)

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to get transfer count: %w", err)
	}

	return count, nil
}

// buildFilterQuery builds the SQL query for filtering transfers
func (r *TransferRepo) buildFilterQuery(filter entities.TransferFilter, countOnly bool) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.TokenAddress != nil {
		conditions = append(conditions, fmt.Sprintf("token_address = $%d", argIdx))
		args = append(args, *filter.TokenAddress)
		argIdx++
	}

	if filter.FromAddress != nil {
		conditions = append(conditions, fmt.Sprintf("from_address = $%d", argIdx))
		args = append(args, *filter.FromAddress)
		argIdx++
	}

	if filter.ToAddress != nil {
		conditions = append(conditions, fmt.Sprintf("to_address = $%d", argIdx))
		args = append(args, *filter.ToAddress)
		argIdx++
	}

	if filter.Address != nil {
		conditions = append(conditions, fmt.Sprintf("(from_address = $%d OR to_address = $%d)", argIdx, argIdx))
		args = append(args, *filter.Address)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	if countOnly {
		return fmt.Sprintf("SELECT COUNT(*) FROM transfers %s", whereClause), args
	}

	query := fmt.Sprintf(`
		SELECT event, token_address, from_address, to_address, amount,
			   from_token_balance, to_token_balance, total_supply, timestamp
		FROM transfers
		%s
		ORDER BY event DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, filter.Offset)

	return query, args
}
