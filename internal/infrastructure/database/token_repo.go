package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// Ensure TokenRepo implements TokenRepository
var _ repositories.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements TokenRepository using PostgreSQL
type TokenRepo struct {
	db *sqlx.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// GetByAddress retrieves a token by its address
func (r *TokenRepo) GetByAddress(ctx context.Context, address string) (*entities.Token, error) {
	var token entities.Token
	query := `SELECT * FROM tokens WHERE address = $1`

	if err := r.db.GetContext(ctx, &token, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

// allowed sort columns for GetAllPaginated
var tokenSortColumns = map[string]bool{
	"created_timestamp": true,
	"updated_timestamp": true,
	"name":              true,
	"symbol":            true,
	"total_supply":      true,
}

// GetAllPaginated retrieves tokens with pagination and sorting
func (r *TokenRepo) GetAllPaginated(ctx context.Context, limit, offset int, sortBy, sortOrder string) ([]*entities.Token, int64, error) {
	if !tokenSortColumns[sortBy] {
		sortBy = "created_timestamp"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tokens`); err != nil {
		return nil, 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	query := fmt.Sprintf(`SELECT * FROM tokens ORDER BY %s %s LIMIT $1 OFFSET $2`, sortBy, sortOrder)

	var tokens []*entities.Token
	if err := r.db.SelectContext(ctx, &tokens, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to get tokens: %w", err)
	}

	return tokens, total, nil
}

// Upsert creates or updates a token. The create_event column carries
// the creation event id: replaying the creation event for an existing
// token updates metadata in place instead of creating a duplicate.
func (r *TokenRepo) Upsert(ctx context.Context, token *entities.Token) error {
	query := `
		INSERT INTO tokens (address, create_event, creator_address, name, symbol, total_supply, created_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address) DO UPDATE SET
			create_event = EXCLUDED.create_event,
			creator_address = EXCLUDED.creator_address,
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			updated_timestamp = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		token.Address,
		token.CreateEvent,
		token.CreatorAddress,
		token.Name,
		token.Symbol,
		token.TotalSupply,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}

	return nil
}

// UpdateSupply updates a token's cached total supply
func (r *TokenRepo) UpdateSupply(ctx context.Context, address, totalSupply string) error {
	query := `
		UPDATE tokens SET
			total_supply = $2,
			updated_timestamp = NOW()
		WHERE address = $1
	`

	_, err := r.db.ExecContext(ctx, query, address, totalSupply)
	if err != nil {
		return fmt.Errorf("failed to update token supply: %w", err)
	}

	return nil
}

// SetGraduated marks a token graduated with its pool and LP position
func (r *TokenRepo) SetGraduated(ctx context.Context, address, poolAddress, lpPositionID string) error {
	query := `
		UPDATE tokens SET
			is_graduate = TRUE,
			pool_address = $2,
			lp_position_id = $3,
			updated_timestamp = NOW()
		WHERE address = $1
	`

	_, err := r.db.ExecContext(ctx, query, address, poolAddress, lpPositionID)
	if err != nil {
		return fmt.Errorf("failed to set token graduated: %w", err)
	}

	return nil
}
