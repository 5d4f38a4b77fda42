package repositories

import (
	"context"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// TokenRepository defines the interface for token data operations
type TokenRepository interface {
	// GetByAddress retrieves a token by its address, nil if absent
	GetByAddress(ctx context.Context, address string) (*entities.Token, error)

	// GetAllPaginated retrieves tokens with pagination and sorting
	GetAllPaginated(ctx context.Context, limit, offset int, sortBy, sortOrder string) ([]*entities.Token, int64, error)

	// Upsert creates or updates a token, keyed by the creation event id
	Upsert(ctx context.Context, token *entities.Token) error

	// UpdateSupply updates a token's cached total supply
	UpdateSupply(ctx context.Context, address, totalSupply string) error

	// SetGraduated marks a token graduated with its pool and LP position
	SetGraduated(ctx context.Context, address, poolAddress, lpPositionID string) error
}
