package repositories

import (
	"context"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// TradeRepository defines the interface for trade data operations
type TradeRepository interface {
	// Upsert inserts a trade keyed by event id; replaying the same
	// event never creates a second row
	Upsert(ctx context.Context, trade *entities.Trade) error

	// GetByFilter retrieves trades matching the given filter
	GetByFilter(ctx context.Context, filter entities.TradeFilter) ([]entities.Trade, error)

	// GetCount returns the count of trades matching the filter
	GetCount(ctx context.Context, filter entities.TradeFilter) (int64, error)
}
