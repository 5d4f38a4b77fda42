package repositories

import (
	"context"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// TransferRepository defines the interface for transfer data operations
type TransferRepository interface {
	// Upsert inserts a transfer keyed by event id; replaying the same
	// event never creates a second row
	Upsert(ctx context.Context, transfer *entities.Transfer) error

	// GetByFilter retrieves transfers matching the given filter
	GetByFilter(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error)

	// GetCount returns the count of transfers matching the filter
	GetCount(ctx context.Context, filter entities.TransferFilter) (int64, error)
}
