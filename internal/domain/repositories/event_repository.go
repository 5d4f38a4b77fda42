package repositories

import (
	"context"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// EventRepository defines the interface for the append-only event ledger
type EventRepository interface {
	// UpsertEvents bulk-inserts events, deduplicating on
	// (topic, tx_hash, data). Re-inserting a stored event is a no-op
	// and does not reset its status. Returns the count of events
	// submitted, for observability only.
	UpsertEvents(ctx context.Context, events []entities.LedgerEvent) (int, error)

	// ListUnhandled retrieves unhandled events in ascending id order,
	// payloads decoded
	ListUnhandled(ctx context.Context, limit int) ([]entities.LedgerEvent, error)

	// MarkHandled flips an event's status to handled
	MarkHandled(ctx context.Context, id int64) error
}
