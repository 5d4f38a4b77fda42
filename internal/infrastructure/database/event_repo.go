package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// Ensure EventRepo implements EventRepository
var _ repositories.EventRepository = (*EventRepo)(nil)

// EventRepo implements the event ledger using PostgreSQL
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo creates a new event ledger repository
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

// UpsertEvents bulk-inserts events in a single transaction. The
// unique constraint on (topic, tx_hash, data) absorbs re-fetches of
// the same log: conflicts are no-ops and leave status untouched.
func (r *EventRepo) UpsertEvents(ctx context.Context, events []entities.LedgerEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO events (block, contract_address, tx_hash, tx_index, timestamp, topic, data, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (topic, tx_hash, data) DO NOTHING
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.Block,
			e.ContractAddress,
			e.TxHash,
			e.TxIndex,
			e.Timestamp,
			e.Topic,
			e.Data,
			entities.StatusUnhandled,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(events), nil
}

// ListUnhandled retrieves unhandled events in ascending id order with
// payloads decoded. Insertion order tracks the resolver's sort within
// a batch and FIFO across batches, so id order is replay order.
func (r *EventRepo) ListUnhandled(ctx context.Context, limit int) ([]entities.LedgerEvent, error) {
	query := `
		SELECT id, block, contract_address, tx_hash, tx_index, timestamp, topic, data, status
		FROM events
		WHERE status = $1
		ORDER BY id ASC
		LIMIT $2
	`

	var events []entities.LedgerEvent
	if err := r.db.SelectContext(ctx, &events, query, entities.StatusUnhandled, limit); err != nil {
		return nil, fmt.Errorf("failed to list unhandled events: %w", err)
	}

	for i := range events {
		if err := events[i].DecodePayload(); err != nil {
			return nil, fmt.Errorf("event %d: %w", events[i].ID, err)
		}
	}

	return events, nil
}

// MarkHandled flips an event's status to handled
func (r *EventRepo) MarkHandled(ctx context.Context, id int64) error {
	query := `UPDATE events SET status = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, entities.StatusHandled); err != nil {
		return fmt.Errorf("failed to mark event %d handled: %w", id, err)
	}

	return nil
}
