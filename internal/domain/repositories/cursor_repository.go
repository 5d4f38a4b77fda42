package repositories

import (
	"context"
)

// CursorRepository persists per-chain sync progress. Reads and writes
// are durable and survive process restart.
type CursorRepository interface {
	// GetCursor returns the next block to sync and the block-range
	// step size for a chain, falling back to configured defaults when
	// no cursor has been written yet.
	GetCursor(ctx context.Context, chainID int64) (fromBlock, step int64, err error)

	// AdvanceCursor moves the cursor forward. Only called after the
	// corresponding interval has been fully fetched, ledgered, and
	// projected; never moves the cursor backwards.
	AdvanceCursor(ctx context.Context, chainID int64, newFromBlock int64) error
}
