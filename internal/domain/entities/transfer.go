package entities

import (
	"time"
)

// Transfer is a balance movement for a token, keyed by the
// originating event id. Same idempotency discipline as Trade.
type Transfer struct {
	Event            int64     `db:"event"`
	TokenAddress     string    `db:"token_address"`
	FromAddress      string    `db:"from_address"`
	ToAddress        string    `db:"to_address"`
	Amount           string    `db:"amount"`
	FromTokenBalance string    `db:"from_token_balance"`
	ToTokenBalance   string    `db:"to_token_balance"`
	TotalSupply      string    `db:"total_supply"`
	Timestamp        time.Time `db:"timestamp"`
}

// TransferFilter contains filters for querying transfers
type TransferFilter struct {
	TokenAddress *string
	FromAddress  *string
	ToAddress    *string
	Address      *string // matches either from or to
	Limit        int
	Offset       int
}

// DefaultTransferFilter returns a filter with sensible defaults
func DefaultTransferFilter() TransferFilter {
	return TransferFilter{
		Limit:  100,
		Offset: 0,
	}
}
