package entities

import (
	"time"
)

// TradeSide distinguishes buys from sells
type TradeSide int16

const (
	SideBuy  TradeSide = 0
	SideSell TradeSide = 1
)

// Trade is a buy or sell against a token's bonding curve. Keyed by
// the originating event id (the idempotency key); immutable once
// created.
type Trade struct {
	Event         int64     `db:"event"`
	TokenAddress  string    `db:"token_address"`
	FromAddress   string    `db:"from_address"`
	Recipient     string    `db:"recipient_address"`
	Type          TradeSide `db:"type"`
	TrueEth       string    `db:"true_eth"`
	TrueOrderSize string    `db:"true_order_size"`
	TotalSupply   string    `db:"total_supply"`
	Fee           string    `db:"fee"`
	IsGraduate    bool      `db:"is_graduate"`
	Timestamp     time.Time `db:"timestamp"`
}

// TradeFilter contains filters for querying trades
type TradeFilter struct {
	TokenAddress *string
	Side         *TradeSide
	Limit        int
	Offset       int
}

// DefaultTradeFilter returns a filter with sensible defaults
func DefaultTradeFilter() TradeFilter {
	return TradeFilter{
		Limit:  100,
		Offset: 0,
	}
}
