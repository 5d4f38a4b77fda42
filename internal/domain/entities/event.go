package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topic identifies the logical event type of a ledger event
type Topic string

const (
	TopicTokenCreated    Topic = "token_created"
	TopicTransfer        Topic = "transfer"
	TopicBuy             Topic = "buy"
	TopicSell            Topic = "sell"
	TopicMarketGraduated Topic = "market_graduated"
)

// WatchedTopics returns every topic the pipeline fetches per cycle
func WatchedTopics() []Topic {
	return []Topic{
		TopicTokenCreated,
		TopicTransfer,
		TopicBuy,
		TopicSell,
		TopicMarketGraduated,
	}
}

// EventStatus is the projection state of a ledger event
type EventStatus int16

const (
	StatusUnhandled EventStatus = 0
	StatusHandled   EventStatus = 1
)

// BlockOrderSpan exceeds the maximum transactions per block, so
// block*BlockOrderSpan+txIndex is a strictly ordered composite key.
const BlockOrderSpan = 100000

// LedgerEvent is one decoded occurrence on the external ledger.
// The triple (Topic, TxHash, Data) is unique: re-fetching the same
// log never creates a second row.
type LedgerEvent struct {
	ID              int64       `db:"id"`
	Block           int64       `db:"block"`
	ContractAddress string      `db:"contract_address"`
	TxHash          string      `db:"tx_hash"`
	TxIndex         int64       `db:"tx_index"`
	Timestamp       time.Time   `db:"timestamp"`
	Topic           Topic       `db:"topic"`
	Data            []byte      `db:"data"`
	Status          EventStatus `db:"status"`

	// Payload is the typed form of Data, decoded once when the event
	// is built or read back from the ledger. Not persisted directly.
	Payload EventPayload `db:"-"`
}

// OrderKey is the composite sort key that reproduces ledger execution order
func (e *LedgerEvent) OrderKey() int64 {
	return e.Block*BlockOrderSpan + e.TxIndex
}

// EventPayload is the tagged union of per-topic payloads
type EventPayload interface {
	// Token returns the address of the token the event concerns
	Token() string
}

// TokenCreatedPayload announces a newly launched token
type TokenCreatedPayload struct {
	TokenAddress   string `json:"tokenAddress"`
	CreatorAddress string `json:"creatorAddress"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
}

func (p *TokenCreatedPayload) Token() string { return p.TokenAddress }

// TransferPayload is a balance movement on the bonding curve
type TransferPayload struct {
	TokenAddress     string `json:"tokenAddress"`
	FromAddress      string `json:"fromAddress"`
	ToAddress        string `json:"toAddress"`
	Amount           string `json:"amount"`
	FromTokenBalance string `json:"fromTokenBalance"`
	ToTokenBalance   string `json:"toTokenBalance"`
	TotalSupply      string `json:"totalSupply"`
}

func (p *TransferPayload) Token() string { return p.TokenAddress }

// TradePayload covers both buy and sell events; the owning event's
// topic distinguishes the side.
type TradePayload struct {
	TokenAddress  string `json:"tokenAddress"`
	TraderAddress string `json:"traderAddress"`
	Recipient     string `json:"recipient"`
	TrueEth       string `json:"trueEth"`
	TrueOrderSize string `json:"trueOrderSize"`
	Fee           string `json:"fee"`
	TraderBalance string `json:"traderBalance"`
	TotalSupply   string `json:"totalSupply"`
	IsGraduate    bool   `json:"isGraduate"`
}

func (p *TradePayload) Token() string { return p.TokenAddress }

// MarketGraduatedPayload marks a token's migration to open-market liquidity
type MarketGraduatedPayload struct {
	TokenAddress string `json:"tokenAddress"`
	PoolAddress  string `json:"poolAddress"`
	LPPositionID string `json:"lpPositionId"`
}

func (p *MarketGraduatedPayload) Token() string { return p.TokenAddress }

// DecodePayload populates Payload from Data according to Topic.
// Used when events are read back out of the ledger.
func (e *LedgerEvent) DecodePayload() error {
	var payload EventPayload
	switch e.Topic {
	case TopicTokenCreated:
		payload = &TokenCreatedPayload{}
	case TopicTransfer:
		payload = &TransferPayload{}
	case TopicBuy, TopicSell:
		payload = &TradePayload{}
	case TopicMarketGraduated:
		payload = &MarketGraduatedPayload{}
	default:
		return fmt.Errorf("unknown event topic %q", e.Topic)
	}

	if err := json.Unmarshal(e.Data, payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Topic, err)
	}

	e.Payload = payload
	return nil
}

// EncodePayload serializes Payload into Data. The serialized form is
// part of the ledger's dedup key, so encoding must be deterministic;
// json.Marshal of a struct (fixed field order) satisfies that.
func (e *LedgerEvent) EncodePayload() error {
	if e.Payload == nil {
		return fmt.Errorf("event has no payload")
	}

	data, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", e.Topic, err)
	}

	e.Data = data
	return nil
}
