package testutil

import (
	"fmt"
	"time"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// Common test addresses
const (
	TokenAddress   = "0xaaaa00000000000000000000000000000000aaaa"
	CreatorAddress = "0x1111111111111111111111111111111111111111"
	TraderAddress  = "0x2222222222222222222222222222222222222222"
	OtherAddress   = "0x3333333333333333333333333333333333333333"
	PoolAddress    = "0xbbbb00000000000000000000000000000000bbbb"
	FactoryAddress = "0xcccc00000000000000000000000000000000cccc"
)

// CreateTestEvent creates a ledger event with default values. The
// default is a token_created event for TokenAddress; override the
// payload with EventWithPayload. Data is always (re)encoded from the
// payload after options are applied.
func CreateTestEvent(opts ...EventOption) entities.LedgerEvent {
	e := entities.LedgerEvent{
		Block:           12345678,
		ContractAddress: FactoryAddress,
		TxHash:          "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		TxIndex:         0,
		Timestamp:       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Topic:           entities.TopicTokenCreated,
		Status:          entities.StatusUnhandled,
		Payload: &entities.TokenCreatedPayload{
			TokenAddress:   TokenAddress,
			CreatorAddress: CreatorAddress,
			Name:           "Test Token",
			Symbol:         "TEST",
		},
	}

	for _, opt := range opts {
		opt(&e)
	}

	if err := e.EncodePayload(); err != nil {
		panic(err)
	}

	return e
}

type EventOption func(*entities.LedgerEvent)

func EventWithID(id int64) EventOption {
	return func(e *entities.LedgerEvent) {
		e.ID = id
	}
}

func EventWithBlock(block int64) EventOption {
	return func(e *entities.LedgerEvent) {
		e.Block = block
	}
}

func EventWithTxIndex(idx int64) EventOption {
	return func(e *entities.LedgerEvent) {
		e.TxIndex = idx
	}
}

func EventWithTxHash(hash string) EventOption {
	return func(e *entities.LedgerEvent) {
		e.TxHash = hash
	}
}

func EventWithTimestamp(ts time.Time) EventOption {
	return func(e *entities.LedgerEvent) {
		e.Timestamp = ts
	}
}

func EventWithStatus(status entities.EventStatus) EventOption {
	return func(e *entities.LedgerEvent) {
		e.Status = status
	}
}

func EventWithPayload(topic entities.Topic, payload entities.EventPayload) EventOption {
	return func(e *entities.LedgerEvent) {
		e.Topic = topic
		e.Payload = payload
	}
}

// DefaultTradePayload returns a buy/sell payload for TokenAddress
func DefaultTradePayload() *entities.TradePayload {
	return &entities.TradePayload{
		TokenAddress:  TokenAddress,
		TraderAddress: TraderAddress,
		Recipient:     TraderAddress,
		TrueEth:       "1000000000000000000",
		TrueOrderSize: "5000000000000000000000",
		Fee:           "10000000000000000",
		TraderBalance: "5000000000000000000000",
		TotalSupply:   "1000005000000000000000000",
		IsGraduate:    false,
	}
}

// DefaultTransferPayload returns a transfer payload for TokenAddress
func DefaultTransferPayload() *entities.TransferPayload {
	return &entities.TransferPayload{
		TokenAddress:     TokenAddress,
		FromAddress:      TraderAddress,
		ToAddress:        OtherAddress,
		Amount:           "1000000000000000000",
		FromTokenBalance: "4999000000000000000000",
		ToTokenBalance:   "1000000000000000000",
		TotalSupply:      "1000005000000000000000000",
	}
}

// DefaultGraduationPayload returns a graduation payload for TokenAddress
func DefaultGraduationPayload() *entities.MarketGraduatedPayload {
	return &entities.MarketGraduatedPayload{
		TokenAddress: TokenAddress,
		PoolAddress:  PoolAddress,
		LPPositionID: "42",
	}
}

// CreateTestToken creates a test token with default values
func CreateTestToken(opts ...TokenOption) *entities.Token {
	t := &entities.Token{
		Address:        TokenAddress,
		CreateEvent:    1,
		CreatorAddress: CreatorAddress,
		Name:           "Test Token",
		Symbol:         "TEST",
		TotalSupply:    "0",
		IsGraduate:     false,
		CreatedAt:      time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

type TokenOption func(*entities.Token)

func TokenWithAddress(addr string) TokenOption {
	return func(t *entities.Token) {
		t.Address = addr
	}
}

func TokenWithName(name string) TokenOption {
	return func(t *entities.Token) {
		t.Name = name
	}
}

func TokenWithSymbol(symbol string) TokenOption {
	return func(t *entities.Token) {
		t.Symbol = symbol
	}
}

func TokenWithSupply(supply string) TokenOption {
	return func(t *entities.Token) {
		t.TotalSupply = supply
	}
}

func TokenWithGraduation(pool, lpPositionID string) TokenOption {
	return func(t *entities.Token) {
		t.IsGraduate = true
		t.PoolAddress = &pool
		t.LPPositionID = &lpPositionID
	}
}

// CreateEventSequence creates n events of the given topic with unique
// tx hashes and increasing block heights
func CreateEventSequence(n int, topic entities.Topic, opts ...EventOption) []entities.LedgerEvent {
	events := make([]entities.LedgerEvent, n)
	for i := 0; i < n; i++ {
		var payload entities.EventPayload
		switch topic {
		case entities.TopicBuy, entities.TopicSell:
			p := DefaultTradePayload()
			p.TrueOrderSize = fmt.Sprintf("%d000000000000000000", i+1)
			payload = p
		case entities.TopicTransfer:
			p := DefaultTransferPayload()
			p.Amount = fmt.Sprintf("%d000000000000000000", i+1)
			payload = p
		case entities.TopicMarketGraduated:
			payload = DefaultGraduationPayload()
		default:
			topic = entities.TopicTokenCreated
			payload = &entities.TokenCreatedPayload{
				TokenAddress:   TokenAddress,
				CreatorAddress: CreatorAddress,
				Name:           fmt.Sprintf("Test Token %d", i+1),
				Symbol:         fmt.Sprintf("TEST%d", i+1),
			}
		}

		all := append([]EventOption{
			EventWithPayload(topic, payload),
			EventWithBlock(int64(12345678 + i)),
			EventWithTxHash(generateTxHash(i)),
		}, opts...)

		events[i] = CreateTestEvent(all...)
	}
	return events
}

func generateTxHash(index int) string {
	hash := "0x"
	for i := 0; i < 64; i++ {
		hash += string(rune('a' + (index+i)%6))
	}
	return hash
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
