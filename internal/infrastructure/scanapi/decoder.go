package scanapi

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// ErrDecode marks a log that matched a watched topic but failed to
// decode against its registered schema. This is fatal for the cycle:
// it means the schema registry is out of date, not that the network
// hiccuped.
var ErrDecode = errors.New("event decode failed")

// Event signatures emitted by the launch factory contract
var (
	sigTokenCreated    = crypto.Keccak256Hash([]byte("TokenCreated(address,address,string,string)"))
	sigCurveTransfer   = crypto.Keccak256Hash([]byte("CurveTransfer(address,address,address,uint256,uint256,uint256,uint256)"))
	sigTokenBuy        = crypto.Keccak256Hash([]byte("TokenBuy(address,address,address,uint256,uint256,uint256,uint256,uint256,bool)"))
	sigTokenSell       = crypto.Keccak256Hash([]byte("TokenSell(address,address,address,uint256,uint256,uint256,uint256,uint256,bool)"))
	sigMarketGraduated = crypto.Keccak256Hash([]byte("MarketGraduated(address,address,uint256)"))
)

func mustType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	typeAddress = mustType("address")
	typeUint256 = mustType("uint256")
	typeString  = mustType("string")
	typeBool    = mustType("bool")
)

// eventSchema binds a topic0 hash to a logical topic, the ABI layout
// of the log's data section, and a payload builder.
type eventSchema struct {
	topic entities.Topic

	// dataArgs describes the non-indexed parameters carried in data
	dataArgs abi.Arguments

	// minTopics is the expected topic count including topic0
	minTopics int

	build func(topics []common.Hash, values []interface{}) (entities.EventPayload, error)
}

var schemaRegistry = map[common.Hash]*eventSchema{
	sigTokenCreated: {
		topic:     entities.TopicTokenCreated,
		minTopics: 3,
		dataArgs: abi.Arguments{
			{Name: "name", Type: typeString},
			{Name: "symbol", Type: typeString},
		},
		build: buildTokenCreated,
	},
	sigCurveTransfer: {
		topic:     entities.TopicTransfer,
		minTopics: 4,
		dataArgs: abi.Arguments{
			{Name: "amount", Type: typeUint256},
			{Name: "fromTokenBalance", Type: typeUint256},
			{Name: "toTokenBalance", Type: typeUint256},
			{Name: "totalSupply", Type: typeUint256},
		},
		build: buildTransfer,
	},
	sigTokenBuy: {
		topic:     entities.TopicBuy,
		minTopics: 3,
		dataArgs:  tradeDataArgs(),
		build:     buildTrade,
	},
	sigTokenSell: {
		topic:     entities.TopicSell,
		minTopics: 3,
		dataArgs:  tradeDataArgs(),
		build:     buildTrade,
	},
	sigMarketGraduated: {
		topic:     entities.TopicMarketGraduated,
		minTopics: 2,
		dataArgs: abi.Arguments{
			{Name: "poolAddress", Type: typeAddress},
			{Name: "lpPositionId", Type: typeUint256},
		},
		build: buildMarketGraduated,
	},
}

// Buy and sell logs share one data layout; only the topic0 and the
// trader's role differ.
func tradeDataArgs() abi.Arguments {
	return abi.Arguments{
		{Name: "recipient", Type: typeAddress},
		{Name: "trueEth", Type: typeUint256},
		{Name: "trueOrderSize", Type: typeUint256},
		{Name: "fee", Type: typeUint256},
		{Name: "traderBalance", Type: typeUint256},
		{Name: "totalSupply", Type: typeUint256},
		{Name: "isGraduate", Type: typeBool},
	}
}

// topicSignatures maps logical topics back to their topic0 hashes for
// building filter queries
var topicSignatures = map[entities.Topic]common.Hash{
	entities.TopicTokenCreated:    sigTokenCreated,
	entities.TopicTransfer:        sigCurveTransfer,
	entities.TopicBuy:             sigTokenBuy,
	entities.TopicSell:            sigTokenSell,
	entities.TopicMarketGraduated: sigMarketGraduated,
}

// SignatureFor returns the topic0 hash for a logical topic
func SignatureFor(topic entities.Topic) (common.Hash, error) {
	sig, ok := topicSignatures[topic]
	if !ok {
		return common.Hash{}, fmt.Errorf("no signature registered for topic %q", topic)
	}
	return sig, nil
}

// DecodeLog decodes one raw log against the schema registered for its
// topic0 and returns a typed ledger event with the payload both
// decoded and serialized.
func DecodeLog(raw RawLog) (*entities.LedgerEvent, error) {
	if len(raw.Topics) == 0 {
		return nil, fmt.Errorf("%w: log has no topics", ErrDecode)
	}

	topics := make([]common.Hash, len(raw.Topics))
	for i, t := range raw.Topics {
		topics[i] = common.HexToHash(t)
	}

	schema, ok := schemaRegistry[topics[0]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown topic0 %s", ErrDecode, topics[0].Hex())
	}

	if len(topics) < schema.minTopics {
		return nil, fmt.Errorf("%w: %s log has %d topics, want %d",
			ErrDecode, schema.topic, len(topics), schema.minTopics)
	}

	values, err := schema.dataArgs.Unpack(common.FromHex(raw.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrDecode, schema.topic, err)
	}

	payload, err := schema.build(topics, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, schema.topic, err)
	}

	block, err := parseHexUint(raw.Block)
	if err != nil {
		return nil, fmt.Errorf("%w: block number %q", ErrDecode, raw.Block)
	}

	txIndex, err := parseHexUint(raw.TxIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: tx index %q", ErrDecode, raw.TxIndex)
	}

	ts, err := parseHexUint(raw.TimeSt)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q", ErrDecode, raw.TimeSt)
	}

	event := &entities.LedgerEvent{
		Block:           block,
		ContractAddress: strings.ToLower(raw.Address),
		TxHash:          strings.ToLower(raw.TxHash),
		TxIndex:         txIndex,
		Timestamp:       time.Unix(ts, 0).UTC(),
		Topic:           schema.topic,
		Status:          entities.StatusUnhandled,
		Payload:         payload,
	}

	if err := event.EncodePayload(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return event, nil
}

func buildTokenCreated(topics []common.Hash, values []interface{}) (entities.EventPayload, error) {
	name, err := asString(values, 0)
	if err != nil {
		return nil, err
	}
	symbol, err := asString(values, 1)
	if err != nil {
		return nil, err
	}

	return &entities.TokenCreatedPayload{
		TokenAddress:   topicAddress(topics[1]),
		CreatorAddress: topicAddress(topics[2]),
		Name:           name,
		Symbol:         symbol,
	}, nil
}

func buildTransfer(topics []common.Hash, values []interface{}) (entities.EventPayload, error) {
	amount, err := asBig(values, 0)
	if err != nil {
		return nil, err
	}
	fromBalance, err := asBig(values, 1)
	if err != nil {
		return nil, err
	}
	toBalance, err := asBig(values, 2)
	if err != nil {
		return nil, err
	}
	totalSupply, err := asBig(values, 3)
	if err != nil {
		return nil, err
	}

	return &entities.TransferPayload{
		TokenAddress:     topicAddress(topics[1]),
		FromAddress:      topicAddress(topics[2]),
		ToAddress:        topicAddress(topics[3]),
		Amount:           amount.String(),
		FromTokenBalance: fromBalance.String(),
		ToTokenBalance:   toBalance.String(),
		TotalSupply:      totalSupply.String(),
	}, nil
}

func buildTrade(topics []common.Hash, values []interface{}) (entities.EventPayload, error) {
	recipient, err := asAddress(values, 0)
	if err != nil {
		return nil, err
	}
	trueEth, err := asBig(values, 1)
	if err != nil {
		return nil, err
	}
	trueOrderSize, err := asBig(values, 2)
	if err != nil {
		return nil, err
	}
	fee, err := asBig(values, 3)
	if err != nil {
		return nil, err
	}
	traderBalance, err := asBig(values, 4)
	if err != nil {
		return nil, err
	}
	totalSupply, err := asBig(values, 5)
	if err != nil {
		return nil, err
	}
	isGraduate, err := asBool(values, 6)
	if err != nil {
		return nil, err
	}

	return &entities.TradePayload{
		TokenAddress:  topicAddress(topics[1]),
		TraderAddress: topicAddress(topics[2]),
		Recipient:     strings.ToLower(recipient.Hex()),
		TrueEth:       trueEth.String(),
		TrueOrderSize: trueOrderSize.String(),
		Fee:           fee.String(),
		TraderBalance: traderBalance.String(),
		TotalSupply:   totalSupply.String(),
		IsGraduate:    isGraduate,
	}, nil
}

func buildMarketGraduated(topics []common.Hash, values []interface{}) (entities.EventPayload, error) {
	pool, err := asAddress(values, 0)
	if err != nil {
		return nil, err
	}
	lpPositionID, err := asBig(values, 1)
	if err != nil {
		return nil, err
	}

	return &entities.MarketGraduatedPayload{
		TokenAddress: topicAddress(topics[1]),
		PoolAddress:  strings.ToLower(pool.Hex()),
		LPPositionID: lpPositionID.String(),
	}, nil
}

// topicAddress extracts a padded address from an indexed topic
func topicAddress(topic common.Hash) string {
	return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex())
}

func asBig(values []interface{}, i int) (*big.Int, error) {
	if i >= len(values) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	v, ok := values[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("argument %d is %T, want *big.Int", i, values[i])
	}
	return v, nil
}

func asAddress(values []interface{}, i int) (common.Address, error) {
	if i >= len(values) {
		return common.Address{}, fmt.Errorf("missing argument %d", i)
	}
	v, ok := values[i].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("argument %d is %T, want address", i, values[i])
	}
	return v, nil
}

func asString(values []interface{}, i int) (string, error) {
	if i >= len(values) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	v, ok := values[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d is %T, want string", i, values[i])
	}
	return v, nil
}

func asBool(values []interface{}, i int) (bool, error) {
	if i >= len(values) {
		return false, fmt.Errorf("missing argument %d", i)
	}
	v, ok := values[i].(bool)
	if !ok {
		return false, fmt.Errorf("argument %d is %T, want bool", i, values[i])
	}
	return v, nil
}
