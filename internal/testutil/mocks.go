package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockEventRepository is an in-memory implementation of EventRepository.
// It reproduces the ledger's dedup and ordering semantics: inserts
// deduplicate on (topic, tx_hash, data) and ListUnhandled returns
// ascending id order.
type MockEventRepository struct {
	mu     sync.RWMutex
	events []entities.LedgerEvent
	nextID int64

	// Function hooks for custom behavior
	UpsertEventsFunc  func(ctx context.Context, events []entities.LedgerEvent) (int, error)
	ListUnhandledFunc func(ctx context.Context, limit int) ([]entities.LedgerEvent, error)
	MarkHandledFunc   func(ctx context.Context, id int64) error

	// Call tracking
	Calls []MockCall
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{
		events: make([]entities.LedgerEvent, 0),
		nextID: 1,
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockEventRepository) UpsertEvents(ctx context.Context, events []entities.LedgerEvent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "UpsertEvents", Args: []interface{}{events}})

	if m.UpsertEventsFunc != nil {
		return m.UpsertEventsFunc(ctx, events)
	}

	for _, event := range events {
		if m.findLocked(event.Topic, event.TxHash, event.Data) != nil {
			continue
		}
		event.ID = m.nextID
		m.nextID++
		m.events = append(m.events, event)
	}

	return len(events), nil
}

func (m *MockEventRepository) ListUnhandled(ctx context.Context, limit int) ([]entities.LedgerEvent, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ListUnhandled", Args: []interface{}{limit}})
	m.mu.Unlock()

	if m.ListUnhandledFunc != nil {
		return m.ListUnhandledFunc(ctx, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.LedgerEvent, 0)
	for _, event := range m.events {
		if event.Status != entities.StatusUnhandled {
			continue
		}
		result = append(result, event)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	if len(result) > limit {
		result = result[:limit]
	}

	for i := range result {
		if err := result[i].DecodePayload(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (m *MockEventRepository) MarkHandled(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "MarkHandled", Args: []interface{}{id}})

	if m.MarkHandledFunc != nil {
		return m.MarkHandledFunc(ctx, id)
	}

	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i].Status = entities.StatusHandled
			return nil
		}
	}
	return errors.New("event not found")
}

func (m *MockEventRepository) findLocked(topic entities.Topic, txHash string, data []byte) *entities.LedgerEvent {
	for i := range m.events {
		e := &m.events[i]
		if e.Topic == topic && e.TxHash == txHash && string(e.Data) == string(data) {
			return e
		}
	}
	return nil
}

// Events returns a copy of everything in the ledger
func (m *MockEventRepository) Events() []entities.LedgerEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.LedgerEvent, len(m.events))
	copy(result, m.events)
	return result
}

// AddEvents seeds events directly, assigning ids
func (m *MockEventRepository) AddEvents(events ...entities.LedgerEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, event := range events {
		event.ID = m.nextID
		m.nextID++
		m.events = append(m.events, event)
	}
}

// Reset clears all stored data and calls
func (m *MockEventRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make([]entities.LedgerEvent, 0)
	m.nextID = 1
	m.Calls = make([]MockCall, 0)
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entities.Token

	// Function hooks
	GetByAddressFunc    func(ctx context.Context, address string) (*entities.Token, error)
	GetAllPaginatedFunc func(ctx context.Context, limit, offset int, sortBy, sortOrder string) ([]*entities.Token, int64, error)
	UpsertFunc          func(ctx context.Context, token *entities.Token) error
	UpdateSupplyFunc    func(ctx context.Context, address, totalSupply string) error
	SetGraduatedFunc    func(ctx context.Context, address, poolAddress, lpPositionID string) error

	Calls []MockCall
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]*entities.Token),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockTokenRepository) GetByAddress(ctx context.Context, address string) (*entities.Token, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByAddress", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if token, ok := m.tokens[address]; ok {
		return token, nil
	}
	return nil, nil
}

func (m *MockTokenRepository) GetAllPaginated(ctx context.Context, limit, offset int, sortBy, sortOrder string) ([]*entities.Token, int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAllPaginated", Args: []interface{}{limit, offset, sortBy, sortOrder}})
	m.mu.Unlock()

	if m.GetAllPaginatedFunc != nil {
		return m.GetAllPaginatedFunc(ctx, limit, offset, sortBy, sortOrder)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.Token, 0, len(m.tokens))
	for _, token := range m.tokens {
		result = append(result, token)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Address < result[j].Address })

	total := int64(len(result))

	// Apply pagination
	start := offset
	if start > len(result) {
		return []*entities.Token{}, total, nil
	}
	end := start + limit
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], total, nil
}

func (m *MockTokenRepository) Upsert(ctx context.Context, token *entities.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{token}})

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, token)
	}

	m.tokens[token.Address] = token
	return nil
}

func (m *MockTokenRepository) UpdateSupply(ctx context.Context, address, totalSupply string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "UpdateSupply", Args: []interface{}{address, totalSupply}})

	if m.UpdateSupplyFunc != nil {
		return m.UpdateSupplyFunc(ctx, address, totalSupply)
	}

	if token, ok := m.tokens[address]; ok {
		token.TotalSupply = totalSupply
	}
	return nil
}

func (m *MockTokenRepository) SetGraduated(ctx context.Context, address, poolAddress, lpPositionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "SetGraduated", Args: []interface{}{address, poolAddress, lpPositionID}})

	if m.SetGraduatedFunc != nil {
		return m.SetGraduatedFunc(ctx, address, poolAddress, lpPositionID)
	}

	if token, ok := m.tokens[address]; ok {
		token.IsGraduate = true
		token.PoolAddress = &poolAddress
		token.LPPositionID = &lpPositionID
	}
	return nil
}

// AddToken adds a token to the mock store
func (m *MockTokenRepository) AddToken(token *entities.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Address] = token
}

// Reset clears all stored data and calls
func (m *MockTokenRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = make(map[string]*entities.Token)
	m.Calls = make([]MockCall, 0)
}

// MockTradeRepository is a mock implementation of TradeRepository.
// Trades are keyed by event id, so replaying an event is a no-op.
type MockTradeRepository struct {
	mu     sync.RWMutex
	trades map[int64]entities.Trade

	// Function hooks
	UpsertFunc      func(ctx context.Context, trade *entities.Trade) error
	GetByFilterFunc func(ctx context.Context, filter entities.TradeFilter) ([]entities.Trade, error)
	GetCountFunc    func(ctx context.Context, filter entities.TradeFilter) (int64, error)

	Calls []MockCall
}

func NewMockTradeRepository() *MockTradeRepository {
	return &MockTradeRepository{
		trades: make(map[int64]entities.Trade),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockTradeRepository) Upsert(ctx context.Context, trade *entities.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{trade}})

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, trade)
	}

	if _, ok := m.trades[trade.Event]; ok {
		return nil
	}
	m.trades[trade.Event] = *trade
	return nil
}

func (m *MockTradeRepository) GetByFilter(ctx context.Context, filter entities.TradeFilter) ([]entities.Trade, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByFilter", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetByFilterFunc != nil {
		return m.GetByFilterFunc(ctx, filter)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Trade, 0)
	for _, t := range m.trades {
		if filter.TokenAddress != nil && t.TokenAddress != *filter.TokenAddress {
			continue
		}
		if filter.Side != nil && t.Type != *filter.Side {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Event < result[j].Event })

	// Apply pagination
	start := filter.Offset
	if start > len(result) {
		return []entities.Trade{}, nil
	}
	end := start + filter.Limit
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (m *MockTradeRepository) GetCount(ctx context.Context, filter entities.TradeFilter) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetCount", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetCountFunc != nil {
		return m.GetCountFunc(ctx, filter)
	}

	all := filter
	all.Limit = 1000000
	all.Offset = 0
	trades, err := m.GetByFilter(ctx, all)
	if err != nil {
		return 0, err
	}
	return int64(len(trades)), nil
}

// Trades returns a copy of all stored trades in event order
func (m *MockTradeRepository) Trades() []entities.Trade {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Trade, 0, len(m.trades))
	for _, t := range m.trades {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Event < result[j].Event })
	return result
}

// Reset clears all stored data and calls
func (m *MockTradeRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = make(map[int64]entities.Trade)
	m.Calls = make([]MockCall, 0)
}

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers map[int64]entities.Transfer

	// Function hooks
	UpsertFunc      func(ctx context.Context, transfer *entities.Transfer) error
	GetByFilterFunc func(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error)
	GetCountFunc    func(ctx context.Context, filter entities.TransferFilter) (int64, error)

	Calls []MockCall
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make(map[int64]entities.Transfer),
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockTransferRepository) Upsert(ctx context.Context, transfer *entities.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{transfer}})

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, transfer)
	}

	if _, ok := m.transfers[transfer.Event]; ok {
		return nil
	}
	m.transfers[transfer.Event] = *transfer
	return nil
}

func (m *MockTransferRepository) GetByFilter(ctx context.Context, filter entities.TransferFilter) ([]entities.Transfer, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByFilter", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetByFilterFunc != nil {
		return m.GetByFilterFunc(ctx, filter)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Transfer, 0)
	for _, t := range m.transfers {
		if filter.TokenAddress != nil && t.TokenAddress != *filter.TokenAddress {
			continue
		}
		if filter.FromAddress != nil && t.FromAddress != *filter.FromAddress {
			continue
		}
		if filter.ToAddress != nil && t.ToAddress != *filter.ToAddress {
			continue
		}
		if filter.Address != nil && t.FromAddress != *filter.Address && t.ToAddress != *filter.Address {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Event < result[j].Event })

	// Apply pagination
	start := filter.Offset
	if start > len(result) {
		return []entities.Transfer{}, nil
	}
	end := start + filter.Limit
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (m *MockTransferRepository) GetCount(ctx context.Context, filter entities.TransferFilter) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetCount", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetCountFunc != nil {
		return m.GetCountFunc(ctx, filter)
	}

	all := filter
	all.Limit = 1000000
	all.Offset = 0
	transfers, err := m.GetByFilter(ctx, all)
	if err != nil {
		return 0, err
	}
	return int64(len(transfers)), nil
}

// Transfers returns a copy of all stored transfers in event order
func (m *MockTransferRepository) Transfers() []entities.Transfer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Transfer, 0, len(m.transfers))
	for _, t := range m.transfers {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Event < result[j].Event })
	return result
}

// Reset clears all stored data and calls
func (m *MockTransferRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = make(map[int64]entities.Transfer)
	m.Calls = make([]MockCall, 0)
}

// MockCursorRepository is a mock implementation of CursorRepository
type MockCursorRepository struct {
	mu        sync.RWMutex
	FromBlock int64
	Step      int64

	// Function hooks
	GetCursorFunc     func(ctx context.Context, chainID int64) (int64, int64, error)
	AdvanceCursorFunc func(ctx context.Context, chainID int64, newFromBlock int64) error

	Calls []MockCall
}

func NewMockCursorRepository(fromBlock, step int64) *MockCursorRepository {
	return &MockCursorRepository{
		FromBlock: fromBlock,
		Step:      step,
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockCursorRepository) GetCursor(ctx context.Context, chainID int64) (int64, int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetCursor", Args: []interface{}{chainID}})
	m.mu.Unlock()

	if m.GetCursorFunc != nil {
		return m.GetCursorFunc(ctx, chainID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.FromBlock, m.Step, nil
}

func (m *MockCursorRepository) AdvanceCursor(ctx context.Context, chainID int64, newFromBlock int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "AdvanceCursor", Args: []interface{}{chainID, newFromBlock}})

	if m.AdvanceCursorFunc != nil {
		return m.AdvanceCursorFunc(ctx, chainID, newFromBlock)
	}

	if newFromBlock > m.FromBlock {
		m.FromBlock = newFromBlock
	}
	return nil
}

// Reset clears call tracking
func (m *MockCursorRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = make([]MockCall, 0)
}

// MockFetcher is a mock log fetcher for driving the sync loop in tests
type MockFetcher struct {
	mu     sync.RWMutex
	Head   int64
	Events []entities.LedgerEvent

	// Function hooks
	HeadBlockFunc  func(ctx context.Context) (int64, error)
	FetchRangeFunc func(ctx context.Context, fromBlock, toBlock int64) ([]entities.LedgerEvent, error)

	Calls []MockCall
}

func NewMockFetcher(head int64) *MockFetcher {
	return &MockFetcher{
		Head:   head,
		Events: make([]entities.LedgerEvent, 0),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockFetcher) HeadBlock(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HeadBlock", Args: nil})
	m.mu.Unlock()

	if m.HeadBlockFunc != nil {
		return m.HeadBlockFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Head, nil
}

func (m *MockFetcher) FetchRange(ctx context.Context, fromBlock, toBlock int64) ([]entities.LedgerEvent, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchRange", Args: []interface{}{fromBlock, toBlock}})
	m.mu.Unlock()

	if m.FetchRangeFunc != nil {
		return m.FetchRangeFunc(ctx, fromBlock, toBlock)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.LedgerEvent, 0)
	for _, event := range m.Events {
		if event.Block >= fromBlock && event.Block <= toBlock {
			result = append(result, event)
		}
	}
	return result, nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
