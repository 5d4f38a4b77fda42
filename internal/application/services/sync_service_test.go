package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/config"
	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/testutil"
)

type syncFixture struct {
	fetcher      *testutil.MockFetcher
	eventRepo    *testutil.MockEventRepository
	tokenRepo    *testutil.MockTokenRepository
	tradeRepo    *testutil.MockTradeRepository
	transferRepo *testutil.MockTransferRepository
	cursorRepo   *testutil.MockCursorRepository
	service      *SyncService
}

func newSyncFixture(head, fromBlock, step int64) *syncFixture {
	f := &syncFixture{
		fetcher:      testutil.NewMockFetcher(head),
		eventRepo:    testutil.NewMockEventRepository(),
		tokenRepo:    testutil.NewMockTokenRepository(),
		tradeRepo:    testutil.NewMockTradeRepository(),
		transferRepo: testutil.NewMockTransferRepository(),
		cursorRepo:   testutil.NewMockCursorRepository(fromBlock, step),
	}

	projector := NewProjector(f.eventRepo, f.tokenRepo, f.tradeRepo, f.transferRepo, 100, zap.NewNop())
	f.service = NewSyncService(f.fetcher, f.eventRepo, projector, f.cursorRepo, config.IndexerConfig{
		ChainID:       8453,
		CycleInterval: time.Hour,
		CycleTimeout:  time.Minute,
		Confirmations: 20,
	}, zap.NewNop())

	return f
}

func TestSyncService_RunCycle_Success(t *testing.T) {
	f := newSyncFixture(10020, 12345670, 1000)

	f.fetcher.Events = []entities.LedgerEvent{
		testutil.CreateTestEvent(),
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicBuy, testutil.DefaultTradePayload()),
			testutil.EventWithBlock(12345679),
			testutil.EventWithTxHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		),
	}
	// Head must not clamp the range for this case
	f.fetcher.Head = 12400000

	if err := f.service.RunCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// toBlock = from + step, cursor moves to toBlock + 1
	if f.cursorRepo.FromBlock != 12345670+1000+1 {
		t.Errorf("cursor mismatch: expected %d, got %d", 12345670+1000+1, f.cursorRepo.FromBlock)
	}

	// Both events ledgered and projected in the same cycle
	if len(f.eventRepo.Events()) != 2 {
		t.Errorf("expected 2 ledgered events, got %d", len(f.eventRepo.Events()))
	}
	if len(f.tradeRepo.Trades()) != 1 {
		t.Errorf("expected 1 projected trade, got %d", len(f.tradeRepo.Trades()))
	}
}

func TestSyncService_RunCycle_ClampsToHead(t *testing.T) {
	f := newSyncFixture(10000, 9900, 5000)

	if err := f.service.RunCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// head - confirmations = 9980 < from + step
	var fetchCall *testutil.MockCall
	for i := range f.fetcher.Calls {
		if f.fetcher.Calls[i].Method == "FetchRange" {
			fetchCall = &f.fetcher.Calls[i]
		}
	}
	if fetchCall == nil {
		t.Fatal("FetchRange was not called")
	}
	if got := fetchCall.Args[1].(int64); got != 9980 {
		t.Errorf("toBlock should clamp to head-confirmations: got %d", got)
	}
	if f.cursorRepo.FromBlock != 9981 {
		t.Errorf("cursor mismatch: expected 9981, got %d", f.cursorRepo.FromBlock)
	}
}

func TestSyncService_RunCycle_UpToDate(t *testing.T) {
	f := newSyncFixture(10010, 10000, 5000)

	// head - confirmations = 9990 is behind the cursor
	if err := f.service.RunCycle(context.Background()); err != nil {
		t.Fatalf("up to date is not an error: %v", err)
	}

	for _, call := range f.fetcher.Calls {
		if call.Method == "FetchRange" {
			t.Error("FetchRange should not run when up to date")
		}
	}
	for _, call := range f.cursorRepo.Calls {
		if call.Method == "AdvanceCursor" {
			t.Error("cursor must not move when up to date")
		}
	}
}

func TestSyncService_RunCycle_FetchFailureLeavesCursor(t *testing.T) {
	f := newSyncFixture(12400000, 100, 1000)

	f.fetcher.FetchRangeFunc = func(ctx context.Context, fromBlock, toBlock int64) ([]entities.LedgerEvent, error) {
		return nil, errors.New("api down")
	}

	if err := f.service.RunCycle(context.Background()); err == nil {
		t.Fatal("expected fetch error to surface")
	}

	if f.cursorRepo.FromBlock != 100 {
		t.Errorf("cursor must not move on fetch failure: %d", f.cursorRepo.FromBlock)
	}
}

func TestSyncService_RunCycle_LedgerFailureLeavesCursor(t *testing.T) {
	f := newSyncFixture(12400000, 100, 1000)

	f.eventRepo.UpsertEventsFunc = func(ctx context.Context, events []entities.LedgerEvent) (int, error) {
		return 0, errors.New("db down")
	}

	if err := f.service.RunCycle(context.Background()); err == nil {
		t.Fatal("expected ledger error to surface")
	}
	if f.cursorRepo.FromBlock != 100 {
		t.Errorf("cursor must not move on ledger failure: %d", f.cursorRepo.FromBlock)
	}
}

func TestSyncService_RunCycle_ProjectionFailureLeavesCursor(t *testing.T) {
	f := newSyncFixture(12400000, 100, 1000)

	f.eventRepo.AddEvents(testutil.CreateTestEvent())
	f.tokenRepo.UpsertFunc = func(ctx context.Context, token *entities.Token) error {
		return errors.New("db down")
	}

	if err := f.service.RunCycle(context.Background()); err == nil {
		t.Fatal("expected projection error to surface")
	}
	if f.cursorRepo.FromBlock != 100 {
		t.Errorf("cursor must not move on projection failure: %d", f.cursorRepo.FromBlock)
	}
}

func TestSyncService_RunCycle_RetryAfterFailureIsIdempotent(t *testing.T) {
	f := newSyncFixture(12400000, 12345670, 1000)

	f.fetcher.Events = []entities.LedgerEvent{
		testutil.CreateTestEvent(),
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicBuy, testutil.DefaultTradePayload()),
			testutil.EventWithBlock(12345679),
			testutil.EventWithTxHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		),
	}

	// First cycle fails at the very end, after ledgering and projecting
	advanceErr := errors.New("redis down")
	f.cursorRepo.AdvanceCursorFunc = func(ctx context.Context, chainID int64, newFromBlock int64) error {
		return advanceErr
	}

	if err := f.service.RunCycle(context.Background()); err == nil {
		t.Fatal("expected advance failure to surface")
	}

	// Retry of the identical range succeeds and changes nothing
	f.cursorRepo.AdvanceCursorFunc = nil
	if err := f.service.RunCycle(context.Background()); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}

	if len(f.eventRepo.Events()) != 2 {
		t.Errorf("retry must not duplicate ledger rows: got %d", len(f.eventRepo.Events()))
	}
	if len(f.tradeRepo.Trades()) != 1 {
		t.Errorf("retry must not duplicate trades: got %d", len(f.tradeRepo.Trades()))
	}
	if f.cursorRepo.FromBlock != 12345670+1000+1 {
		t.Errorf("cursor mismatch after retry: %d", f.cursorRepo.FromBlock)
	}
}

func TestSyncService_StartStop(t *testing.T) {
	f := newSyncFixture(12400000, 100, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.service.Start(ctx)

	// The first cycle runs immediately on start
	deadline := time.After(2 * time.Second)
	for {
		fromBlock, _, _ := f.cursorRepo.GetCursor(ctx, 8453)
		if fromBlock > 100 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first cycle did not complete")
		case <-time.After(5 * time.Millisecond):
		}
	}

	f.service.Stop()
}
