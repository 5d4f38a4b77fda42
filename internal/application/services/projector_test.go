package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/testutil"
)

func newTestProjector(
	eventRepo *testutil.MockEventRepository,
	tokenRepo *testutil.MockTokenRepository,
	tradeRepo *testutil.MockTradeRepository,
	transferRepo *testutil.MockTransferRepository,
) *Projector {
	return NewProjector(eventRepo, tokenRepo, tradeRepo, transferRepo, 100, zap.NewNop())
}

func TestProjector_Drain_TokenCreatedThenBuy(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	eventRepo.AddEvents(
		testutil.CreateTestEvent(),
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicBuy, testutil.DefaultTradePayload()),
			testutil.EventWithBlock(12345679),
			testutil.EventWithTxHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		),
	)

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	handled, err := projector.Drain(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handled != 2 {
		t.Errorf("expected 2 handled, got %d", handled)
	}

	// Token row exists and points at its creation event
	token, _ := tokenRepo.GetByAddress(context.Background(), testutil.TokenAddress)
	if token == nil {
		t.Fatal("token not created")
	}
	if token.CreateEvent != 1 {
		t.Errorf("CreateEvent mismatch: expected 1, got %d", token.CreateEvent)
	}
	if token.CreatorAddress != testutil.CreatorAddress {
		t.Errorf("CreatorAddress mismatch: %s", token.CreatorAddress)
	}

	// The buy left a trade row and refreshed the cached supply
	trades := tradeRepo.Trades()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Event != 2 {
		t.Errorf("trade keyed by wrong event: %d", trades[0].Event)
	}
	if trades[0].Type != entities.SideBuy {
		t.Errorf("expected buy side, got %d", trades[0].Type)
	}
	if token.TotalSupply != "1000005000000000000000000" {
		t.Errorf("supply not updated: %s", token.TotalSupply)
	}

	// Both events ended handled
	for _, event := range eventRepo.Events() {
		if event.Status != entities.StatusHandled {
			t.Errorf("event %d still unhandled", event.ID)
		}
	}
}

func TestProjector_Drain_SellEvent(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	tokenRepo.AddToken(testutil.CreateTestToken())
	eventRepo.AddEvents(testutil.CreateTestEvent(
		testutil.EventWithPayload(entities.TopicSell, testutil.DefaultTradePayload()),
	))

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	if _, err := projector.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trades := tradeRepo.Trades()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Type != entities.SideSell {
		t.Errorf("expected sell side, got %d", trades[0].Type)
	}
}

func TestProjector_Drain_ReplayCreatesNoDuplicates(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	tokenRepo.AddToken(testutil.CreateTestToken())
	buy := testutil.CreateTestEvent(
		testutil.EventWithPayload(entities.TopicBuy, testutil.DefaultTradePayload()),
	)
	eventRepo.AddEvents(buy)

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	if _, err := projector.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate the event being re-applied, as happens when a later
	// store failure rolled back MarkHandled but not the derived write.
	stored := eventRepo.Events()[0]
	eventRepo.Reset()
	stored.Status = entities.StatusUnhandled
	eventRepo.AddEvents(stored)

	if _, err := projector.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}

	if trades := tradeRepo.Trades(); len(trades) != 1 {
		t.Errorf("replay must not duplicate trades: got %d", len(trades))
	}
}

func TestProjector_Drain_UnknownTokenIsSkipped(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	// No token row exists; derived writes have nothing to attach to
	eventRepo.AddEvents(
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicSell, testutil.DefaultTradePayload()),
		),
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicTransfer, testutil.DefaultTransferPayload()),
			testutil.EventWithTxHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		),
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicMarketGraduated, testutil.DefaultGraduationPayload()),
			testutil.EventWithTxHash("0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"),
		),
	)

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	handled, err := projector.Drain(context.Background())
	if err != nil {
		t.Fatalf("skips must not error: %v", err)
	}
	if handled != 3 {
		t.Errorf("skipped events still count as handled: got %d", handled)
	}

	if len(tradeRepo.Trades()) != 0 {
		t.Error("no trade row should exist for an unknown token")
	}
	if len(transferRepo.Transfers()) != 0 {
		t.Error("no transfer row should exist for an unknown token")
	}
	for _, event := range eventRepo.Events() {
		if event.Status != entities.StatusHandled {
			t.Errorf("skipped event %d must end handled", event.ID)
		}
	}
}

func TestProjector_Drain_TransferProjection(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	tokenRepo.AddToken(testutil.CreateTestToken())
	eventRepo.AddEvents(testutil.CreateTestEvent(
		testutil.EventWithPayload(entities.TopicTransfer, testutil.DefaultTransferPayload()),
	))

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	if _, err := projector.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transfers := transferRepo.Transfers()
	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transfers))
	}
	if transfers[0].FromAddress != testutil.TraderAddress || transfers[0].ToAddress != testutil.OtherAddress {
		t.Errorf("from/to mismatch: %s -> %s", transfers[0].FromAddress, transfers[0].ToAddress)
	}
	if transfers[0].Amount != "1000000000000000000" {
		t.Errorf("amount mismatch: %s", transfers[0].Amount)
	}
}

func TestProjector_Drain_Graduation(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	tokenRepo.AddToken(testutil.CreateTestToken())
	eventRepo.AddEvents(testutil.CreateTestEvent(
		testutil.EventWithPayload(entities.TopicMarketGraduated, testutil.DefaultGraduationPayload()),
	))

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	if _, err := projector.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, _ := tokenRepo.GetByAddress(context.Background(), testutil.TokenAddress)
	if !token.IsGraduate {
		t.Error("token should be marked graduated")
	}
	if token.PoolAddress == nil || *token.PoolAddress != testutil.PoolAddress {
		t.Errorf("pool address not set: %v", token.PoolAddress)
	}
	if token.LPPositionID == nil || *token.LPPositionID != "42" {
		t.Errorf("lp position not set: %v", token.LPPositionID)
	}
}

func TestProjector_Drain_StoreErrorStopsDrain(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	tokenRepo.AddToken(testutil.CreateTestToken())
	eventRepo.AddEvents(
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicBuy, testutil.DefaultTradePayload()),
		),
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicSell, testutil.DefaultTradePayload()),
			testutil.EventWithTxHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		),
	)

	storeErr := errors.New("connection reset")
	tradeRepo.UpsertFunc = func(ctx context.Context, trade *entities.Trade) error {
		return storeErr
	}

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	handled, err := projector.Drain(context.Background())
	if err == nil {
		t.Fatal("expected drain to surface the store error")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("error should wrap the store error: %v", err)
	}
	if handled != 0 {
		t.Errorf("nothing should be handled, got %d", handled)
	}

	// The failing event stays unhandled so the next drain retries it
	for _, event := range eventRepo.Events() {
		if event.Status != entities.StatusUnhandled {
			t.Errorf("event %d must remain unhandled after failure", event.ID)
		}
	}
}

func TestProjector_Drain_AppliesInIDOrder(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	// Creation arrives before the buy in id order, so the buy must
	// find the token even though both drain in the same pass.
	eventRepo.AddEvents(
		testutil.CreateTestEvent(),
		testutil.CreateTestEvent(
			testutil.EventWithPayload(entities.TopicBuy, testutil.DefaultTradePayload()),
			testutil.EventWithTxHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		),
	)

	projector := newTestProjector(eventRepo, tokenRepo, tradeRepo, transferRepo)

	if _, err := projector.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tradeRepo.Trades()) != 1 {
		t.Error("buy should have found the token created earlier in the pass")
	}
}

func TestProjector_Drain_Batching(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	tokenRepo := testutil.NewMockTokenRepository()
	tradeRepo := testutil.NewMockTradeRepository()
	transferRepo := testutil.NewMockTransferRepository()

	tokenRepo.AddToken(testutil.CreateTestToken())
	eventRepo.AddEvents(testutil.CreateEventSequence(5, entities.TopicBuy)...)

	projector := NewProjector(eventRepo, tokenRepo, tradeRepo, transferRepo, 2, zap.NewNop())

	handled, err := projector.Drain(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handled != 5 {
		t.Errorf("expected 5 handled across batches, got %d", handled)
	}
	if len(tradeRepo.Trades()) != 5 {
		t.Errorf("expected 5 trades, got %d", len(tradeRepo.Trades()))
	}
}

func TestProjector_Apply_UnknownTopic(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	projector := newTestProjector(
		eventRepo,
		testutil.NewMockTokenRepository(),
		testutil.NewMockTradeRepository(),
		testutil.NewMockTransferRepository(),
	)

	event := testutil.CreateTestEvent()
	event.Topic = entities.Topic("mystery")

	if err := projector.apply(context.Background(), newTokenCache(testutil.NewMockTokenRepository()), &event); err == nil {
		t.Fatal("unknown topic must be an error, not a silent no-op")
	}
}
