package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/config"
	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/scanapi"
)

// LogFetcher is what the driver loop needs from the fetch layer
type LogFetcher interface {
	// HeadBlock returns the current chain head height
	HeadBlock(ctx context.Context) (int64, error)

	// FetchRange fetches and decodes events for an inclusive block
	// range across every watched topic, globally ordered
	FetchRange(ctx context.Context, fromBlock, toBlock int64) ([]entities.LedgerEvent, error)
}

// Ensure the scan-API fetcher satisfies the contract
var _ LogFetcher = (*scanapi.Fetcher)(nil)

// SyncService drives the sync pipeline: one cycle fetches a block
// range, writes the event ledger, projects, then advances the cursor.
// The cursor only moves after a cycle fully succeeds, so a failed
// cycle retries the identical range and idempotent upserts downstream
// make the retry safe.
type SyncService struct {
	fetcher    LogFetcher
	eventRepo  repositories.EventRepository
	projector  *Projector
	cursorRepo repositories.CursorRepository
	cfg        config.IndexerConfig
	logger     *zap.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewSyncService creates a new sync driver
func NewSyncService(
	fetcher LogFetcher,
	eventRepo repositories.EventRepository,
	projector *Projector,
	cursorRepo repositories.CursorRepository,
	cfg config.IndexerConfig,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		fetcher:    fetcher,
		eventRepo:  eventRepo,
		projector:  projector,
		cursorRepo: cursorRepo,
		cfg:        cfg,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the sync loop
func (s *SyncService) Start(ctx context.Context) {
	s.logger.Info("Starting sync service",
		zap.Int64("chain_id", s.cfg.ChainID),
		zap.Duration("cycle_interval", s.cfg.CycleInterval),
		zap.Int64("confirmations", s.cfg.Confirmations),
	)

	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop gracefully stops the sync loop. The stop signal is checked
// between cycles; an in-flight cycle completes first.
func (s *SyncService) Stop() {
	s.logger.Info("Stopping sync service")
	close(s.stopCh)
	s.wg.Wait()
}

// runLoop runs cycles on a fixed cadence until stopped
func (s *SyncService) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CycleInterval)
	defer ticker.Stop()

	// Run immediately on start
	s.runCycleLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runCycleLogged(ctx)
		}
	}
}

// runCycleLogged absorbs cycle errors at the loop boundary: the
// cursor is untouched, the error is logged, and the same range is
// retried after the delay.
func (s *SyncService) runCycleLogged(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.cfg.CycleTimeout)
	defer cancel()

	if err := s.RunCycle(cycleCtx); err != nil {
		cycleErrorsTotal.Inc()
		if errors.Is(err, scanapi.ErrDecode) {
			s.logger.Error("Sync cycle hit a schema decode failure; the event registry needs updating",
				zap.Error(err),
			)
			return
		}
		s.logger.Warn("Sync cycle failed, retrying same range next tick",
			zap.Error(err),
		)
	}
}

// RunCycle executes one full sync cycle. Any error leaves the cursor
// where it was.
func (s *SyncService) RunCycle(ctx context.Context) error {
	start := time.Now()
	cyclesTotal.Inc()

	fromBlock, step, err := s.cursorRepo.GetCursor(ctx, s.cfg.ChainID)
	if err != nil {
		return fmt.Errorf("failed to read cursor: %w", err)
	}

	head, err := s.fetcher.HeadBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain head: %w", err)
	}

	// Withhold a confirmation lag to reduce exposure to reorgs.
	// Deeper reorgs are a documented limitation, not handled here.
	toBlock := head - s.cfg.Confirmations
	if fromBlock+step < toBlock {
		toBlock = fromBlock + step
	}

	if toBlock < fromBlock {
		s.logger.Debug("Already up to date",
			zap.Int64("from_block", fromBlock),
			zap.Int64("head", head),
		)
		return nil
	}

	events, err := s.fetcher.FetchRange(ctx, fromBlock, toBlock)
	if err != nil {
		return err
	}

	ledgered, err := s.eventRepo.UpsertEvents(ctx, events)
	if err != nil {
		return fmt.Errorf("failed to ledger events: %w", err)
	}
	eventsLedgeredTotal.Add(float64(ledgered))

	handled, err := s.projector.Drain(ctx)
	if err != nil {
		return err
	}

	if err := s.cursorRepo.AdvanceCursor(ctx, s.cfg.ChainID, toBlock+1); err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	lastSyncedBlock.Set(float64(toBlock))
	cycleDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("Sync cycle completed",
		zap.Int64("from_block", fromBlock),
		zap.Int64("to_block", toBlock),
		zap.Int("ledgered", ledgered),
		zap.Int("handled", handled),
		zap.Duration("took", time.Since(start)),
	)

	return nil
}
