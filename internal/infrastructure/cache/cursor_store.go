package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/config"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// Ensure CursorStore implements CursorRepository
var _ repositories.CursorRepository = (*CursorStore)(nil)

// CursorStore persists per-chain sync progress in Redis as
// string-encoded integers under indexer_progress_<chainId> and
// indexer_step_<chainId>.
type CursorStore struct {
	client       *redis.Client
	logger       *zap.Logger
	defaultStart int64
	defaultStep  int64
}

// NewCursorStore creates a Redis-backed cursor store
func NewCursorStore(cfg config.RedisConfig, indexerCfg config.IndexerConfig, logger *zap.Logger) (*CursorStore, error) {
	client, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	return &CursorStore{
		client:       client,
		logger:       logger,
		defaultStart: indexerCfg.StartBlock,
		defaultStep:  indexerCfg.StepSize,
	}, nil
}

// Close closes the Redis connection
func (s *CursorStore) Close() error {
	return s.client.Close()
}

func progressKey(chainID int64) string {
	return fmt.Sprintf("indexer_progress_%d", chainID)
}

func stepKey(chainID int64) string {
	return fmt.Sprintf("indexer_step_%d", chainID)
}

// GetCursor returns the next block to sync and the step size for a
// chain. Missing keys fall back to the configured defaults without
// writing them, so a fresh deployment starts cleanly.
func (s *CursorStore) GetCursor(ctx context.Context, chainID int64) (int64, int64, error) {
	fromBlock, err := s.getInt(ctx, progressKey(chainID), s.defaultStart)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read sync progress: %w", err)
	}

	step, err := s.getInt(ctx, stepKey(chainID), s.defaultStep)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read step size: %w", err)
	}

	return fromBlock, step, nil
}

// AdvanceCursor moves the cursor forward. Advancing to a block at or
// behind the current cursor is refused: the pipeline only ever moves
// forward, and a stale writer must not rewind progress.
func (s *CursorStore) AdvanceCursor(ctx context.Context, chainID int64, newFromBlock int64) error {
	current, err := s.getInt(ctx, progressKey(chainID), s.defaultStart)
	if err != nil {
		return fmt.Errorf("failed to read sync progress: %w", err)
	}

	if newFromBlock <= current {
		s.logger.Warn("Refusing to rewind cursor",
			zap.Int64("chain_id", chainID),
			zap.Int64("current", current),
			zap.Int64("requested", newFromBlock),
		)
		return nil
	}

	value := strconv.FormatInt(newFromBlock, 10)
	if err := s.client.Set(ctx, progressKey(chainID), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	return nil
}

// getInt reads a string-encoded integer key, returning fallback when
// the key does not exist
func (s *CursorStore) getInt(ctx context.Context, key string, fallback int64) (int64, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fallback, nil
		}
		return 0, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor value %q for %s: %w", val, key, err)
	}

	return n, nil
}

// HealthCheck checks if Redis is reachable
func (s *CursorStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
