package scanapi

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ardwiinoo/launch-indexer/internal/config"
	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// Fetcher pulls decoded events for a block range across all watched
// topics. It issues one query per topic; cross-topic ordering is the
// resolver's job (MergeEvents), not the fetcher's.
type Fetcher struct {
	client      *Client
	contract    string
	concurrency int
	logger      *zap.Logger
}

// NewFetcher creates a new log fetcher
func NewFetcher(client *Client, cfg config.IndexerConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:      client,
		contract:    cfg.ContractAddress,
		concurrency: cfg.FetchConcurrency,
		logger:      logger,
	}
}

// HeadBlock returns the current chain head height
func (f *Fetcher) HeadBlock(ctx context.Context) (int64, error) {
	return f.client.HeadBlock(ctx)
}

// FetchRange fetches and decodes events for an inclusive block range
// across every watched topic. The per-topic queries are independent
// and run concurrently; all results are collected before merging so
// ordering stays deterministic per cycle.
func (f *Fetcher) FetchRange(ctx context.Context, fromBlock, toBlock int64) ([]entities.LedgerEvent, error) {
	topics := entities.WatchedTopics()
	lists := make([][]entities.LedgerEvent, len(topics))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, topic := range topics {
		i, topic := i, topic
		g.Go(func() error {
			events, err := f.fetchTopic(gCtx, topic, fromBlock, toBlock)
			if err != nil {
				return err
			}
			lists[i] = events
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := MergeEvents(lists)

	f.logger.Debug("Fetched events",
		zap.Int64("from_block", fromBlock),
		zap.Int64("to_block", toBlock),
		zap.Int("event_count", len(merged)),
	)

	return merged, nil
}

// fetchTopic queries and decodes one topic's logs for the range
func (f *Fetcher) fetchTopic(ctx context.Context, topic entities.Topic, fromBlock, toBlock int64) ([]entities.LedgerEvent, error) {
	sig, err := SignatureFor(topic)
	if err != nil {
		return nil, err
	}

	logs, err := f.client.GetLogs(ctx, f.contract, sig, fromBlock, toBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s logs for blocks %d-%d: %w", topic, fromBlock, toBlock, err)
	}

	events := make([]entities.LedgerEvent, 0, len(logs))
	for _, raw := range logs {
		event, err := DecodeLog(raw)
		if err != nil {
			// Decode failures are not skipped: they indicate the
			// schema registry is out of date and need an operator.
			return nil, err
		}
		events = append(events, *event)
	}

	return events, nil
}

// MergeEvents flattens per-topic event lists covering the same block
// range into the single order the ledger executed them, sorting by
// block*BlockOrderSpan+txIndex. Ties are not expected: txIndex is
// unique within a block.
func MergeEvents(lists [][]entities.LedgerEvent) []entities.LedgerEvent {
	total := 0
	for _, list := range lists {
		total += len(list)
	}

	merged := make([]entities.LedgerEvent, 0, total)
	for _, list := range lists {
		merged = append(merged, list...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OrderKey() < merged[j].OrderKey()
	})

	return merged
}
