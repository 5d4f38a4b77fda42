package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// Projector drains unhandled ledger events in id order and applies
// them to the derived store. Each event moves Unhandled -> Handled
// exactly once; there is no other transition. On a store error the
// drain stops with the offending event left Unhandled, so the next
// cycle retries it.
type Projector struct {
	eventRepo    repositories.EventRepository
	tokenRepo    repositories.TokenRepository
	tradeRepo    repositories.TradeRepository
	transferRepo repositories.TransferRepository
	batchSize    int
	logger       *zap.Logger
}

// NewProjector creates a new projection engine
func NewProjector(
	eventRepo repositories.EventRepository,
	tokenRepo repositories.TokenRepository,
	tradeRepo repositories.TradeRepository,
	transferRepo repositories.TransferRepository,
	batchSize int,
	logger *zap.Logger,
) *Projector {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Projector{
		eventRepo:    eventRepo,
		tokenRepo:    tokenRepo,
		tradeRepo:    tradeRepo,
		transferRepo: transferRepo,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Drain applies all unhandled events in ascending id order and
// returns how many were marked handled. The token existence cache is
// scoped to this call and discarded when it returns.
func (p *Projector) Drain(ctx context.Context) (int, error) {
	cache := newTokenCache(p.tokenRepo)
	handled := 0

	for {
		events, err := p.eventRepo.ListUnhandled(ctx, p.batchSize)
		if err != nil {
			return handled, fmt.Errorf("failed to list unhandled events: %w", err)
		}
		if len(events) == 0 {
			return handled, nil
		}

		for i := range events {
			event := &events[i]

			if err := p.apply(ctx, cache, event); err != nil {
				return handled, fmt.Errorf("failed to apply event %d (%s): %w", event.ID, event.Topic, err)
			}

			if err := p.eventRepo.MarkHandled(ctx, event.ID); err != nil {
				return handled, fmt.Errorf("failed to mark event %d handled: %w", event.ID, err)
			}

			eventsHandledTotal.Inc()
			handled++
		}
	}
}

// apply dispatches one event to the handler for its topic. The switch
// is exhaustive over the topic enum; an unrecognized topic is an
// error, never a silent no-op.
func (p *Projector) apply(ctx context.Context, cache *tokenCache, event *entities.LedgerEvent) error {
	switch event.Topic {
	case entities.TopicTokenCreated:
		return p.applyTokenCreated(ctx, cache, event)
	case entities.TopicTransfer:
		return p.applyTransfer(ctx, cache, event)
	case entities.TopicBuy:
		return p.applyTrade(ctx, cache, event, entities.SideBuy)
	case entities.TopicSell:
		return p.applyTrade(ctx, cache, event, entities.SideSell)
	case entities.TopicMarketGraduated:
		return p.applyGraduation(ctx, cache, event)
	default:
		return fmt.Errorf("no handler for topic %q", event.Topic)
	}
}

func (p *Projector) applyTokenCreated(ctx context.Context, cache *tokenCache, event *entities.LedgerEvent) error {
	payload, ok := event.Payload.(*entities.TokenCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	token := &entities.Token{
		Address:        payload.TokenAddress,
		CreateEvent:    event.ID,
		CreatorAddress: payload.CreatorAddress,
		Name:           payload.Name,
		Symbol:         payload.Symbol,
		TotalSupply:    "0",
		CreatedAt:      event.Timestamp,
	}

	if err := p.tokenRepo.Upsert(ctx, token); err != nil {
		return err
	}

	cache.Add(payload.TokenAddress)

	p.logger.Info("Token created",
		zap.String("address", payload.TokenAddress),
		zap.String("symbol", payload.Symbol),
		zap.Int64("event", event.ID),
	)

	return nil
}

func (p *Projector) applyTransfer(ctx context.Context, cache *tokenCache, event *entities.LedgerEvent) error {
	payload, ok := event.Payload.(*entities.TransferPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	exists, err := cache.Has(ctx, payload.TokenAddress)
	if err != nil {
		return err
	}
	if !exists {
		p.skip(event)
		return nil
	}

	transfer := &entities.Transfer{
		Event:            event.ID,
		TokenAddress:     payload.TokenAddress,
		FromAddress:      payload.FromAddress,
		ToAddress:        payload.ToAddress,
		Amount:           payload.Amount,
		FromTokenBalance: payload.FromTokenBalance,
		ToTokenBalance:   payload.ToTokenBalance,
		TotalSupply:      payload.TotalSupply,
		Timestamp:        event.Timestamp,
	}

	return p.transferRepo.Upsert(ctx, transfer)
}

// applyTrade handles buy and sell events; the two are mirror images
// and share this one implementation, parameterized by side.
func (p *Projector) applyTrade(ctx context.Context, cache *tokenCache, event *entities.LedgerEvent, side entities.TradeSide) error {
	payload, ok := event.Payload.(*entities.TradePayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	exists, err := cache.Has(ctx, payload.TokenAddress)
	if err != nil {
		return err
	}
	if !exists {
		p.skip(event)
		return nil
	}

	trade := &entities.Trade{
		Event:         event.ID,
		TokenAddress:  payload.TokenAddress,
		FromAddress:   payload.TraderAddress,
		Recipient:     payload.Recipient,
		Type:          side,
		TrueEth:       payload.TrueEth,
		TrueOrderSize: payload.TrueOrderSize,
		TotalSupply:   payload.TotalSupply,
		Fee:           payload.Fee,
		IsGraduate:    payload.IsGraduate,
		Timestamp:     event.Timestamp,
	}

	if err := p.tradeRepo.Upsert(ctx, trade); err != nil {
		return err
	}

	return p.tokenRepo.UpdateSupply(ctx, payload.TokenAddress, payload.TotalSupply)
}

func (p *Projector) applyGraduation(ctx context.Context, cache *tokenCache, event *entities.LedgerEvent) error {
	payload, ok := event.Payload.(*entities.MarketGraduatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	exists, err := cache.Has(ctx, payload.TokenAddress)
	if err != nil {
		return err
	}
	if !exists {
		p.skip(event)
		return nil
	}

	p.logger.Info("Token graduated",
		zap.String("address", payload.TokenAddress),
		zap.String("pool", payload.PoolAddress),
	)

	return p.tokenRepo.SetGraduated(ctx, payload.TokenAddress, payload.PoolAddress, payload.LPPositionID)
}

// skip records an event whose owning token is not in the derived
// store. The event still ends Handled: its creation event was either
// filtered out upstream or is not of interest, so there is nothing to
// attach the row to, now or later.
func (p *Projector) skip(event *entities.LedgerEvent) {
	eventsSkippedTotal.Inc()
	p.logger.Debug("Skipping event for unknown token",
		zap.Int64("event", event.ID),
		zap.String("topic", string(event.Topic)),
		zap.String("token", event.Payload.Token()),
	)
}
