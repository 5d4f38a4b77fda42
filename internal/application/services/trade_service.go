package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// TradeService provides business logic for trade queries
type TradeService struct {
	tradeRepo repositories.TradeRepository
	logger    *zap.Logger
}

// NewTradeService creates a new trade service
func NewTradeService(tradeRepo repositories.TradeRepository, logger *zap.Logger) *TradeService {
	return &TradeService{
		tradeRepo: tradeRepo,
		logger:    logger,
	}
}

// TradeDTO is the API representation of a trade
type TradeDTO struct {
	Event         int64  `json:"event"`
	TokenAddress  string `json:"token_address"`
	FromAddress   string `json:"from_address"`
	Recipient     string `json:"recipient"`
	Type          int16  `json:"type"`
	TrueEth       string `json:"true_eth"`
	TrueOrderSize string `json:"true_order_size"`
	TotalSupply   string `json:"total_supply"`
	Fee           string `json:"fee"`
	IsGraduate    bool   `json:"is_graduate"`
	Timestamp     string `json:"timestamp"`
}

// TradeListResponse is the API response for trade list queries
type TradeListResponse struct {
	Data       []TradeDTO         `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// GetTrades retrieves trades matching the filter
func (s *TradeService) GetTrades(ctx context.Context, filter entities.TradeFilter) (*TradeListResponse, error) {
	trades, err := s.tradeRepo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}

	total, err := s.tradeRepo.GetCount(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count trades: %w", err)
	}

	response := &TradeListResponse{
		Data: make([]TradeDTO, len(trades)),
		Pagination: PaginationResponse{
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	}
	for i, t := range trades {
		response.Data[i] = TradeDTO{
			Event:         t.Event,
			TokenAddress:  t.TokenAddress,
			FromAddress:   t.FromAddress,
			Recipient:     t.Recipient,
			Type:          int16(t.Type),
			TrueEth:       t.TrueEth,
			TrueOrderSize: t.TrueOrderSize,
			TotalSupply:   t.TotalSupply,
			Fee:           t.Fee,
			IsGraduate:    t.IsGraduate,
			Timestamp:     t.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	return response, nil
}
