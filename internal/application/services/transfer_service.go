package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
)

// TransferService provides business logic for transfer queries
type TransferService struct {
	transferRepo repositories.TransferRepository
	logger       *zap.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(transferRepo repositories.TransferRepository, logger *zap.Logger) *TransferService {
	return &TransferService{
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// TransferDTO is the API representation of a transfer
type TransferDTO struct {
	Event            int64  `json:"event"`
	TokenAddress     string `json:"token_address"`
	FromAddress      string `json:"from_address"`
	ToAddress        string `json:"to_address"`
	Amount           string `json:"amount"`
	FromTokenBalance string `json:"from_token_balance"`
	ToTokenBalance   string `json:"to_token_balance"`
	TotalSupply      string `json:"total_supply"`
	Timestamp        string `json:"timestamp"`
}

// TransferListResponse is the API response for transfer list queries
type TransferListResponse struct {
	Data       []TransferDTO      `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// GetTransfers retrieves transfers matching the filter
func (s *TransferService) GetTransfers(ctx context.Context, filter entities.TransferFilter) (*TransferListResponse, error) {
	transfers, err := s.transferRepo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}

	total, err := s.transferRepo.GetCount(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transfers: %w", err)
	}

	response := &TransferListResponse{
		Data: make([]TransferDTO, len(transfers)),
		Pagination: PaginationResponse{
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	}
	for i, t := range transfers {
		response.Data[i] = TransferDTO{
			Event:            t.Event,
			TokenAddress:     t.TokenAddress,
			FromAddress:      t.FromAddress,
			ToAddress:        t.ToAddress,
			Amount:           t.Amount,
			FromTokenBalance: t.FromTokenBalance,
			ToTokenBalance:   t.ToTokenBalance,
			TotalSupply:      t.TotalSupply,
			Timestamp:        t.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	return response, nil
}
