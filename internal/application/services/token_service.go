package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/domain/repositories"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/cache"
)

// TokenService provides business logic for token queries
type TokenService struct {
	tokenRepo repositories.TokenRepository
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(
	tokenRepo repositories.TokenRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		cache:     cache,
		logger:    logger,
	}
}

// TokenDTO is the API representation of a token
type TokenDTO struct {
	Address        string  `json:"address"`
	CreateEvent    int64   `json:"create_event"`
	CreatorAddress string  `json:"creator_address"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	TotalSupply    string  `json:"total_supply"`
	IsGraduate     bool    `json:"is_graduate"`
	PoolAddress    *string `json:"pool_address"`
	LPPositionID   *string `json:"lp_position_id"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// TokenListResponse is the API response for token list queries
type TokenListResponse struct {
	Data       []TokenDTO         `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// TokenResponse is the API response for single token queries
type TokenResponse struct {
	Data TokenDTO `json:"data"`
}

// PaginationResponse contains pagination metadata
type PaginationResponse struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// GetAllTokens retrieves tokens with pagination and sorting
func (s *TokenService) GetAllTokens(ctx context.Context, limit, offset int, sortBy, sortOrder string) (*TokenListResponse, error) {
	cacheKey := fmt.Sprintf("tokens:%d:%d:%s:%s", limit, offset, sortBy, sortOrder)

	if s.cache != nil {
		var cached TokenListResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Cache read failed", zap.Error(err))
		}
	}

	tokens, total, err := s.tokenRepo.GetAllPaginated(ctx, limit, offset, sortBy, sortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	response := &TokenListResponse{
		Data: make([]TokenDTO, len(tokens)),
		Pagination: PaginationResponse{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	}
	for i, token := range tokens {
		response.Data[i] = toTokenDTO(token)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Cache write failed", zap.Error(err))
		}
	}

	return response, nil
}

// GetByAddress retrieves a single token, nil if absent
func (s *TokenService) GetByAddress(ctx context.Context, address string) (*TokenResponse, error) {
	token, err := s.tokenRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if token == nil {
		return nil, nil
	}

	return &TokenResponse{Data: toTokenDTO(token)}, nil
}

func toTokenDTO(token *entities.Token) TokenDTO {
	return TokenDTO{
		Address:        token.Address,
		CreateEvent:    token.CreateEvent,
		CreatorAddress: token.CreatorAddress,
		Name:           token.Name,
		Symbol:         token.Symbol,
		TotalSupply:    token.TotalSupply,
		IsGraduate:     token.IsGraduate,
		PoolAddress:    token.PoolAddress,
		LPPositionID:   token.LPPositionID,
		CreatedAt:      token.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      token.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
