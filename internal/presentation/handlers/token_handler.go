package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/application/services"
	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// TokenHandler handles HTTP requests for tokens and their trades
type TokenHandler struct {
	tokenService *services.TokenService
	tradeService *services.TradeService
	logger       *zap.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenService *services.TokenService, tradeService *services.TradeService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		tradeService: tradeService,
		logger:       logger,
	}
}

// RegisterRoutes registers the token routes
func (h *TokenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens", h.GetAllTokens)
	r.Get("/tokens/{address}", h.GetByAddress)
	r.Get("/tokens/{address}/trades", h.GetTrades)
}

// GetAllTokens handles GET /api/v1/tokens
func (h *TokenHandler) GetAllTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, offset := parsePagination(r)

	sortBy := "created_timestamp"
	sortOrder := "desc"
	if v := r.URL.Query().Get("sort_by"); v != "" {
		sortBy = v
	}
	if v := strings.ToLower(r.URL.Query().Get("sort_order")); v == "asc" || v == "desc" {
		sortOrder = v
	}

	response, err := h.tokenService.GetAllTokens(ctx, limit, offset, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to get tokens", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get tokens")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetByAddress handles GET /api/v1/tokens/{address}
func (h *TokenHandler) GetByAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	address = strings.ToLower(address)

	response, err := h.tokenService.GetByAddress(ctx, address)
	if err != nil {
		h.logger.Error("Failed to get token", zap.Error(err), zap.String("address", address))
		respondError(w, http.StatusInternalServerError, "Failed to get token")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTrades handles GET /api/v1/tokens/{address}/trades
func (h *TokenHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	address = strings.ToLower(address)

	filter := entities.DefaultTradeFilter()
	filter.TokenAddress = &address
	filter.Limit, filter.Offset = parsePagination(r)

	if v := r.URL.Query().Get("side"); v != "" {
		var side entities.TradeSide
		switch strings.ToLower(v) {
		case "buy":
			side = entities.SideBuy
		case "sell":
			side = entities.SideSell
		default:
			respondError(w, http.StatusBadRequest, "side must be buy or sell")
			return
		}
		filter.Side = &side
	}

	response, err := h.tradeService.GetTrades(ctx, filter)
	if err != nil {
		h.logger.Error("Failed to get trades", zap.Error(err), zap.String("address", address))
		respondError(w, http.StatusInternalServerError, "Failed to get trades")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
