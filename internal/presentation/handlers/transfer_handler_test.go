package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/application/services"
	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
	"github.com/ardwiinoo/launch-indexer/internal/testutil"
)

func setupTransferHandlerTest(t *testing.T) (chi.Router, *testutil.MockTransferRepository) {
	t.Helper()
	transferRepo := testutil.NewMockTransferRepository()
	logger := zap.NewNop()

	service := services.NewTransferService(transferRepo, logger)
	handler := NewTransferHandler(service, logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	return r, transferRepo
}

func seedTransferRows(t *testing.T, repo *testutil.MockTransferRepository) {
	t.Helper()
	transfers := []entities.Transfer{
		{Event: 1, TokenAddress: testutil.TokenAddress, FromAddress: testutil.TraderAddress, ToAddress: testutil.OtherAddress, Amount: "100", Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{Event: 2, TokenAddress: testutil.TokenAddress, FromAddress: testutil.OtherAddress, ToAddress: testutil.CreatorAddress, Amount: "50", Timestamp: time.Date(2024, 1, 15, 10, 31, 0, 0, time.UTC)},
		{Event: 3, TokenAddress: "0xdddd00000000000000000000000000000000dddd", FromAddress: testutil.CreatorAddress, ToAddress: testutil.TraderAddress, Amount: "25", Timestamp: time.Date(2024, 1, 15, 10, 32, 0, 0, time.UTC)},
	}
	for i := range transfers {
		if err := repo.Upsert(context.Background(), &transfers[i]); err != nil {
			t.Fatalf("failed to seed transfers: %v", err)
		}
	}
}

func TestTransferHandler_GetTransfers(t *testing.T) {
	router, repo := setupTransferHandlerTest(t)
	seedTransferRows(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/transfers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response services.TransferListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data) != 3 {
		t.Errorf("expected 3 transfers, got %d", len(response.Data))
	}
}

func TestTransferHandler_GetTransfers_TokenFilter(t *testing.T) {
	router, repo := setupTransferHandlerTest(t)
	seedTransferRows(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/transfers?token="+testutil.TokenAddress, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var response services.TransferListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Data) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(response.Data))
	}
	if response.Pagination.Total != 2 {
		t.Errorf("total mismatch: %d", response.Pagination.Total)
	}
}

func TestTransferHandler_GetTransfers_AddressFilter(t *testing.T) {
	router, repo := setupTransferHandlerTest(t)
	seedTransferRows(t, repo)

	// TraderAddress sent event 1 and received event 3
	req := httptest.NewRequest(http.MethodGet, "/transfers?address="+testutil.TraderAddress, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var response services.TransferListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Data) != 2 {
		t.Errorf("expected 2 transfers touching the address, got %d", len(response.Data))
	}
}

func TestTransferHandler_GetTransfers_NormalizesCase(t *testing.T) {
	router, repo := setupTransferHandlerTest(t)
	seedTransferRows(t, repo)

	upper := "0xAAAA00000000000000000000000000000000AAAA"
	req := httptest.NewRequest(http.MethodGet, "/transfers?token="+upper, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var response services.TransferListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Data) != 2 {
		t.Errorf("mixed-case filter should match lowercase rows, got %d", len(response.Data))
	}
}

func TestTransferHandler_GetTransfers_InvalidFilter(t *testing.T) {
	router, _ := setupTransferHandlerTest(t)

	for _, param := range []string{"token", "from", "to", "address"} {
		req := httptest.NewRequest(http.MethodGet, "/transfers?"+param+"=garbage", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s filter: expected status 400, got %d", param, rec.Code)
		}
	}
}
