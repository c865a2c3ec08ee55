package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mlsbridge/core"
	"mlsbridge/middleware"
	"mlsbridge/models"
	"mlsbridge/services/ingeststate"
	syncsvc "mlsbridge/services/sync"
	"mlsbridge/services/tokens"
	"mlsbridge/services/usagelogs"
)

// fakeListingsReader serves listing lookups from an in-memory map
type fakeListingsReader struct {
	listings map[string]*models.Listing
}

func (f *fakeListingsReader) GetListingByMLSID(ctx context.Context, mlsID string) (*models.Listing, error) {
	if listing, ok := f.listings[mlsID]; ok {
		return listing, nil
	}
	return nil, fmt.Errorf("listing %s: %w", mlsID, core.ErrNotFound)
}

type handlerTestDeps struct {
	router        *mux.Router
	tokensService *tokens.MockTokensService
	syncService   *syncsvc.MockSyncService
	ingestService *ingeststate.MockIngestStateService
	usageService  *usagelogs.MockUsageLogsService
	listingsRepo  *fakeListingsReader
}

func setupHandlerTest(t *testing.T) *handlerTestDeps {
	t.Setenv("TESTING_MODE", "true")

	deps := &handlerTestDeps{
		tokensService: new(tokens.MockTokensService),
		syncService:   new(syncsvc.MockSyncService),
		ingestService: new(ingeststate.MockIngestStateService),
		usageService:  new(usagelogs.MockUsageLogsService),
		listingsRepo:  &fakeListingsReader{listings: map[string]*models.Listing{}},
	}

	handler := NewSyncHTTPHandler(
		deps.tokensService,
		deps.syncService,
		deps.ingestService,
		deps.usageService,
		deps.listingsRepo,
	)
	authMiddleware := middleware.NewSecretAuthMiddleware("test-secret")

	deps.router = mux.NewRouter()
	handler.SetupEndpoints(deps.router.PathPrefix("/api").Subrouter(), authMiddleware)

	return deps
}

func TestSyncHTTPHandler_HandleAcquireToken(t *testing.T) {
	t.Run("successful acquisition returns provider and expiry", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.tokensService.On("AcquireClientCredentials", mock.Anything).Return(&models.CredentialRecord{
			Provider:  models.ProviderRealtyna,
			TokenType: "bearer",
			ExpiresAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}, nil)

		req := httptest.NewRequest("POST", "/api/tokens/acquire", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TokenAcquireResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, models.ProviderRealtyna, resp.Provider)
		assert.Equal(t, "2025-06-01T12:00:00Z", resp.ExpiresAt)
	})

	t.Run("upstream rejection maps to bad gateway", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.tokensService.On("AcquireClientCredentials", mock.Anything).
			Return(nil, &core.UpstreamError{StatusCode: 403, Body: "denied"})

		req := httptest.NewRequest("POST", "/api/tokens/acquire", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestSyncHTTPHandler_HandleTokenCallback(t *testing.T) {
	t.Run("missing code is a bad request", func(t *testing.T) {
		deps := setupHandlerTest(t)

		req := httptest.NewRequest("GET", "/api/tokens/callback", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		deps.tokensService.AssertNotCalled(t, "ExchangeAuthCode", mock.Anything, mock.Anything)
	})

	t.Run("code is exchanged and the credential summarized", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.tokensService.On("ExchangeAuthCode", mock.Anything, "abc-123").Return(&models.CredentialRecord{
			Provider:  models.ProviderRealtyna,
			TokenType: "bearer",
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)

		req := httptest.NewRequest("GET", "/api/tokens/callback?code=abc-123", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.tokensService.AssertExpectations(t)
	})
}

func TestSyncHTTPHandler_HandleRefreshToken(t *testing.T) {
	t.Run("missing token maps to unauthorized", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.tokensService.On("RefreshIfNeeded", mock.Anything).Return(nil, tokens.ErrNoToken)

		req := httptest.NewRequest("POST", "/api/tokens/refresh", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("fresh token reports minutes left without refreshing", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.tokensService.On("RefreshIfNeeded", mock.Anything).Return(&models.RefreshResult{
			Refreshed:   false,
			MinutesLeft: 37,
		}, nil)

		req := httptest.NewRequest("POST", "/api/tokens/refresh", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TokenRefreshResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Refreshed)
		assert.Equal(t, 37, resp.MinutesLeft)
	})
}

func TestSyncHTTPHandler_HandleRevokeToken(t *testing.T) {
	t.Run("stored credential is revoked", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.tokensService.On("RevokeCredential", mock.Anything).Return(nil)

		req := httptest.NewRequest("DELETE", "/api/tokens", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp["revoked"])
		deps.tokensService.AssertExpectations(t)
	})

	t.Run("missing credential is not found", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.tokensService.On("RevokeCredential", mock.Anything).
			Return(fmt.Errorf("failed to revoke credential: %w", core.ErrNotFound))

		req := httptest.NewRequest("DELETE", "/api/tokens", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSyncHTTPHandler_HandleSyncEndpoints(t *testing.T) {
	t.Run("listings sync returns the step result", func(t *testing.T) {
		deps := setupHandlerTest(t)
		cursorAfter := "p3"
		deps.syncService.On("SyncListings", mock.Anything).Return(&models.StepResult{
			Source:         models.SourceListings,
			ItemsFetched:   10,
			ItemsProcessed: 9,
			ItemsFailed:    1,
			CursorAfter:    &cursorAfter,
		}, nil)

		req := httptest.NewRequest("POST", "/api/sync/listings", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var step models.StepResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
		assert.Equal(t, 9, step.ItemsProcessed)
	})

	t.Run("resource path segment routes to SyncResource", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.syncService.On("SyncResource", mock.Anything, "members").Return(&models.StepResult{
			Source: models.SourceMembers,
		}, nil)

		req := httptest.NewRequest("POST", "/api/sync/members", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.syncService.AssertExpectations(t)
	})

	t.Run("unknown resource is not found", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.syncService.On("SyncResource", mock.Anything, "bogus").
			Return(nil, assert.AnError)

		req := httptest.NewRequest("POST", "/api/sync/bogus", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("failed step returns the taxonomy-mapped status with the step body", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.syncService.On("SyncListings", mock.Anything).Return(&models.StepResult{
			Source: models.SourceListings,
			Error:  "network error during fetch",
		}, &core.NetworkError{Op: "fetch", Err: assert.AnError})

		req := httptest.NewRequest("POST", "/api/sync/listings", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var step models.StepResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
		assert.True(t, step.Failed())
	})

	t.Run("full run with step errors returns multi-status", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.syncService.On("RunAll", mock.Anything).Return(&models.SyncReport{
			Success: false,
			Errors:  []string{"realtyna_offices: timeout"},
		}, nil)

		req := httptest.NewRequest("POST", "/api/sync/all", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusMultiStatus, rec.Code)

		var report models.SyncReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.False(t, report.Success)
		assert.Len(t, report.Errors, 1)
	})

	t.Run("sync state listing returns all sources", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.ingestService.On("ListStates", mock.Anything).Return([]models.IngestState{
			{Source: models.SourceListings},
			{Source: models.SourceMembers},
		}, nil)

		req := httptest.NewRequest("GET", "/api/sync/state", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var states []models.IngestState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
		assert.Len(t, states, 2)
	})

	t.Run("sync logs listing passes the limit through", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.usageService.On("RecentInvocations", mock.Anything, 5).Return([]models.APIUsageLog{
			{RequestID: "req-1", Endpoint: "/api/sync/listings", StatusCode: 200},
			{RequestID: "req-2", Endpoint: "/api/sync/members", StatusCode: 500},
		}, nil)

		req := httptest.NewRequest("GET", "/api/sync/logs?limit=5", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var entries []models.APIUsageLog
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "req-1", entries[0].RequestID)
		deps.usageService.AssertExpectations(t)
	})

	t.Run("sync logs with no entries returns an empty list", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.usageService.On("RecentInvocations", mock.Anything, 0).
			Return([]models.APIUsageLog(nil), nil)

		req := httptest.NewRequest("GET", "/api/sync/logs", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestSyncHTTPHandler_HandleGetListing(t *testing.T) {
	t.Run("stored listing is returned by mls_id", func(t *testing.T) {
		deps := setupHandlerTest(t)
		deps.listingsRepo.listings["X1"] = &models.Listing{
			MLSID:  "X1",
			Price:  decimal.NewFromInt(450000),
			Status: "Active",
		}

		req := httptest.NewRequest("GET", "/api/listings/X1", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var listing models.Listing
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
		assert.Equal(t, "X1", listing.MLSID)
		assert.True(t, listing.Price.Equal(decimal.NewFromInt(450000)))
	})

	t.Run("unknown mls_id is not found", func(t *testing.T) {
		deps := setupHandlerTest(t)

		req := httptest.NewRequest("GET", "/api/listings/NOPE", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
