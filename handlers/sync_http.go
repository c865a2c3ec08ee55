package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"mlsbridge/core"
	"mlsbridge/middleware"
	"mlsbridge/models"
	"mlsbridge/services"
	syncsvc "mlsbridge/services/sync"
)

// listingsReader is the read surface the listing lookup endpoint needs
type listingsReader interface {
	GetListingByMLSID(ctx context.Context, mlsID string) (*models.Listing, error)
}

type SyncHTTPHandler struct {
	tokensService services.TokensService
	syncService   services.SyncService
	ingestService services.IngestStateService
	usageService  services.UsageLogsService
	listingsRepo  listingsReader
}

func NewSyncHTTPHandler(
	tokensService services.TokensService,
	syncService services.SyncService,
	ingestService services.IngestStateService,
	usageService services.UsageLogsService,
	listingsRepo listingsReader,
) *SyncHTTPHandler {
	return &SyncHTTPHandler{
		tokensService: tokensService,
		syncService:   syncService,
		ingestService: ingestService,
		usageService:  usageService,
		listingsRepo:  listingsRepo,
	}
}

type TokenAcquireResponse struct {
	Provider  string `json:"provider"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at"`
}

type TokenRefreshResponse struct {
	Refreshed   bool `json:"refreshed"`
	MinutesLeft int  `json:"minutes_left"`
}

func (h *SyncHTTPHandler) HandleAcquireToken(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Token acquire request received from %s", r.RemoteAddr)

	credential, err := h.tokensService.AcquireClientCredentials(r.Context())
	if err != nil {
		log.Printf("❌ Failed to acquire token: %v", err)
		h.writeErrorResponse(w, "failed to acquire token", syncsvc.StatusForError(err))
		return
	}

	log.Printf("✅ Token acquired for provider: %s", credential.Provider)
	h.writeJSONResponse(w, http.StatusOK, TokenAcquireResponse{
		Provider:  credential.Provider,
		TokenType: credential.TokenType,
		ExpiresAt: credential.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *SyncHTTPHandler) HandleTokenCallback(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 OAuth callback received from %s", r.RemoteAddr)

	code := r.URL.Query().Get("code")
	if code == "" {
		log.Printf("❌ Missing authorization code in callback")
		h.writeErrorResponse(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	credential, err := h.tokensService.ExchangeAuthCode(r.Context(), code)
	if err != nil {
		log.Printf("❌ Failed to exchange authorization code: %v", err)
		h.writeErrorResponse(w, "failed to exchange authorization code", syncsvc.StatusForError(err))
		return
	}

	log.Printf("✅ Authorization code exchanged for provider: %s", credential.Provider)
	h.writeJSONResponse(w, http.StatusOK, TokenAcquireResponse{
		Provider:  credential.Provider,
		TokenType: credential.TokenType,
		ExpiresAt: credential.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *SyncHTTPHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Token refresh request received from %s", r.RemoteAddr)

	result, err := h.tokensService.RefreshIfNeeded(r.Context())
	if err != nil {
		log.Printf("❌ Failed to refresh token: %v", err)
		h.writeErrorResponse(w, "failed to refresh token", syncsvc.StatusForError(err))
		return
	}

	log.Printf("✅ Token refresh check completed (refreshed: %v)", result.Refreshed)
	h.writeJSONResponse(w, http.StatusOK, TokenRefreshResponse{
		Refreshed:   result.Refreshed,
		MinutesLeft: result.MinutesLeft,
	})
}

func (h *SyncHTTPHandler) HandleRevokeToken(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 Token revoke request received from %s", r.RemoteAddr)

	if err := h.tokensService.RevokeCredential(r.Context()); err != nil {
		if core.IsNotFoundError(err) {
			h.writeErrorResponse(w, "no credential stored", http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to revoke token: %v", err)
		h.writeErrorResponse(w, "failed to revoke token", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Token revoked")
	h.writeJSONResponse(w, http.StatusOK, map[string]bool{"revoked": true})
}

func (h *SyncHTTPHandler) HandleSyncListings(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Sync listings request received from %s", r.RemoteAddr)

	step, err := h.syncService.SyncListings(r.Context())
	if err != nil {
		log.Printf("❌ Listings sync failed: %v", err)
		h.writeJSONResponse(w, syncsvc.StatusForError(err), step)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, step)
}

func (h *SyncHTTPHandler) HandleSyncResource(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resource := vars["resource"]
	log.Printf("📋 Sync resource request received for %s from %s", resource, r.RemoteAddr)

	step, err := h.syncService.SyncResource(r.Context(), resource)
	if err != nil {
		if step == nil {
			h.writeErrorResponse(w, "unknown resource", http.StatusNotFound)
			return
		}
		log.Printf("❌ Resource sync failed for %s: %v", resource, err)
		h.writeJSONResponse(w, syncsvc.StatusForError(err), step)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, step)
}

func (h *SyncHTTPHandler) HandleSyncAll(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Full sync request received from %s", r.RemoteAddr)

	report, err := h.syncService.RunAll(r.Context())
	if err != nil {
		log.Printf("❌ Full sync failed: %v", err)
		h.writeErrorResponse(w, "full sync failed", http.StatusInternalServerError)
		return
	}

	// partial failures still return the full report
	status := http.StatusOK
	if !report.Success {
		status = http.StatusMultiStatus
	}
	h.writeJSONResponse(w, status, report)
}

func (h *SyncHTTPHandler) HandleGetSyncState(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Sync state request received from %s", r.RemoteAddr)

	states, err := h.ingestService.ListStates(r.Context())
	if err != nil {
		log.Printf("❌ Failed to list sync states: %v", err)
		h.writeErrorResponse(w, "failed to list sync states", http.StatusInternalServerError)
		return
	}
	if states == nil {
		states = []models.IngestState{}
	}

	h.writeJSONResponse(w, http.StatusOK, states)
}

func (h *SyncHTTPHandler) HandleGetSyncLogs(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Sync logs request received from %s", r.RemoteAddr)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.usageService.RecentInvocations(r.Context(), limit)
	if err != nil {
		log.Printf("❌ Failed to list sync logs: %v", err)
		h.writeErrorResponse(w, "failed to list sync logs", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.APIUsageLog{}
	}

	h.writeJSONResponse(w, http.StatusOK, entries)
}

func (h *SyncHTTPHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mlsID := vars["mls_id"]
	log.Printf("📋 Listing lookup request received for %s from %s", mlsID, r.RemoteAddr)

	listing, err := h.listingsRepo.GetListingByMLSID(r.Context(), mlsID)
	if err != nil {
		if core.IsNotFoundError(err) {
			h.writeErrorResponse(w, "listing not found", http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to get listing %s: %v", mlsID, err)
		h.writeErrorResponse(w, "failed to get listing", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, listing)
}

func (h *SyncHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.SecretAuthMiddleware) {
	log.Printf("🚀 Registering sync API endpoints")

	router.HandleFunc("/tokens/acquire", authMiddleware.WithAuth(h.HandleAcquireToken)).Methods("POST")
	log.Printf("✅ POST /tokens/acquire endpoint registered")

	// OAuth callback is hit by the provider's redirect and carries no secret
	router.HandleFunc("/tokens/callback", h.HandleTokenCallback).Methods("GET")
	log.Printf("✅ GET /tokens/callback endpoint registered")

	router.HandleFunc("/tokens/refresh", authMiddleware.WithAuth(h.HandleRefreshToken)).Methods("POST")
	log.Printf("✅ POST /tokens/refresh endpoint registered")

	router.HandleFunc("/tokens", authMiddleware.WithAuth(h.HandleRevokeToken)).Methods("DELETE")
	log.Printf("✅ DELETE /tokens endpoint registered")

	router.HandleFunc("/sync/listings", authMiddleware.WithAuth(h.HandleSyncListings)).Methods("POST")
	log.Printf("✅ POST /sync/listings endpoint registered")

	router.HandleFunc("/sync/all", authMiddleware.WithAuth(h.HandleSyncAll)).Methods("POST")
	log.Printf("✅ POST /sync/all endpoint registered")

	router.HandleFunc("/sync/state", authMiddleware.WithAuth(h.HandleGetSyncState)).Methods("GET")
	log.Printf("✅ GET /sync/state endpoint registered")

	router.HandleFunc("/sync/logs", authMiddleware.WithAuth(h.HandleGetSyncLogs)).Methods("GET")
	log.Printf("✅ GET /sync/logs endpoint registered")

	router.HandleFunc("/sync/{resource}", authMiddleware.WithAuth(h.HandleSyncResource)).Methods("POST")
	log.Printf("✅ POST /sync/{resource} endpoint registered")

	router.HandleFunc("/listings/{mls_id}", authMiddleware.WithAuth(h.HandleGetListing)).Methods("GET")
	log.Printf("✅ GET /listings/{mls_id} endpoint registered")
}

func (h *SyncHTTPHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *SyncHTTPHandler) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("❌ Failed to encode error response: %v", err)
	}
}
