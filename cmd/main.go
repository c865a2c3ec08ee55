package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"mlsbridge/clients/realtyna"
	"mlsbridge/config"
	"mlsbridge/db"
	"mlsbridge/handlers"
	"mlsbridge/middleware"
	"mlsbridge/models"
	"mlsbridge/services/ingeststate"
	syncsvc "mlsbridge/services/sync"
	"mlsbridge/services/tokens"
	"mlsbridge/services/txmanager"
	"mlsbridge/services/usagelogs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.AlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "mlsbridge",
		LogsURL:     cfg.ServerLogsURL,
	})

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	tokensRepo := db.NewPostgresOAuthTokensRepository(dbConn, cfg.DatabaseSchema)
	listingsRepo := db.NewPostgresListingsRepository(dbConn, cfg.DatabaseSchema)
	ingestStateRepo := db.NewPostgresIngestStateRepository(dbConn, cfg.DatabaseSchema)
	resourceRecordsRepo := db.NewPostgresResourceRecordsRepository(dbConn, cfg.DatabaseSchema)
	usageLogsRepo := db.NewPostgresUsageLogsRepository(dbConn, cfg.DatabaseSchema)

	// Initialize transaction manager
	txManager := txmanager.NewTransactionManager(dbConn)

	mlsClient := realtyna.NewRealtynaClient(realtyna.Options{
		BaseURL:      cfg.RealtynaConfig.BaseURL,
		TokenURL:     cfg.RealtynaConfig.TokenURL,
		ClientID:     cfg.RealtynaConfig.ClientID,
		ClientSecret: cfg.RealtynaConfig.ClientSecret,
		APIKey:       cfg.RealtynaConfig.APIKey,
		RedirectURI:  cfg.RealtynaConfig.RedirectURI,
		PageSize:     cfg.ListingsPageSize,
		Counties:     cfg.ListingFilter.Counties,
		State:        cfg.ListingFilter.State,
		BoundingBox:  cfg.ListingFilter.BoundingBox,
	})

	tokensService := tokens.NewTokensService(tokensRepo, mlsClient, models.ProviderRealtyna)
	ingestService := ingeststate.NewIngestStateService(ingestStateRepo)
	usageService := usagelogs.NewUsageLogsService(usageLogsRepo)
	syncService := syncsvc.NewSyncOrchestrator(
		tokensService,
		ingestService,
		usageService,
		mlsClient,
		listingsRepo,
		resourceRecordsRepo,
		txManager,
		cfg.SyncStepDelay,
	)

	syncHTTPHandler := handlers.NewSyncHTTPHandler(tokensService, syncService, ingestService, usageService, listingsRepo)
	authMiddleware := middleware.NewSecretAuthMiddleware(cfg.SyncSecret)

	// Create a new router
	router := mux.NewRouter()

	apiRouter := router.PathPrefix("/api").Subrouter()
	syncHTTPHandler.SetupEndpoints(apiRouter, authMiddleware)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	// Start the scheduled sync ticker when an interval is configured
	if cfg.SyncInterval > 0 {
		syncTicker := time.NewTicker(cfg.SyncInterval)
		go func() {
			for range syncTicker.C {
				_ = alertMiddleware.WrapBackgroundTask("ScheduledSync", func() error {
					report, err := syncService.RunAll(context.Background())
					if err != nil {
						return err
					}
					if !report.Success {
						return fmt.Errorf("sync finished with errors: %s", strings.Join(report.Errors, "; "))
					}
					return nil
				})()
			}
		}()
		defer syncTicker.Stop()
		log.Printf("✅ Scheduled sync enabled every %v", cfg.SyncInterval)
	}

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Sync-Secret"},
		AllowCredentials: true,
	})

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
