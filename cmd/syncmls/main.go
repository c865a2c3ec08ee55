package main

import (
	"context"
	"log"
	"os"

	"mlsbridge/clients/realtyna"
	"mlsbridge/config"
	"mlsbridge/db"
	"mlsbridge/models"
	"mlsbridge/services/ingeststate"
	syncsvc "mlsbridge/services/sync"
	"mlsbridge/services/tokens"
	"mlsbridge/services/txmanager"
	"mlsbridge/services/usagelogs"
)

// One-shot sync job for cron or manual runs. Walks every MLS source once
// and exits non-zero when any step failed.
func main() {
	log.Printf("🔄 Starting MLS sync run...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Create database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	// Initialize services
	tokensRepo := db.NewPostgresOAuthTokensRepository(dbConn, cfg.DatabaseSchema)
	listingsRepo := db.NewPostgresListingsRepository(dbConn, cfg.DatabaseSchema)
	ingestStateRepo := db.NewPostgresIngestStateRepository(dbConn, cfg.DatabaseSchema)
	resourceRecordsRepo := db.NewPostgresResourceRecordsRepository(dbConn, cfg.DatabaseSchema)
	usageLogsRepo := db.NewPostgresUsageLogsRepository(dbConn, cfg.DatabaseSchema)
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

	report, err := syncService.RunAll(context.Background())
	if err != nil {
		log.Fatalf("❌ Sync run failed: %v", err)
	}

	// Print summary
	log.Printf("✅ Sync run completed!")
	log.Printf("📊 Summary:")
	for _, step := range report.Steps {
		log.Printf(
			"   - %s: fetched=%d processed=%d failed=%d duration=%dms",
			step.Source, step.ItemsFetched, step.ItemsProcessed, step.ItemsFailed, step.DurationMS,
		)
	}
	log.Printf("   - Errors encountered: %d", len(report.Errors))
	for _, e := range report.Errors {
		log.Printf("   - ❌ %s", e)
	}

	if !report.Success {
		os.Exit(1)
	}
}
