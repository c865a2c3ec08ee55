package main

import (
	"context"
	"log"

	"mlsbridge/clients/realtyna"
	"mlsbridge/config"
	"mlsbridge/db"
	"mlsbridge/models"
	"mlsbridge/services/tokens"
)

// One-shot token refresh job for cron runs. Refreshes the stored MLS
// credential when it is near expiry and exits.
func main() {
	log.Printf("🔄 Starting MLS OAuth token refresh process...")

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
	mlsClient := realtyna.NewRealtynaClient(realtyna.Options{
		BaseURL:      cfg.RealtynaConfig.BaseURL,
		TokenURL:     cfg.RealtynaConfig.TokenURL,
		ClientID:     cfg.RealtynaConfig.ClientID,
		ClientSecret: cfg.RealtynaConfig.ClientSecret,
		APIKey:       cfg.RealtynaConfig.APIKey,
		RedirectURI:  cfg.RealtynaConfig.RedirectURI,
	})
	tokensService := tokens.NewTokensService(tokensRepo, mlsClient, models.ProviderRealtyna)

	result, err := tokensService.RefreshIfNeeded(context.Background())
	if err != nil {
		log.Fatalf("❌ Failed to refresh token: %v", err)
	}

	if result.Refreshed {
		log.Printf("✅ Token refreshed successfully")
	} else {
		log.Printf("⏭️  Token still fresh, %d minutes left - nothing to do", result.MinutesLeft)
	}
}
