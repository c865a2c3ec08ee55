package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RealtynaConfig holds the upstream MLS provider credentials and endpoints.
// Credentials are looked up across several env var name variants because
// deployments have used different names over time.
type RealtynaConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	APIKey       string
	RedirectURI  string
}

// IsConfigured returns true if all required Realtyna configuration is present
func (c RealtynaConfig) IsConfigured() bool {
	return c.BaseURL != "" &&
		c.ClientID != "" &&
		c.ClientSecret != ""
	// Note: APIKey and RedirectURI are optional
}

// ListingFilterConfig is the fixed geographic filter reflecting the
// business's service area. Empty values disable the corresponding filter.
type ListingFilterConfig struct {
	Counties    []string
	State       string
	BoundingBox string
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	ServerLogsURL      string
	AlertWebhookURL    string
	SyncSecret         string // Shared secret for the sync endpoints
	UseStrictConfig    bool   // If true, error when the provider is not fully configured

	// Sync tuning
	SyncStepDelay    time.Duration // delay between multi-source steps
	SyncInterval     time.Duration // 0 disables the scheduled sync ticker
	ListingsPageSize int

	RealtynaConfig RealtynaConfig
	ListingFilter  ListingFilterConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		// Core configuration
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:      getEnvWithDefault("SERVER_LOGS_URL", ""),
		AlertWebhookURL:    getEnvWithDefault("ALERT_WEBHOOK_URL", ""),
		SyncSecret:         os.Getenv("SYNC_SECRET"),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		SyncStepDelay:    getEnvDuration("SYNC_STEP_DELAY", 2*time.Second),
		SyncInterval:     getEnvDuration("SYNC_INTERVAL", 0),
		ListingsPageSize: getEnvInt("LISTINGS_PAGE_SIZE", 100),

		// Realtyna configuration with env var alias fallbacks
		RealtynaConfig: RealtynaConfig{
			BaseURL:      getEnvAliases("REALTYNA_BASE_URL", "MLS_BASE_URL", "REALTYNA_API_URL"),
			TokenURL:     getEnvAliases("REALTYNA_TOKEN_URL", "MLS_TOKEN_URL"),
			ClientID:     getEnvAliases("REALTYNA_CLIENT_ID", "MLS_CLIENT_ID", "RESO_CLIENT_ID"),
			ClientSecret: getEnvAliases("REALTYNA_CLIENT_SECRET", "MLS_CLIENT_SECRET", "RESO_CLIENT_SECRET"),
			APIKey:       getEnvAliases("REALTYNA_API_KEY", "MLS_API_KEY"),
			RedirectURI:  getEnvAliases("REALTYNA_REDIRECT_URI", "MLS_REDIRECT_URI"),
		},

		ListingFilter: ListingFilterConfig{
			Counties:    splitCSV(os.Getenv("LISTING_FILTER_COUNTIES")),
			State:       os.Getenv("LISTING_FILTER_STATE"),
			BoundingBox: os.Getenv("LISTING_FILTER_BBOX"),
		},
	}

	if config.RealtynaConfig.IsConfigured() {
		log.Printf("✅ Realtyna MLS provider configured")
	} else {
		log.Printf("⚠️ Realtyna MLS provider not configured - sync features will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("realtyna provider is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.SyncSecret == "" {
		log.Printf("⚠️ SYNC_SECRET not set - sync endpoints will reject all requests")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAliases returns the first non-empty value among the given env var
// names, checked in order
func getEnvAliases(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️ Invalid duration for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️ Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
