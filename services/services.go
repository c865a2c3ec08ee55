package services

import (
	"context"
	"time"

	"github.com/samber/mo"

	"mlsbridge/models"
)

// TokensService defines the interface for credential lifecycle operations
type TokensService interface {
	// AcquireClientCredentials performs a client-credentials exchange and
	// replaces the provider's stored credential
	AcquireClientCredentials(ctx context.Context) (*models.CredentialRecord, error)

	// ExchangeAuthCode performs an authorization-code exchange and replaces
	// the provider's stored credential
	ExchangeAuthCode(ctx context.Context, code string) (*models.CredentialRecord, error)

	// RefreshIfNeeded refreshes the stored token when its expiry is within
	// the threshold window; otherwise it is a pure read
	RefreshIfNeeded(ctx context.Context) (*models.RefreshResult, error)

	// GetCurrentCredential returns the provider's stored credential, if any
	GetCurrentCredential(ctx context.Context) (mo.Option[*models.CredentialRecord], error)

	// RevokeCredential deletes the provider's stored credential
	RevokeCredential(ctx context.Context) error
}

// IngestStateService defines the interface for resume-cursor bookkeeping
type IngestStateService interface {
	GetState(ctx context.Context, source string) (mo.Option[*models.IngestState], error)
	AdvanceCursor(ctx context.Context, source, cursor string, lastItemTS *time.Time) error
	ListStates(ctx context.Context) ([]models.IngestState, error)
}

// UsageLogsService defines the interface for the sync audit trail
type UsageLogsService interface {
	RecordInvocation(ctx context.Context, entry *models.APIUsageLog) error
	RecentInvocations(ctx context.Context, limit int) ([]models.APIUsageLog, error)
}

// SyncService defines the interface for sync orchestration. Step methods
// return a structured result even when they also return an error.
type SyncService interface {
	SyncListings(ctx context.Context) (*models.StepResult, error)
	SyncResource(ctx context.Context, resource string) (*models.StepResult, error)
	RunAll(ctx context.Context) (*models.SyncReport, error)
}

// TransactionManager defines the interface for transaction management
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
