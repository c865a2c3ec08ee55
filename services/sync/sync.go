package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mlsbridge/clients"
	"mlsbridge/core"
	"mlsbridge/models"
	"mlsbridge/services"
	"mlsbridge/services/listings"
	"mlsbridge/services/tokens"
)

// syncOrder fixes the sequence RunAll walks through. Listings sit in the
// middle so member and office records exist before listings reference them.
var syncOrder = []string{
	models.SourceMembers,
	models.SourceOffices,
	models.SourceListings,
	models.SourceOpenHouses,
	models.SourcePostalCodes,
}

// sourceResources maps ingest-state sources to upstream resource names.
// Listings have a dedicated path and are absent here.
var sourceResources = map[string]string{
	models.SourceMembers:     models.ResourceMembers,
	models.SourceOffices:     models.ResourceOffices,
	models.SourceOpenHouses:  models.ResourceOpenHouses,
	models.SourcePostalCodes: models.ResourcePostalCodes,
}

type listingsStore interface {
	UpsertListings(ctx context.Context, listings []*models.Listing) (int, error)
}

type resourceStore interface {
	UpsertResourceRecord(ctx context.Context, record *models.ResourceRecord) error
	CountResourceRecords(ctx context.Context, resource string) (int, error)
}

type SyncOrchestrator struct {
	tokensService services.TokensService
	ingestService services.IngestStateService
	usageService  services.UsageLogsService
	mlsClient     clients.MLSClient
	listingsRepo  listingsStore
	resourceRepo  resourceStore
	txManager     services.TransactionManager
	stepDelay     time.Duration
}

func NewSyncOrchestrator(
	tokensService services.TokensService,
	ingestService services.IngestStateService,
	usageService services.UsageLogsService,
	mlsClient clients.MLSClient,
	listingsRepo listingsStore,
	resourceRepo resourceStore,
	txManager services.TransactionManager,
	stepDelay time.Duration,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		tokensService: tokensService,
		ingestService: ingestService,
		usageService:  usageService,
		mlsClient:     mlsClient,
		listingsRepo:  listingsRepo,
		resourceRepo:  resourceRepo,
		txManager:     txManager,
		stepDelay:     stepDelay,
	}
}

// SyncListings runs one page of the listings pipeline: ensure a fresh token,
// fetch from the stored cursor, map, upsert, and advance the cursor. The
// upsert and the cursor advance commit in the same transaction so a resumed
// run never skips a batch that failed to persist.
func (s *SyncOrchestrator) SyncListings(ctx context.Context) (*models.StepResult, error) {
	log.Printf("📋 Starting to sync listings")
	started := time.Now()

	result := &models.StepResult{
		Source:    models.SourceListings,
		RequestID: uuid.NewString(),
	}

	defer func() {
		result.DurationMS = time.Since(started).Milliseconds()
		s.recordStep(ctx, result, "/api/sync/listings")
	}()

	refresh, err := s.tokensService.RefreshIfNeeded(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to ensure access token: %v", err)
		return result, fmt.Errorf("failed to ensure access token: %w", err)
	}

	cursorBefore, err := s.currentCursor(ctx, models.SourceListings)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.CursorBefore = cursorBefore

	page, err := s.mlsClient.FetchListings(ctx, refresh.Credential.AccessToken, cursorBefore)
	if err != nil {
		result.Error = fmt.Sprintf("failed to fetch listings page: %v", err)
		return result, fmt.Errorf("failed to fetch listings page: %w", err)
	}
	result.ItemsFetched = len(page.Items)

	mapped, rejected := listings.MapListings(page.Items)
	result.ItemsFailed = rejected

	if len(mapped) == 0 {
		log.Printf("📋 Completed successfully - no mappable listings in batch")
		return result, nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		written, err := s.listingsRepo.UpsertListings(txCtx, mapped)
		result.ItemsProcessed = written
		if err != nil {
			return fmt.Errorf("failed to upsert listings: %w", err)
		}
		if page.NextCursor != nil && written > 0 {
			lastTS := maxListingTimestamp(mapped)
			if err := s.ingestService.AdvanceCursor(txCtx, models.SourceListings, *page.NextCursor, lastTS); err != nil {
				return err
			}
			result.CursorAfter = page.NextCursor
		}
		return nil
	})
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	log.Printf("✅ Synced %d listings (%d rejected)", result.ItemsProcessed, rejected)
	return result, nil
}

// SyncResource runs one page of a non-listing feed. Records are upserted
// one by one: a record that fails to map or persist is tallied and skipped
// rather than aborting the batch.
func (s *SyncOrchestrator) SyncResource(ctx context.Context, resource string) (*models.StepResult, error) {
	source, ok := sourceForResource(resource)
	if !ok {
		return nil, fmt.Errorf("unknown resource: %s", resource)
	}

	log.Printf("📋 Starting to sync resource: %s", resource)
	started := time.Now()

	result := &models.StepResult{
		Source:    source,
		RequestID: uuid.NewString(),
	}

	defer func() {
		result.DurationMS = time.Since(started).Milliseconds()
		s.recordStep(ctx, result, "/api/sync/"+resource)
	}()

	refresh, err := s.tokensService.RefreshIfNeeded(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to ensure access token: %v", err)
		return result, fmt.Errorf("failed to ensure access token: %w", err)
	}

	cursorBefore, err := s.currentCursor(ctx, source)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.CursorBefore = cursorBefore

	page, err := s.mlsClient.FetchResource(ctx, refresh.Credential.AccessToken, resource, cursorBefore)
	if err != nil {
		result.Error = fmt.Sprintf("failed to fetch %s page: %v", resource, err)
		return result, fmt.Errorf("failed to fetch %s page: %w", resource, err)
	}
	result.ItemsFetched = len(page.Items)

	var lastTS *time.Time
	for _, raw := range page.Items {
		record, ok := listings.MapResourceRecord(resource, raw)
		if !ok {
			result.ItemsFailed++
			continue
		}
		if err := s.resourceRepo.UpsertResourceRecord(ctx, record); err != nil {
			log.Printf("❌ Failed to upsert %s record %s: %v", resource, record.ExternalID, err)
			result.ItemsFailed++
			continue
		}
		result.ItemsProcessed++
		if record.SourceUpdatedAt != nil && (lastTS == nil || record.SourceUpdatedAt.After(*lastTS)) {
			lastTS = record.SourceUpdatedAt
		}
	}

	if page.NextCursor != nil && result.ItemsProcessed > 0 {
		if err := s.ingestService.AdvanceCursor(ctx, source, *page.NextCursor, lastTS); err != nil {
			result.Error = err.Error()
			return result, err
		}
		result.CursorAfter = page.NextCursor
	}

	total, err := s.resourceRepo.CountResourceRecords(ctx, resource)
	if err != nil {
		log.Printf("⚠️ Failed to count stored %s records: %v", resource, err)
	} else {
		log.Printf("✅ Synced %d %s records (%d failed), %d stored in total", result.ItemsProcessed, resource, result.ItemsFailed, total)
	}

	return result, nil
}

// RunAll walks every source in order, collecting per-step results and
// errors. A failing step does not stop the run; a missing or unrefreshable
// token does, since every subsequent step would fail the same way.
func (s *SyncOrchestrator) RunAll(ctx context.Context) (*models.SyncReport, error) {
	log.Printf("📋 Starting full sync run")

	report := &models.SyncReport{
		StartedAt: time.Now(),
		Errors:    []string{},
	}

	if _, err := s.tokensService.RefreshIfNeeded(ctx); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("token: %v", err))
		report.FinishedAt = time.Now()
		log.Printf("❌ Full sync aborted, token unavailable: %v", err)
		return report, nil
	}

	for i, source := range syncOrder {
		if i > 0 && s.stepDelay > 0 {
			time.Sleep(s.stepDelay)
		}

		var step *models.StepResult
		var err error
		if source == models.SourceListings {
			step, err = s.SyncListings(ctx)
		} else {
			step, err = s.SyncResource(ctx, sourceResources[source])
		}
		if step != nil {
			report.Steps = append(report.Steps, *step)
		}
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", source, err))
		}
	}

	report.FinishedAt = time.Now()
	report.Success = len(report.Errors) == 0

	if report.Success {
		log.Printf("✅ Full sync completed, %d steps", len(report.Steps))
	} else {
		log.Printf("❌ Full sync finished with %d errors", len(report.Errors))
	}
	return report, nil
}

// currentCursor reads the stored resume cursor for a source, nil when the
// source has never synced.
func (s *SyncOrchestrator) currentCursor(ctx context.Context, source string) (*string, error) {
	maybeState, err := s.ingestService.GetState(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingest state for %s: %w", source, err)
	}
	if state, ok := maybeState.Get(); ok {
		return state.LastCursor, nil
	}
	return nil, nil
}

// recordStep writes the audit entry for a finished step. Audit failures are
// logged and swallowed so they never mask the step's own outcome.
func (s *SyncOrchestrator) recordStep(ctx context.Context, step *models.StepResult, endpoint string) {
	entry := &models.APIUsageLog{
		ID:             core.NewID("log"),
		RequestID:      step.RequestID,
		Endpoint:       endpoint,
		StatusCode:     statusForStep(step),
		ItemsFetched:   step.ItemsFetched,
		ItemsProcessed: step.ItemsProcessed,
		ItemsFailed:    step.ItemsFailed,
		CursorBefore:   step.CursorBefore,
		CursorAfter:    step.CursorAfter,
		DurationMS:     step.DurationMS,
	}
	if step.Error != "" {
		errCopy := step.Error
		entry.Error = &errCopy
	}
	if err := s.usageService.RecordInvocation(ctx, entry); err != nil {
		log.Printf("❌ Failed to record audit entry for %s: %v", step.Source, err)
	}
}

// statusForStep maps a step outcome to the status code stored in the audit
// trail
func statusForStep(step *models.StepResult) int {
	if !step.Failed() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// StatusForError maps the error taxonomy to an HTTP status code. Token
// absence reads as unauthorized, upstream rejections as bad gateway,
// transport failures as service unavailable, and configuration gaps as
// internal errors.
func StatusForError(err error) int {
	var upstreamErr *core.UpstreamError
	var networkErr *core.NetworkError
	var configErr *core.ConfigError

	switch {
	case errors.Is(err, tokens.ErrNoToken), errors.Is(err, tokens.ErrNoRefreshToken):
		return http.StatusUnauthorized
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &networkErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func sourceForResource(resource string) (string, bool) {
	for source, res := range sourceResources {
		if res == resource {
			return source, true
		}
	}
	return "", false
}

// maxListingTimestamp returns the newest source timestamp in a batch, nil
// when no record carried one.
func maxListingTimestamp(batch []*models.Listing) *time.Time {
	var max *time.Time
	for _, l := range batch {
		if l.SourceUpdatedAt == nil {
			continue
		}
		if max == nil || l.SourceUpdatedAt.After(*max) {
			max = l.SourceUpdatedAt
		}
	}
	return max
}
