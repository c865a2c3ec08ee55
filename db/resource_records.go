package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	dbtx "mlsbridge/db/tx"
	"mlsbridge/models"
)

type PostgresResourceRecordsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for mls_resource_records table
var resourceRecordsColumns = []string{
	"id",
	"resource",
	"external_id",
	"payload",
	"source_updated_at",
	"created_at",
	"updated_at",
}

func NewPostgresResourceRecordsRepository(db *sqlx.DB, schema string) *PostgresResourceRecordsRepository {
	return &PostgresResourceRecordsRepository{db: db, schema: schema}
}

// UpsertResourceRecord persists one record keyed on (resource, external_id)
// with full overwrite of the payload. The resource syncs call this per item
// and tally successes/failures rather than aborting the whole batch.
func (r *PostgresResourceRecordsRepository) UpsertResourceRecord(
	ctx context.Context,
	record *models.ResourceRecord,
) error {
	if record.Resource == "" {
		return fmt.Errorf("resource cannot be empty")
	}
	if record.ExternalID == "" {
		return fmt.Errorf("external id cannot be empty")
	}

	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(resourceRecordsColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.mls_resource_records (
			id, resource, external_id, payload, source_updated_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (resource, external_id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			source_updated_at = EXCLUDED.source_updated_at,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		record.ID,
		record.Resource,
		record.ExternalID,
		record.Payload,
		record.SourceUpdatedAt,
	).StructScan(record)
	if err != nil {
		return fmt.Errorf("failed to upsert %s record %s: %w", record.Resource, record.ExternalID, err)
	}

	return nil
}

// CountResourceRecords returns the number of stored records for a resource
func (r *PostgresResourceRecordsRepository) CountResourceRecords(
	ctx context.Context,
	resource string,
) (int, error) {
	if resource == "" {
		return 0, fmt.Errorf("resource cannot be empty")
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.mls_resource_records
		WHERE resource = $1`, r.schema)

	var count int
	if err := r.db.GetContext(ctx, &count, query, resource); err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", resource, err)
	}

	return count, nil
}
