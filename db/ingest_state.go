package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	dbtx "mlsbridge/db/tx"
	"mlsbridge/models"
)

type PostgresIngestStateRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for ingest_state table
var ingestStateColumns = []string{
	"id",
	"source",
	"last_cursor",
	"last_item_ts",
	"last_run_at",
	"created_at",
	"updated_at",
}

func NewPostgresIngestStateRepository(db *sqlx.DB, schema string) *PostgresIngestStateRepository {
	return &PostgresIngestStateRepository{db: db, schema: schema}
}

// UpsertIngestState writes the resume cursor for a source, keyed on source
func (r *PostgresIngestStateRepository) UpsertIngestState(
	ctx context.Context,
	state *models.IngestState,
) error {
	if state.Source == "" {
		return fmt.Errorf("source cannot be empty")
	}

	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(ingestStateColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.ingest_state (
			id, source, last_cursor, last_item_ts, last_run_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (source)
		DO UPDATE SET
			last_cursor = EXCLUDED.last_cursor,
			last_item_ts = EXCLUDED.last_item_ts,
			last_run_at = EXCLUDED.last_run_at,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		state.ID,
		state.Source,
		state.LastCursor,
		state.LastItemTS,
		state.LastRunAt,
	).StructScan(state)
	if err != nil {
		return fmt.Errorf("failed to upsert ingest state: %w", err)
	}

	return nil
}

// GetIngestStateBySource returns the resume state for a source
func (r *PostgresIngestStateRepository) GetIngestStateBySource(
	ctx context.Context,
	source string,
) (mo.Option[*models.IngestState], error) {
	if source == "" {
		return mo.None[*models.IngestState](), fmt.Errorf("source cannot be empty")
	}

	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(ingestStateColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.ingest_state
		WHERE source = $1`, columnsStr, r.schema)

	var state models.IngestState
	err := db.GetContext(ctx, &state, query, source)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.IngestState](), nil
		}
		return mo.None[*models.IngestState](), fmt.Errorf("failed to get ingest state: %w", err)
	}

	return mo.Some(&state), nil
}

// ListIngestStates returns all resume states, newest run first
func (r *PostgresIngestStateRepository) ListIngestStates(
	ctx context.Context,
) ([]models.IngestState, error) {
	columnsStr := strings.Join(ingestStateColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.ingest_state
		ORDER BY last_run_at DESC`, columnsStr, r.schema)

	states := []models.IngestState{}
	if err := r.db.SelectContext(ctx, &states, query); err != nil {
		return nil, fmt.Errorf("failed to list ingest states: %w", err)
	}

	return states, nil
}
