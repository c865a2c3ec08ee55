package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mlsbridge/core"
	dbtx "mlsbridge/db/tx"
	"mlsbridge/models"
)

type PostgresListingsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for mls_listings table
var listingsColumns = []string{
	"id",
	"mls_id",
	"price",
	"beds",
	"baths",
	"sqft",
	"property_type",
	"address",
	"city",
	"county",
	"state",
	"zip",
	"status",
	"remarks",
	"lat",
	"lng",
	"source_updated_at",
	"photos",
	"created_at",
	"updated_at",
}

func NewPostgresListingsRepository(db *sqlx.DB, schema string) *PostgresListingsRepository {
	return &PostgresListingsRepository{db: db, schema: schema}
}

// UpsertListings persists a batch keyed on mls_id with full-row overwrite
// semantics (last-write-wins, no field-level merge). Any persistence error
// aborts the batch; callers run this inside a transaction so an abort
// leaves no partial writes behind. Returns the number of rows written.
func (r *PostgresListingsRepository) UpsertListings(
	ctx context.Context,
	listings []*models.Listing,
) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(listingsColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.mls_listings (
			id, mls_id, price, beds, baths, sqft, property_type,
			address, city, county, state, zip, status, remarks,
			lat, lng, source_updated_at, photos, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		ON CONFLICT (mls_id)
		DO UPDATE SET
			price = EXCLUDED.price,
			beds = EXCLUDED.beds,
			baths = EXCLUDED.baths,
			sqft = EXCLUDED.sqft,
			property_type = EXCLUDED.property_type,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			county = EXCLUDED.county,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			status = EXCLUDED.status,
			remarks = EXCLUDED.remarks,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			source_updated_at = EXCLUDED.source_updated_at,
			photos = EXCLUDED.photos,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	written := 0
	for _, listing := range listings {
		if listing.MLSID == "" {
			return written, fmt.Errorf("listing mls_id cannot be empty")
		}

		err := db.QueryRowxContext(
			ctx,
			query,
			listing.ID,
			listing.MLSID,
			listing.Price,
			listing.Beds,
			listing.Baths,
			listing.Sqft,
			listing.PropertyType,
			listing.Address,
			listing.City,
			listing.County,
			listing.State,
			listing.Zip,
			listing.Status,
			listing.Remarks,
			listing.Lat,
			listing.Lng,
			listing.SourceUpdatedAt,
			listing.Photos,
		).StructScan(listing)
		if err != nil {
			return written, fmt.Errorf("failed to upsert listing %s: %w", listing.MLSID, err)
		}
		written++
	}

	return written, nil
}

// GetListingByMLSID returns one listing by its external id
func (r *PostgresListingsRepository) GetListingByMLSID(
	ctx context.Context,
	mlsID string,
) (*models.Listing, error) {
	if mlsID == "" {
		return nil, fmt.Errorf("mls_id cannot be empty")
	}

	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(listingsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.mls_listings
		WHERE mls_id = $1`, columnsStr, r.schema)

	var listing models.Listing
	if err := db.GetContext(ctx, &listing, query, mlsID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("listing %s: %w", mlsID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return &listing, nil
}
