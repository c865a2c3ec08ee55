package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Listing is the internal normalized listing schema. The MLS id is the
// upsert conflict key; re-ingesting the same id overwrites all fields.
type Listing struct {
	ID              string          `db:"id"                json:"id"`
	MLSID           string          `db:"mls_id"            json:"mls_id"`
	Price           decimal.Decimal `db:"price"             json:"price"`
	Beds            int             `db:"beds"              json:"beds"`
	Baths           decimal.Decimal `db:"baths"             json:"baths"`
	Sqft            int             `db:"sqft"              json:"sqft"`
	PropertyType    string          `db:"property_type"     json:"property_type"`
	Address         string          `db:"address"           json:"address"`
	City            string          `db:"city"              json:"city"`
	County          string          `db:"county"            json:"county"`
	State           string          `db:"state"             json:"state"`
	Zip             string          `db:"zip"               json:"zip"`
	Status          string          `db:"status"            json:"status"`
	Remarks         string          `db:"remarks"           json:"remarks"`
	Lat             *float64        `db:"lat"               json:"lat,omitempty"`
	Lng             *float64        `db:"lng"               json:"lng,omitempty"`
	SourceUpdatedAt *time.Time      `db:"source_updated_at" json:"source_updated_at,omitempty"`
	Photos          pq.StringArray  `db:"photos"            json:"photos"`
	CreatedAt       time.Time       `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"        json:"updated_at"`
}
