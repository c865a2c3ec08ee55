package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	// registers the postgres driver with database/sql
	_ "github.com/lib/pq"
)

// NewConnection opens the shared Postgres pool and verifies it is reachable
// before any repository touches it.
func NewConnection(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	return db, nil
}
