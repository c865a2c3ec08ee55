package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	"mlsbridge/core"
	"mlsbridge/models"
)

type PostgresOAuthTokensRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for oauth_tokens table
var oauthTokensColumns = []string{
	"id",
	"provider",
	"access_token",
	"refresh_token",
	"token_type",
	"scope",
	"expires_at",
	"created_at",
	"updated_at",
}

func NewPostgresOAuthTokensRepository(db *sqlx.DB, schema string) *PostgresOAuthTokensRepository {
	return &PostgresOAuthTokensRepository{db: db, schema: schema}
}

// UpsertCredential replaces the provider's credential row in place. The
// provider column is unique, so exactly one "current" record exists per
// provider regardless of how many writers race.
func (r *PostgresOAuthTokensRepository) UpsertCredential(
	ctx context.Context,
	credential *models.CredentialRecord,
) error {
	if credential.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if credential.AccessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}

	returningStr := strings.Join(oauthTokensColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.oauth_tokens (
			id, provider, access_token, refresh_token, token_type, scope, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (provider)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		credential.ID,
		credential.Provider,
		credential.AccessToken,
		credential.RefreshToken,
		credential.TokenType,
		credential.Scope,
		credential.ExpiresAt,
	).StructScan(credential)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}

// GetCredentialByProvider returns the current credential row for a provider
func (r *PostgresOAuthTokensRepository) GetCredentialByProvider(
	ctx context.Context,
	provider string,
) (mo.Option[*models.CredentialRecord], error) {
	if provider == "" {
		return mo.None[*models.CredentialRecord](), fmt.Errorf("provider cannot be empty")
	}

	columnsStr := strings.Join(oauthTokensColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.oauth_tokens
		WHERE provider = $1`, columnsStr, r.schema)

	var credential models.CredentialRecord
	err := r.db.GetContext(ctx, &credential, query, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.CredentialRecord](), nil
		}
		return mo.None[*models.CredentialRecord](), fmt.Errorf("failed to get credential: %w", err)
	}

	return mo.Some(&credential), nil
}

// DeleteCredential removes the provider's credential row
func (r *PostgresOAuthTokensRepository) DeleteCredential(ctx context.Context, provider string) error {
	if provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}

	query := fmt.Sprintf(`
		DELETE FROM %s.oauth_tokens
		WHERE provider = $1`, r.schema)

	result, err := r.db.ExecContext(ctx, query, provider)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("credential for provider %s: %w", provider, core.ErrNotFound)
	}

	return nil
}
