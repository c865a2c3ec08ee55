package tokens

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/samber/mo"

	"mlsbridge/clients"
	"mlsbridge/core"
	"mlsbridge/models"
)

// refreshThreshold is the expiry window within which a stored token is
// refreshed. Tokens with more lifetime left are used as-is.
const refreshThreshold = 5 * time.Minute

// ErrNoToken indicates no credential is stored for the provider. Any
// dependent operation is fatal without one.
var ErrNoToken = errors.New("no token available for provider")

// ErrNoRefreshToken indicates the stored credential is near expiry but
// carries no refresh token to renew it with
var ErrNoRefreshToken = errors.New("no refresh token available")

// credentialsRepository is the persistence surface the service needs
type credentialsRepository interface {
	UpsertCredential(ctx context.Context, credential *models.CredentialRecord) error
	GetCredentialByProvider(ctx context.Context, provider string) (mo.Option[*models.CredentialRecord], error)
	DeleteCredential(ctx context.Context, provider string) error
}

type TokensService struct {
	tokensRepo credentialsRepository
	mlsClient  clients.MLSClient
	provider   string
}

func NewTokensService(
	repo credentialsRepository,
	mlsClient clients.MLSClient,
	provider string,
) *TokensService {
	return &TokensService{
		tokensRepo: repo,
		mlsClient:  mlsClient,
		provider:   provider,
	}
}

// AcquireClientCredentials exchanges client credentials for a token pair and
// replaces the provider's stored credential
func (s *TokensService) AcquireClientCredentials(ctx context.Context) (*models.CredentialRecord, error) {
	log.Printf("📋 Starting client-credentials acquisition for provider: %s", s.provider)

	grant, err := s.mlsClient.AcquireClientCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire client credentials: %w", err)
	}

	credential := credentialFromGrant(s.provider, grant)
	if err := s.tokensRepo.UpsertCredential(ctx, credential); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}

	log.Printf("📋 Completed successfully - credential stored, expires at %s", credential.ExpiresAt.Format(time.RFC3339))
	return credential, nil
}

// ExchangeAuthCode exchanges an authorization code for a token pair and
// replaces the provider's stored credential
func (s *TokensService) ExchangeAuthCode(ctx context.Context, code string) (*models.CredentialRecord, error) {
	log.Printf("📋 Starting authorization-code exchange for provider: %s", s.provider)

	if code == "" {
		return nil, fmt.Errorf("authorization code cannot be empty")
	}

	grant, err := s.mlsClient.ExchangeAuthCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	credential := credentialFromGrant(s.provider, grant)
	if err := s.tokensRepo.UpsertCredential(ctx, credential); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}

	log.Printf("📋 Completed successfully - credential stored, expires at %s", credential.ExpiresAt.Format(time.RFC3339))
	return credential, nil
}

// RefreshIfNeeded inspects the stored credential and refreshes it only when
// its expiry is within the threshold window. Outside the window the call is
// a pure read; inside it, exactly one write occurs on success.
func (s *TokensService) RefreshIfNeeded(ctx context.Context) (*models.RefreshResult, error) {
	log.Printf("📋 Starting token refresh check for provider: %s", s.provider)

	maybeCred, err := s.tokensRepo.GetCredentialByProvider(ctx, s.provider)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	if !maybeCred.IsPresent() {
		return nil, ErrNoToken
	}

	credential := maybeCred.MustGet()
	timeLeft := credential.TimeLeft(time.Now())
	if timeLeft > refreshThreshold {
		minutesLeft := int(timeLeft.Minutes())
		log.Printf("📋 Completed successfully - token still valid for %d minutes, not refreshed", minutesLeft)
		return &models.RefreshResult{
			Refreshed:   false,
			MinutesLeft: minutesLeft,
			Credential:  credential,
		}, nil
	}

	if !credential.HasRefreshToken() {
		return nil, ErrNoRefreshToken
	}

	log.Printf("📋 Token expires in %v, refreshing", timeLeft.Round(time.Second))
	grant, err := s.mlsClient.RefreshAccessToken(ctx, *credential.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	credential.AccessToken = grant.AccessToken
	// Some upstreams omit the refresh token on refresh; keep the prior one
	if grant.RefreshToken != "" {
		credential.RefreshToken = &grant.RefreshToken
	}
	if grant.Scope != "" {
		credential.Scope = &grant.Scope
	}
	credential.TokenType = grant.TokenType
	credential.ExpiresAt = grant.ExpiresAt

	if err := s.tokensRepo.UpsertCredential(ctx, credential); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
	}

	log.Printf("📋 Completed successfully - token refreshed, expires at %s", credential.ExpiresAt.Format(time.RFC3339))
	return &models.RefreshResult{
		Refreshed:   true,
		MinutesLeft: int(time.Until(credential.ExpiresAt).Minutes()),
		Credential:  credential,
	}, nil
}

// RevokeCredential deletes the provider's stored credential. Returns
// core.ErrNotFound when no credential is stored.
func (s *TokensService) RevokeCredential(ctx context.Context) error {
	log.Printf("📋 Starting credential revocation for provider: %s", s.provider)

	if err := s.tokensRepo.DeleteCredential(ctx, s.provider); err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}

	log.Printf("📋 Completed successfully - credential revoked for provider: %s", s.provider)
	return nil
}

// GetCurrentCredential returns the provider's stored credential, if any
func (s *TokensService) GetCurrentCredential(ctx context.Context) (mo.Option[*models.CredentialRecord], error) {
	return s.tokensRepo.GetCredentialByProvider(ctx, s.provider)
}

func credentialFromGrant(provider string, grant *clients.TokenGrant) *models.CredentialRecord {
	credential := &models.CredentialRecord{
		ID:          core.NewID("tok"),
		Provider:    provider,
		AccessToken: grant.AccessToken,
		TokenType:   grant.TokenType,
		ExpiresAt:   grant.ExpiresAt,
	}
	if grant.RefreshToken != "" {
		credential.RefreshToken = &grant.RefreshToken
	}
	if grant.Scope != "" {
		credential.Scope = &grant.Scope
	}
	return credential
}
