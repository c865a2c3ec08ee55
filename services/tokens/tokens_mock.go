package tokens

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"mlsbridge/models"
)

// MockTokensService is a mock implementation of the TokensService interface
type MockTokensService struct {
	mock.Mock
}

func (m *MockTokensService) AcquireClientCredentials(ctx context.Context) (*models.CredentialRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CredentialRecord), args.Error(1)
}

func (m *MockTokensService) ExchangeAuthCode(ctx context.Context, code string) (*models.CredentialRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CredentialRecord), args.Error(1)
}

func (m *MockTokensService) RefreshIfNeeded(ctx context.Context) (*models.RefreshResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshResult), args.Error(1)
}

func (m *MockTokensService) GetCurrentCredential(ctx context.Context) (mo.Option[*models.CredentialRecord], error) {
	args := m.Called(ctx)
	return args.Get(0).(mo.Option[*models.CredentialRecord]), args.Error(1)
}

func (m *MockTokensService) RevokeCredential(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
