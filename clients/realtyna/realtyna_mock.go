package realtyna

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mlsbridge/clients"
)

// MockMLSClient is a mock implementation of the clients.MLSClient interface
type MockMLSClient struct {
	mock.Mock
}

func (m *MockMLSClient) AcquireClientCredentials(ctx context.Context) (*clients.TokenGrant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.TokenGrant), args.Error(1)
}

func (m *MockMLSClient) ExchangeAuthCode(ctx context.Context, code string) (*clients.TokenGrant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.TokenGrant), args.Error(1)
}

func (m *MockMLSClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*clients.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.TokenGrant), args.Error(1)
}

func (m *MockMLSClient) FetchListings(
	ctx context.Context,
	accessToken string,
	cursor *string,
) (*clients.Page, error) {
	args := m.Called(ctx, accessToken, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Page), args.Error(1)
}

func (m *MockMLSClient) FetchResource(
	ctx context.Context,
	accessToken, resource string,
	cursor *string,
) (*clients.Page, error) {
	args := m.Called(ctx, accessToken, resource, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Page), args.Error(1)
}

var _ clients.MLSClient = (*MockMLSClient)(nil)
