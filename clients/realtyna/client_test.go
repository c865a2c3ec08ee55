package realtyna

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlsbridge/core"
	"mlsbridge/models"
)

func newTestClient(baseURL string) *RealtynaClient {
	return NewRealtynaClient(Options{
		BaseURL:      baseURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		PageSize:     50,
	})
}

func TestRealtynaClient_AcquireClientCredentials(t *testing.T) {
	t.Run("successful exchange returns grant with computed expiry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/oauth/token", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.Equal(t, "client-id", r.PostForm.Get("client_id"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","expires_in":7200,"scope":"odata"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		before := time.Now()
		grant, err := client.AcquireClientCredentials(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "at-1", grant.AccessToken)
		assert.Equal(t, "rt-1", grant.RefreshToken)
		assert.Equal(t, "Bearer", grant.TokenType)
		assert.Equal(t, "odata", grant.Scope)
		assert.WithinDuration(t, before.Add(2*time.Hour), grant.ExpiresAt, 5*time.Second)
	})

	t.Run("missing expires_in defaults to one hour", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"at-1"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		grant, err := client.AcquireClientCredentials(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "bearer", grant.TokenType)
		assert.WithinDuration(t, time.Now().Add(time.Hour), grant.ExpiresAt, 5*time.Second)
	})

	t.Run("non-2xx response surfaces as UpstreamError with body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.AcquireClientCredentials(context.Background())

		var upstreamErr *core.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusForbidden, upstreamErr.StatusCode)
		assert.Contains(t, upstreamErr.Body, "invalid_client")
	})

	t.Run("unreachable server surfaces as NetworkError", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:1")
		_, err := client.AcquireClientCredentials(context.Background())

		var networkErr *core.NetworkError
		require.ErrorAs(t, err, &networkErr)
	})

	t.Run("missing credentials fail before any request", func(t *testing.T) {
		client := NewRealtynaClient(Options{BaseURL: "http://example.invalid"})
		_, err := client.AcquireClientCredentials(context.Background())

		var configErr *core.ConfigError
		require.ErrorAs(t, err, &configErr)
	})
}

func TestRealtynaClient_ExchangeAuthCode(t *testing.T) {
	t.Run("probing stops at the first accepted combination", func(t *testing.T) {
		var paths []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path != "/connect/token" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"at-code","refresh_token":"rt-code"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		grant, err := client.ExchangeAuthCode(context.Background(), "code-1")

		require.NoError(t, err)
		assert.Equal(t, "at-code", grant.AccessToken)
		// two /oauth/token attempts, then the first /connect/token wins
		assert.Equal(t, []string{"/oauth/token", "/oauth/token", "/connect/token"}, paths)
	})

	t.Run("all candidates rejected returns the last failure", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.ExchangeAuthCode(context.Background(), "code-1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "all token endpoint candidates failed")
		assert.Equal(t, len(authCodeCandidates), attempts)

		var upstreamErr *core.UpstreamError
		assert.ErrorAs(t, err, &upstreamErr)
	})

	t.Run("empty code is rejected locally", func(t *testing.T) {
		client := newTestClient("http://example.invalid")
		_, err := client.ExchangeAuthCode(context.Background(), "")
		require.Error(t, err)
	})
}

func TestRealtynaClient_RefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rt-old", r.PostForm.Get("refresh_token"))
		_, _ = w.Write([]byte(`{"access_token":"at-new"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	grant, err := client.RefreshAccessToken(context.Background(), "rt-old")

	require.NoError(t, err)
	assert.Equal(t, "at-new", grant.AccessToken)

	_, err = client.RefreshAccessToken(context.Background(), "")
	require.Error(t, err)
}

func TestRealtynaClient_FetchListings(t *testing.T) {
	t.Run("items and cursor resolve across key variants", func(t *testing.T) {
		bodies := []string{
			`{"items":[{"ListingKey":"A"}],"nextCursor":"c2"}`,
			`{"data":[{"ListingKey":"B"}],"next":"c3"}`,
			`{"listings":[{"ListingKey":"C"}],"cursor":"c4"}`,
		}
		for _, body := range bodies {
			respBody := body
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
				assert.Equal(t, "50", r.URL.Query().Get("limit"))
				_, _ = w.Write([]byte(respBody))
			}))

			client := newTestClient(server.URL)
			page, err := client.FetchListings(context.Background(), "token-1", nil)
			server.Close()

			require.NoError(t, err, respBody)
			require.Len(t, page.Items, 1)
			require.NotNil(t, page.NextCursor)
		}
	})

	t.Run("cursor is forwarded as a query parameter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "c9", r.URL.Query().Get("cursor"))
			_, _ = w.Write([]byte(`{"items":[]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		cursor := "c9"
		page, err := client.FetchListings(context.Background(), "token-1", &cursor)

		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("geographic filter parameters are included when configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Leelanau,Benzie", r.URL.Query().Get("counties"))
			assert.Equal(t, "MI", r.URL.Query().Get("state"))
			_, _ = w.Write([]byte(`{"items":[]}`))
		}))
		defer server.Close()

		client := NewRealtynaClient(Options{
			BaseURL:      server.URL,
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Counties:     []string{"Leelanau", "Benzie"},
			State:        "MI",
		})
		_, err := client.FetchListings(context.Background(), "token-1", nil)
		require.NoError(t, err)
	})
}

func TestRealtynaClient_FetchResource(t *testing.T) {
	t.Run("OData value and nextLink keys resolve", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/odata/Member", r.URL.Path)
			assert.Equal(t, "50", r.URL.Query().Get("$top"))
			_, _ = w.Write([]byte(`{"value":[{"MemberKey":"M1"},{"MemberKey":"M2"}],"@odata.nextLink":"https://api.example.com/odata/Member?$skip=50"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		page, err := client.FetchResource(context.Background(), "token-1", models.ResourceMembers, nil)

		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		require.NotNil(t, page.NextCursor)
		assert.Contains(t, *page.NextCursor, "$skip=50")
	})

	t.Run("absolute nextLink cursor is followed directly", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/odata/Member", r.URL.Path)
			assert.Equal(t, "50", r.URL.Query().Get("$skip"))
			_, _ = w.Write([]byte(`{"value":[]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		cursor := server.URL + "/odata/Member?$skip=50"
		page, err := client.FetchResource(context.Background(), "token-1", models.ResourceMembers, &cursor)

		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("unknown resource is rejected locally", func(t *testing.T) {
		client := newTestClient("http://example.invalid")
		_, err := client.FetchResource(context.Background(), "token-1", "bogus", nil)
		require.Error(t, err)
		assert.False(t, errors.As(err, new(*core.NetworkError)))
	})
}
