package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/strategies"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	redirect    *strategies.Redirect
	redirectErr error
	user        *strategies.UserInfo
	exchangeErr error
}

func (s *stubStrategy) GetRedirect(context.Context, *clients.Connection) (*strategies.Redirect, error) {
	return s.redirect, s.redirectErr
}

func (s *stubStrategy) ExchangeCodeForUser(context.Context, *clients.Connection, string, string) (*strategies.UserInfo, error) {
	return s.user, s.exchangeErr
}

func oidcConnection() clients.Connection {
	return clients.Connection{
		ID:       "conn-google",
		Name:     "google-oauth2",
		Strategy: "oidc",
	}
}

func TestConnectionAuth(t *testing.T) {
	t.Run("explicit connection redirects to the provider", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", oidcConnection())
		f.registry.Register("oidc", &stubStrategy{redirect: &strategies.Redirect{
			URL:          "https://accounts.google.example/auth?state=provider-state",
			Code:         "provider-state",
			CodeVerifier: "pkce-verifier",
		}})

		result, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{
			Params:     baseAuthParams(client.ID),
			Connection: "google-oauth2",
		})
		require.NoError(t, err)
		require.Equal(t, "https://accounts.google.example/auth?state=provider-state", result.RedirectURL)

		// the correlation state was persisted with connection and verifier
		code, err := f.issuer.Get(context.Background(), "tenant-a", "provider-state", codes.TypeOAuth2State)
		require.NoError(t, err)
		require.Equal(t, "conn-google", code.ConnectionID)
		require.Equal(t, "pkce-verifier", code.CodeVerifier)
		require.NotEmpty(t, code.LoginID)
	})

	t.Run("missing state is a 400", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", oidcConnection())
		f.registry.Register("oidc", &stubStrategy{redirect: &strategies.Redirect{URL: "https://p.example/auth", Code: "c"}})

		params := baseAuthParams(client.ID)
		params.State = ""
		_, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{
			Params:     params,
			Connection: "google-oauth2",
		})
		require.Error(t, err)
		require.Equal(t, http.StatusBadRequest, idperrors.HTTPStatus(err))
		require.True(t, idperrors.Is(err, idperrors.ErrMissingState))
	})

	t.Run("unknown connection is a 400", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", oidcConnection())

		_, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{
			Params:     baseAuthParams(client.ID),
			Connection: "no-such-connection",
		})
		require.Error(t, err)
		require.True(t, idperrors.Is(err, idperrors.ErrConnectionNotFound))
	})

	t.Run("single non-interactive connection skips the login UI", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", oidcConnection())
		f.registry.Register("oidc", &stubStrategy{redirect: &strategies.Redirect{
			URL:  "https://accounts.google.example/auth?state=auto",
			Code: "auto",
		}})

		result, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{Params: baseAuthParams(client.ID)})
		require.NoError(t, err)
		require.Equal(t, "https://accounts.google.example/auth?state=auto", result.RedirectURL)
	})

	t.Run("single interactive connection still shows the login UI", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", clients.Connection{ID: "conn-email", Name: "email", Strategy: "email"})

		result, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{Params: baseAuthParams(client.ID)})
		require.NoError(t, err)
		require.Contains(t, result.RedirectURL, "/u/login/identifier")
	})

	t.Run("unregistered strategy falls back to the raw authorization endpoint", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", clients.Connection{
			ID:       "conn-legacy",
			Name:     "legacy-idp",
			Strategy: "legacy",
			Options: clients.ConnectionOptions{
				AuthorizationEndpoint: "https://legacy.example/authorize",
				ClientID:              "legacy-client",
			},
		})

		result, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{
			Params:     baseAuthParams(client.ID),
			Connection: "legacy-idp",
		})
		require.NoError(t, err)

		parsed, query := parseRedirect(t, result.RedirectURL)
		require.Equal(t, "legacy.example", parsed.Hostname())
		require.Equal(t, "legacy-client", query.Get("client_id"))
		require.Equal(t, "code", query.Get("response_type"))
		require.NotEmpty(t, query.Get("state"))

		// the generated state doubles as a stored oauth2_state code
		_, err = f.issuer.Get(context.Background(), "tenant-a", query.Get("state"), codes.TypeOAuth2State)
		require.NoError(t, err)
	})

	t.Run("provider redirect failure surfaces as a user-facing error", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", oidcConnection())
		f.registry.Register("oidc", &stubStrategy{redirectErr: idperrors.ErrInternal})

		result, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{
			Params:     baseAuthParams(client.ID),
			Connection: "google-oauth2",
		})
		require.NoError(t, err)

		_, query := parseRedirect(t, result.RedirectURL)
		require.Equal(t, "access_denied", query.Get("error"))
		require.Equal(t, "connection failed", query.Get("error_description"))
	})
}
