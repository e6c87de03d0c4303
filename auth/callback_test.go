package auth

import (
	"context"
	"net/http"
	"testing"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/strategies"
	"github.com/stretchr/testify/require"
)

// startConnectionFlow runs the provider hand-off and returns the state
// value the callback will present.
func startConnectionFlow(t *testing.T, f *testFixture, clientID string) string {
	t.Helper()
	result, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{
		Params:     baseAuthParams(clientID),
		Connection: "google-oauth2",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RedirectURL)
	return "provider-state"
}

func TestCallback(t *testing.T) {
	newFederatedFixture := func(t *testing.T, stub *stubStrategy) (*testFixture, string) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a", oidcConnection())
		if stub.redirect == nil {
			stub.redirect = &strategies.Redirect{
				URL:          "https://accounts.google.example/auth?state=provider-state",
				Code:         "provider-state",
				CodeVerifier: "pkce-verifier",
			}
		}
		f.registry.Register("oidc", stub)
		return f, client.ID
	}

	t.Run("successful round trip provisions the user and issues a code", func(t *testing.T) {
		f, clientID := newFederatedFixture(t, &stubStrategy{
			user: &strategies.UserInfo{Sub: "google-sub-1", Email: "jane@example.com", EmailVerified: true, Name: "Jane"},
		})
		state := startConnectionFlow(t, f, clientID)

		result, err := f.service.Callback(context.Background(), requestContext(), &CallbackRequest{
			State: state,
			Code:  "provider-code",
		})
		require.NoError(t, err)

		parsed, query := parseRedirect(t, result.RedirectURL)
		require.Equal(t, "app.example.com", parsed.Hostname())
		require.NotEmpty(t, query.Get("code"))
		require.Equal(t, "client-state", query.Get("state"))
		require.NotNil(t, result.Session)

		user, err := f.users.GetByProvider(context.Background(), "tenant-a", "google-oauth2", "google-sub-1")
		require.NoError(t, err)
		require.Equal(t, "jane@example.com", user.Email)
	})

	t.Run("state is consumed on first use", func(t *testing.T) {
		f, clientID := newFederatedFixture(t, &stubStrategy{
			user: &strategies.UserInfo{Sub: "google-sub-2", Email: "j2@example.com"},
		})
		state := startConnectionFlow(t, f, clientID)

		_, err := f.service.Callback(context.Background(), requestContext(), &CallbackRequest{State: state, Code: "c"})
		require.NoError(t, err)

		_, err = f.service.Callback(context.Background(), requestContext(), &CallbackRequest{State: state, Code: "c"})
		require.Error(t, err)
		require.Equal(t, http.StatusBadRequest, idperrors.HTTPStatus(err))
	})

	t.Run("unknown state is a 400", func(t *testing.T) {
		f, _ := newFederatedFixture(t, &stubStrategy{})
		_, err := f.service.Callback(context.Background(), requestContext(), &CallbackRequest{State: "bogus", Code: "c"})
		require.Error(t, err)
		require.Equal(t, http.StatusBadRequest, idperrors.HTTPStatus(err))
	})

	t.Run("provider error returns to the identifier screen", func(t *testing.T) {
		f, clientID := newFederatedFixture(t, &stubStrategy{})
		state := startConnectionFlow(t, f, clientID)

		result, err := f.service.Callback(context.Background(), requestContext(), &CallbackRequest{
			State:            state,
			Error:            "access_denied",
			ErrorDescription: "user cancelled",
		})
		require.NoError(t, err)

		parsed, query := parseRedirect(t, result.RedirectURL)
		require.Contains(t, parsed.Path, "/u/login/identifier")
		require.Equal(t, "access_denied", query.Get("error"))
		require.Equal(t, "user cancelled", query.Get("error_description"))
		require.NotEmpty(t, query.Get("state"))
	})

	t.Run("exchange failure surfaces as connection failed", func(t *testing.T) {
		f, clientID := newFederatedFixture(t, &stubStrategy{exchangeErr: idperrors.ErrInternal})
		state := startConnectionFlow(t, f, clientID)

		result, err := f.service.Callback(context.Background(), requestContext(), &CallbackRequest{State: state, Code: "c"})
		require.NoError(t, err)

		_, query := parseRedirect(t, result.RedirectURL)
		require.Equal(t, "access_denied", query.Get("error"))
		require.Equal(t, "connection failed", query.Get("error_description"))
	})

	t.Run("disabled signup denies unknown users", func(t *testing.T) {
		f := newTestFixture(t)
		connection := oidcConnection()
		connection.DisableSignup = true
		client := f.addClient(t, "tenant-a", connection)
		f.registry.Register("oidc", &stubStrategy{
			redirect: &strategies.Redirect{URL: "https://p.example/auth?state=s1", Code: "s1"},
			user:     &strategies.UserInfo{Sub: "nobody", Email: "nobody@example.com"},
		})

		_, err := f.service.Authorize(context.Background(), requestContext(), &AuthorizeRequest{
			Params:     baseAuthParams(client.ID),
			Connection: "google-oauth2",
		})
		require.NoError(t, err)

		result, err := f.service.Callback(context.Background(), requestContext(), &CallbackRequest{State: "s1", Code: "c"})
		require.NoError(t, err)

		_, query := parseRedirect(t, result.RedirectURL)
		require.Equal(t, "access_denied", query.Get("error"))
		require.Equal(t, "public signup is disabled", query.Get("error_description"))
	})

	t.Run("callback pins the tenant on the guard", func(t *testing.T) {
		f, clientID := newFederatedFixture(t, &stubStrategy{
			user: &strategies.UserInfo{Sub: "sub-g", Email: "g@example.com"},
		})
		state := startConnectionFlow(t, f, clientID)

		rc := requestContext()
		_, err := f.service.Callback(context.Background(), rc, &CallbackRequest{State: state, Code: "c"})
		require.NoError(t, err)
		require.Equal(t, "tenant-a", rc.Guard.TenantID())
	})
}
