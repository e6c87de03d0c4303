package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-idp-core/clients"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestLogout(t *testing.T) {
	t.Run("revokes the session and clears the cookie", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a")
		user := f.addUser(t, "tenant-a", "jane@example.com")
		session := f.addSession(t, "tenant-a", user.ID)

		rc := requestContext(sessionCookie("tenant-a", session.ID))
		result, err := f.service.Logout(context.Background(), rc, &LogoutRequest{
			ClientID: client.ID,
			ReturnTo: "https://app.example.com/loggedout",
		})
		require.NoError(t, err)
		require.Equal(t, "https://app.example.com/loggedout", result.RedirectURL)
		require.True(t, result.ClearCookie)

		stored, err := f.sessions.Get(context.Background(), "tenant-a", session.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.RevokedAt)
	})

	t.Run("disallowed returnTo is a 403", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a")

		_, err := f.service.Logout(context.Background(), requestContext(), &LogoutRequest{
			ClientID: client.ID,
			ReturnTo: "https://evil.example.net/",
		})
		require.Error(t, err)
		require.Equal(t, http.StatusForbidden, idperrors.HTTPStatus(err))
		require.True(t, idperrors.Is(err, idperrors.ErrRedirectNotAllowed))
	})

	t.Run("tenant default client allow-list is merged", func(t *testing.T) {
		f := newTestFixture(t)
		defaultClient := &clients.Client{
			ID:                "tenant-default",
			TenantID:          "tenant-a",
			AllowedLogoutURLs: []string{"https://portal.example.com/bye"},
		}
		f.clients.Upsert(defaultClient, true)
		client := &clients.Client{ID: "app-client", TenantID: "tenant-a"}
		f.clients.Upsert(client, false)

		result, err := f.service.Logout(context.Background(), requestContext(), &LogoutRequest{
			ClientID: client.ID,
			ReturnTo: "https://portal.example.com/bye",
		})
		require.NoError(t, err)
		require.Equal(t, "https://portal.example.com/bye", result.RedirectURL)
	})

	t.Run("no session still clears the cookie and redirects", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a")

		result, err := f.service.Logout(context.Background(), requestContext(), &LogoutRequest{
			ClientID: client.ID,
			ReturnTo: "https://app.example.com/loggedout",
		})
		require.NoError(t, err)
		require.True(t, result.ClearCookie)
	})

	t.Run("empty returnTo falls back to the server base URL", func(t *testing.T) {
		f := newTestFixture(t)
		client := f.addClient(t, "tenant-a")

		result, err := f.service.Logout(context.Background(), requestContext(), &LogoutRequest{ClientID: client.ID})
		require.NoError(t, err)
		require.Equal(t, f.cfg.GetBaseURL(), result.RedirectURL)
	})
}
