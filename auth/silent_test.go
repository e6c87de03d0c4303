package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestSilentAuth(t *testing.T) {
	f := newTestFixture(t)
	client := f.addClient(t, "tenant-a")

	silentRequest := func() *AuthorizeRequest {
		params := baseAuthParams(client.ID)
		params.ResponseMode = oauthmodel.WebMessageResponseMode
		return &AuthorizeRequest{Params: params, Prompt: oauthmodel.PromptNone}
	}

	t.Run("no session yields login_required", func(t *testing.T) {
		result, err := f.service.Authorize(context.Background(), requestContext(), silentRequest())
		require.NoError(t, err)
		require.NotNil(t, result.WebMessage)

		require.Equal(t, oauthmodel.ErrorCodeLoginRequired, result.WebMessage.Payload["error"])
		require.Equal(t, "Login required", result.WebMessage.Payload["error_description"])
		require.Equal(t, "client-state", result.WebMessage.Payload["state"])
		require.Equal(t, "https://app.example.com", result.WebMessage.TargetOrigin)
		require.False(t, result.ClearCookie)
	})

	t.Run("stale cookie yields login_required and clears the cookie", func(t *testing.T) {
		rc := requestContext(sessionCookie("tenant-a", "no-such-session"))
		result, err := f.service.Authorize(context.Background(), rc, silentRequest())
		require.NoError(t, err)
		require.Equal(t, oauthmodel.ErrorCodeLoginRequired, result.WebMessage.Payload["error"])
		require.True(t, result.ClearCookie)
	})

	t.Run("active session yields a code without any UI", func(t *testing.T) {
		user := f.addUser(t, "tenant-a", "jane@example.com")
		session := f.addSession(t, "tenant-a", user.ID)

		rc := requestContext(sessionCookie("tenant-a", session.ID))
		result, err := f.service.Authorize(context.Background(), rc, silentRequest())
		require.NoError(t, err)
		require.NotNil(t, result.WebMessage)
		require.NotEmpty(t, result.WebMessage.Payload["code"])
		require.Equal(t, "client-state", result.WebMessage.Payload["state"])
		require.NotNil(t, result.Session)
		require.Equal(t, session.ID, result.Session.ID)

		// interaction timestamps were brought forward
		stored, err := f.sessions.Get(context.Background(), "tenant-a", session.ID)
		require.NoError(t, err)
		require.False(t, stored.LastInteractionAt.IsZero())
		require.NotEmpty(t, stored.LoginSessionID)
	})

	t.Run("idle expiry is extended on success", func(t *testing.T) {
		user := f.addUser(t, "tenant-a", "idle@example.com")
		session := f.addSession(t, "tenant-a", user.ID)
		soon := time.Now().Add(time.Hour)
		session.IdleExpiresAt = &soon
		require.NoError(t, f.sessions.Upsert(context.Background(), session))

		rc := requestContext(sessionCookie("tenant-a", session.ID))
		_, err := f.service.Authorize(context.Background(), rc, silentRequest())
		require.NoError(t, err)

		stored, err := f.sessions.Get(context.Background(), "tenant-a", session.ID)
		require.NoError(t, err)
		require.True(t, stored.IdleExpiresAt.After(soon))
	})

	t.Run("token response_type returns tokens in the payload", func(t *testing.T) {
		user := f.addUser(t, "tenant-a", "tokens@example.com")
		session := f.addSession(t, "tenant-a", user.ID)

		req := silentRequest()
		req.Params.ResponseType = oauthmodel.TokenResponseType

		rc := requestContext(sessionCookie("tenant-a", session.ID))
		result, err := f.service.Authorize(context.Background(), rc, req)
		require.NoError(t, err)
		require.NotEmpty(t, result.WebMessage.Payload["access_token"])
		require.NotEmpty(t, result.WebMessage.Payload["id_token"])
		require.Equal(t, "Bearer", result.WebMessage.Payload["token_type"])
	})

	t.Run("web message relay fields are propagated", func(t *testing.T) {
		req := silentRequest()
		req.WebMessageURI = "https://app.example.com/relay"
		req.WebMessageTarget = "relayFrame"

		result, err := f.service.Authorize(context.Background(), requestContext(), req)
		require.NoError(t, err)
		require.Equal(t, "https://app.example.com/relay", result.WebMessage.RelayURI)
		require.Equal(t, "relayFrame", result.WebMessage.RelayTarget)
	})
}
