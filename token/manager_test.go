package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/token/refresh"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func newLogin(scope string) *loginsession.LoginSession {
	return &loginsession.LoginSession{
		ID:       "login-1",
		TenantID: "tenant-a",
		AuthParams: oauthmodel.AuthParams{
			ClientID: "client-1",
			Scope:    scope,
			Nonce:    "nonce-1",
		},
	}
}

func parseClaims(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestIssueForLogin(t *testing.T) {
	user := &users.User{ID: "user-1", Email: "jane@example.com", Name: "Jane"}
	refreshRepo := refresh.NewInMemoryRepo()
	manager := NewManager(testSecret, "https://idp.example.com", time.Hour, refresh.NewManager(refreshRepo, 32))

	t.Run("access token carries the expected claims", func(t *testing.T) {
		response, err := manager.IssueForLogin(context.Background(), newLogin("openid profile"), user, "session-1")
		require.NoError(t, err)
		require.Equal(t, "Bearer", response.TokenType)
		require.Equal(t, int64(3600), response.ExpiresIn)

		claims := parseClaims(t, response.AccessToken)
		require.Equal(t, "https://idp.example.com", claims["iss"])
		require.Equal(t, "user-1", claims["sub"])
		require.Equal(t, "client-1", claims["aud"])
		require.Equal(t, "session-1", claims["sid"])
	})

	t.Run("audience prefers the requested audience", func(t *testing.T) {
		login := newLogin("openid")
		login.AuthParams.Audience = "https://api.example.com"

		response, err := manager.IssueForLogin(context.Background(), login, user, "session-1")
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com", parseClaims(t, response.AccessToken)["aud"])
	})

	t.Run("ID token only with the openid scope", func(t *testing.T) {
		withOpenID, err := manager.IssueForLogin(context.Background(), newLogin("openid email"), user, "session-1")
		require.NoError(t, err)
		require.NotEmpty(t, withOpenID.IDToken)

		claims := parseClaims(t, withOpenID.IDToken)
		require.Equal(t, "jane@example.com", claims["email"])
		require.Equal(t, "nonce-1", claims["nonce"])

		withoutOpenID, err := manager.IssueForLogin(context.Background(), newLogin("profile"), user, "session-1")
		require.NoError(t, err)
		require.Empty(t, withoutOpenID.IDToken)
	})

	t.Run("refresh token only with offline_access", func(t *testing.T) {
		plain, err := manager.IssueForLogin(context.Background(), newLogin("openid"), user, "session-1")
		require.NoError(t, err)
		require.Empty(t, plain.RefreshToken)

		offline, err := manager.IssueForLogin(context.Background(), newLogin("openid offline_access"), user, "session-2")
		require.NoError(t, err)
		require.NotEmpty(t, offline.RefreshToken)

		stored, err := refreshRepo.Get(context.Background(), offline.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, "session-2", stored.SessionID)
	})

	t.Run("revoking a session deletes its refresh tokens", func(t *testing.T) {
		offline, err := manager.IssueForLogin(context.Background(), newLogin("openid offline_access"), user, "session-3")
		require.NoError(t, err)

		require.NoError(t, manager.RevokeForSession(context.Background(), "tenant-a", "session-3"))
		_, err = refreshRepo.Get(context.Background(), offline.RefreshToken)
		require.Error(t, err)
	})
}
