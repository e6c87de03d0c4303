package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	"github.com/jrsteele09/go-idp-core/internal/config"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/sessions"
	"github.com/jrsteele09/go-idp-core/strategies"
	"github.com/jrsteele09/go-idp-core/tenants"
	"github.com/jrsteele09/go-idp-core/token"
	"github.com/jrsteele09/go-idp-core/token/refresh"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	service  *Service
	clients  *clients.InMemoryRepo
	users    *users.InMemoryRepo
	sessions *sessions.InMemoryRepo
	logins   *loginsession.InMemoryRepo
	registry *strategies.Registry
	issuer   *codes.Issuer
	cfg      config.Config
}

func newTestFixture(t *testing.T, options ...ServiceOption) *testFixture {
	t.Helper()

	cfg := config.New()
	clientRepo := clients.NewInMemoryRepo()
	userRepo := users.NewInMemoryRepo()
	sessionRepo := sessions.NewInMemoryRepo()
	loginRepo := loginsession.NewInMemoryRepo()
	registry := strategies.NewRegistry()
	issuer := codes.NewIssuer(codes.NewInMemoryRepo())
	refreshManager := refresh.NewManager(refresh.NewInMemoryRepo(), cfg.GetRefreshTokenLength())
	tokens := token.NewManager("test-signing-secret", cfg.GetBaseURL(), cfg.GetAccessTokenExpiry(), refreshManager)

	service, err := NewService(cfg, Repos{
		Clients:       clientRepo,
		Users:         userRepo,
		Sessions:      sessionRepo,
		LoginSessions: loginRepo,
	}, issuer, registry, tokens, zerolog.Nop(), options...)
	require.NoError(t, err)

	return &testFixture{
		service:  service,
		clients:  clientRepo,
		users:    userRepo,
		sessions: sessionRepo,
		logins:   loginRepo,
		registry: registry,
		issuer:   issuer,
		cfg:      cfg,
	}
}

func (f *testFixture) addClient(t *testing.T, tenantID string, connections ...clients.Connection) *clients.Client {
	t.Helper()
	client := &clients.Client{
		ID:                "client-" + tenantID,
		TenantID:          tenantID,
		Callbacks:         []string{"https://app.example.com/cb"},
		WebOrigins:        []string{"https://app.example.com"},
		AllowedLogoutURLs: []string{"https://app.example.com/loggedout"},
		Connections:       connections,
	}
	f.clients.Upsert(client, true)
	return client
}

func (f *testFixture) addUser(t *testing.T, tenantID, email string) *users.User {
	t.Helper()
	user := &users.User{TenantID: tenantID, Email: email, EmailVerified: true}
	require.NoError(t, f.users.Upsert(context.Background(), user))
	return user
}

func (f *testFixture) addSession(t *testing.T, tenantID, userID string) *sessions.Session {
	t.Helper()
	session := &sessions.Session{
		ID:        "session-" + userID,
		TenantID:  tenantID,
		UserID:    userID,
		ExpiresAt: f.service.nowTime().Add(f.cfg.GetSessionExpiry()),
		CreatedAt: f.service.nowTime(),
	}
	require.NoError(t, f.sessions.Upsert(context.Background(), session))
	return session
}

func requestContext(tenantCookies ...string) *RequestContext {
	return &RequestContext{
		Guard:        tenants.NewGuard(),
		IP:           "203.0.113.10",
		UserAgent:    "test-agent",
		CookieHeader: strings.Join(tenantCookies, "; "),
	}
}

func sessionCookie(tenantID, sessionID string) string {
	return sessions.CookieName(tenantID) + "=" + sessionID
}

func baseAuthParams(clientID string) oauthmodel.AuthParams {
	return oauthmodel.AuthParams{
		ClientID:     clientID,
		RedirectURI:  "https://app.example.com/cb",
		ResponseType: oauthmodel.CodeResponseType,
		Scope:        "openid profile",
		State:        "client-state",
	}
}

func parseRedirect(t *testing.T, redirectURL string) (*url.URL, url.Values) {
	t.Helper()
	parsed, err := url.Parse(redirectURL)
	require.NoError(t, err)
	return parsed, parsed.Query()
}
