package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-idp-core/auth"
	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	"github.com/jrsteele09/go-idp-core/internal/config"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/sessions"
	"github.com/jrsteele09/go-idp-core/strategies"
	"github.com/jrsteele09/go-idp-core/token"
	"github.com/jrsteele09/go-idp-core/token/refresh"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type serverFixture struct {
	server   *Server
	clients  *clients.InMemoryRepo
	users    *users.InMemoryRepo
	sessions *sessions.InMemoryRepo
	cfg      config.Config
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	cfg := config.New()
	clientRepo := clients.NewInMemoryRepo()
	userRepo := users.NewInMemoryRepo()
	sessionRepo := sessions.NewInMemoryRepo()
	loginRepo := loginsession.NewInMemoryRepo()
	refreshManager := refresh.NewManager(refresh.NewInMemoryRepo(), cfg.GetRefreshTokenLength())
	tokenManager := token.NewManager("test-signing-secret", cfg.GetBaseURL(), cfg.GetAccessTokenExpiry(), refreshManager)

	authService, err := auth.NewService(cfg, auth.Repos{
		Clients:       clientRepo,
		Users:         userRepo,
		Sessions:      sessionRepo,
		LoginSessions: loginRepo,
	}, codes.NewIssuer(codes.NewInMemoryRepo()), strategies.NewRegistry(), tokenManager, zerolog.Nop())
	require.NoError(t, err)

	srv, err := New(cfg, authService, zerolog.Nop())
	require.NoError(t, err)

	return &serverFixture{
		server:   srv,
		clients:  clientRepo,
		users:    userRepo,
		sessions: sessionRepo,
		cfg:      cfg,
	}
}

func (f *serverFixture) seedClient() *clients.Client {
	client := &clients.Client{
		ID:                "client-1",
		TenantID:          "tenant-a",
		Callbacks:         []string{"https://app.example.com/cb"},
		WebOrigins:        []string{"https://app.example.com"},
		AllowedLogoutURLs: []string{"https://app.example.com/loggedout"},
	}
	f.clients.Upsert(client, true)
	return client
}

func (f *serverFixture) seedSession(t *testing.T) (*users.User, *sessions.Session) {
	t.Helper()
	user := &users.User{TenantID: "tenant-a", Email: "jane@example.com"}
	require.NoError(t, f.users.Upsert(context.Background(), user))
	session := &sessions.Session{
		ID:        "session-1",
		TenantID:  "tenant-a",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.sessions.Upsert(context.Background(), session))
	return user, session
}

func TestAuthorizeEndpoint(t *testing.T) {
	t.Run("unknown client returns a JSON 400", func(t *testing.T) {
		f := newServerFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/authorize?client_id=nope&redirect_uri=https://app.example.com/cb&response_type=code", nil)
		w := httptest.NewRecorder()
		f.server.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, "invalid_request", body["error"])
	})

	t.Run("interactive login redirects to the identifier screen", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedClient()

		r := httptest.NewRequest(http.MethodGet, "/authorize?client_id=client-1&redirect_uri=https://app.example.com/cb&response_type=code&state=s1", nil)
		w := httptest.NewRecorder()
		f.server.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		require.Contains(t, w.Header().Get("Location"), "/u/login/identifier?state=")
	})

	t.Run("silent auth without a session posts login_required", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedClient()

		r := httptest.NewRequest(http.MethodGet, "/authorize?client_id=client-1&redirect_uri=https://app.example.com/cb&response_type=code&state=s1&prompt=none&response_mode=web_message", nil)
		w := httptest.NewRecorder()
		f.server.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "text/html")
		require.Contains(t, w.Body.String(), "login_required")
		require.Contains(t, w.Body.String(), "https://app.example.com")
		require.Empty(t, w.Result().Cookies())
	})

	t.Run("silent auth with a session posts a code and refreshes the cookie", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedClient()
		_, session := f.seedSession(t)

		r := httptest.NewRequest(http.MethodGet, "/authorize?client_id=client-1&redirect_uri=https://app.example.com/cb&response_type=code&state=s1&prompt=none&response_mode=web_message", nil)
		r.AddCookie(&http.Cookie{Name: sessions.CookieName("tenant-a"), Value: session.ID})
		w := httptest.NewRecorder()
		f.server.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "authorization_response")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, sessions.CookieName("tenant-a"), cookies[0].Name)
		require.Equal(t, session.ID, cookies[0].Value)
	})

	t.Run("stale cookie is cleared on silent failure", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedClient()

		r := httptest.NewRequest(http.MethodGet, "/authorize?client_id=client-1&redirect_uri=https://app.example.com/cb&response_type=code&prompt=none&response_mode=web_message", nil)
		r.AddCookie(&http.Cookie{Name: sessions.CookieName("tenant-a"), Value: "gone"})
		w := httptest.NewRecorder()
		f.server.ServeHTTP(w, r)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "", cookies[0].Value)
		require.Negative(t, cookies[0].MaxAge)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	f := newServerFixture(t)
	f.seedClient()
	_, session := f.seedSession(t)

	r := httptest.NewRequest(http.MethodGet, "/v2/logout?client_id=client-1&returnTo=https://app.example.com/loggedout", nil)
	r.AddCookie(&http.Cookie{Name: sessions.CookieName("tenant-a"), Value: session.ID})
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://app.example.com/loggedout", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "", cookies[0].Value)

	stored, err := f.sessions.Get(context.Background(), "tenant-a", session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RevokedAt)
}

func TestCoAuthenticateEndpoint(t *testing.T) {
	f := newServerFixture(t)
	f.seedClient()

	hash, err := users.HashPassword("hunter2!")
	require.NoError(t, err)
	require.NoError(t, f.users.Upsert(context.Background(), &users.User{
		TenantID:     "tenant-a",
		Email:        "jane@example.com",
		PasswordHash: hash,
	}))

	body, err := json.Marshal(auth.CoAuthRequest{
		ClientID:       "client-1",
		CredentialType: auth.CredentialTypePassword,
		Username:       "jane@example.com",
		Password:       "hunter2!",
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/co/authenticate", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var response auth.CoAuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.LoginTicket)
	require.NotEmpty(t, response.CoVerifier)
}

func TestScreenEndpoints(t *testing.T) {
	f := newServerFixture(t)

	t.Run("renders the login session state", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/u/login/identifier?state=ls-123", nil)
		w := httptest.NewRecorder()
		f.server.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `data-state="ls-123"`)
		require.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	})

	t.Run("the $ending sentinel renders the terminal page", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/u/login/enter-code?state=%24ending", nil)
		w := httptest.NewRecorder()
		f.server.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "You are signed in")
	})
}
