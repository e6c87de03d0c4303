package auth

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	"github.com/jrsteele09/go-idp-core/email"
	"github.com/jrsteele09/go-idp-core/internal/config"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/sessions"
	"github.com/jrsteele09/go-idp-core/strategies"
	"github.com/jrsteele09/go-idp-core/tenants"
	"github.com/jrsteele09/go-idp-core/token"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Repos groups the stores the authorization service depends on.
type Repos struct {
	Clients       clients.Repo
	Users         users.Repo
	Sessions      sessions.Repo
	LoginSessions loginsession.Repo
}

// RequestContext carries the per-request ambient inputs the flows need:
// the tenant guard, the caller's network identity and the raw Cookie
// header. Handlers build one per request.
type RequestContext struct {
	Guard        *tenants.Guard
	IP           string
	UserAgent    string
	Origin       string
	CookieHeader string
}

// Service orchestrates the authorization flows. It owns no HTTP
// concerns; handlers translate Results into responses.
type Service struct {
	repos       Repos
	codes       *codes.Issuer
	strategies  *strategies.Registry
	tokens      *token.Manager
	provisioner *users.Provisioner
	email       email.Sender
	events      *Events
	cookies     sessions.CookieCodec
	config      config.Config
	nowTime     func() time.Time
}

// ServiceOption modifies the Service.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithEmailSender replaces the default log-only OTP sender.
func WithEmailSender(sender email.Sender) ServiceOption {
	return func(s *Service) {
		s.email = sender
	}
}

func NewService(
	cfg config.Config,
	repos Repos,
	issuer *codes.Issuer,
	registry *strategies.Registry,
	tokens *token.Manager,
	log zerolog.Logger,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Clients == nil || repos.Users == nil || repos.Sessions == nil || repos.LoginSessions == nil {
		return nil, errors.New("[NewService] missing repository")
	}
	if issuer == nil {
		return nil, errors.New("[NewService] missing code issuer")
	}
	if registry == nil {
		return nil, errors.New("[NewService] missing strategy registry")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] missing token manager")
	}

	service := &Service{
		repos:       repos,
		codes:       issuer,
		strategies:  registry,
		tokens:      tokens,
		provisioner: users.NewProvisioner(repos.Users),
		email:       email.NewLogSender(log),
		events:      NewEvents(log),
		cookies:     sessions.NewCookieCodec(cfg.GetSilentAuthMaxAge()),
		config:      cfg,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Cookies exposes the session cookie codec to HTTP handlers.
func (s *Service) Cookies() sessions.CookieCodec {
	return s.cookies
}

func (s *Service) baseURL() string {
	if domain := s.config.GetCustomDomain(); domain != "" {
		return domain
	}
	return s.config.GetBaseURL()
}

func (s *Service) screenURL(screen, state string, extra url.Values) string {
	target := s.baseURL() + "/u/" + screen + "?state=" + url.QueryEscape(state)
	if len(extra) > 0 {
		target += "&" + extra.Encode()
	}
	return target
}

// resolveSession tries every value presented for the tenant's session
// cookie and returns the first active session. Values naming a missing,
// revoked, expired or foreign-tenant session are skipped.
func (s *Service) resolveSession(ctx context.Context, tenantID, cookieHeader string) *sessions.Session {
	now := s.nowTime()
	for _, value := range s.cookies.Parse(tenantID, cookieHeader) {
		session, err := s.repos.Sessions.Get(ctx, tenantID, value)
		if err != nil {
			continue
		}
		if session.TenantID != tenantID {
			continue
		}
		if !session.Active(now) {
			continue
		}
		return session
	}
	return nil
}

// newLoginSession builds (but does not store) a login session capturing
// the request parameters.
func (s *Service) newLoginSession(rc *RequestContext, tenantID string, params oauthmodel.AuthParams) *loginsession.LoginSession {
	now := s.nowTime()
	return &loginsession.LoginSession{
		ID:               uuid.New().String(),
		TenantID:         tenantID,
		CSRFToken:        uuid.New().String(),
		AuthParams:       params,
		ExpiresAt:        now.Add(s.config.GetLoginSessionExpiry()),
		IP:               rc.IP,
		UserAgent:        rc.UserAgent,
		AuthorizationURL: s.authorizationURL(params),
		CreatedAt:        now,
	}
}

// authorizationURL rebuilds the canonical /authorize URL for the
// captured parameters so interrupted flows can be restarted.
func (s *Service) authorizationURL(params oauthmodel.AuthParams) string {
	values := url.Values{}
	setIf := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	setIf("client_id", params.ClientID)
	setIf("redirect_uri", params.RedirectURI)
	setIf("scope", params.Scope)
	setIf("state", params.State)
	setIf("nonce", params.Nonce)
	setIf("response_type", string(params.ResponseType))
	setIf("response_mode", string(params.ResponseMode))
	setIf("code_challenge", params.CodeChallenge)
	setIf("code_challenge_method", string(params.CodeChallengeMethod))
	setIf("audience", params.Audience)
	setIf("organization", params.Organization)
	setIf("login_hint", params.Username)
	setIf("acr_values", params.ACRValues)
	return s.baseURL() + "/authorize?" + values.Encode()
}
