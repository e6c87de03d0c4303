package token

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/token/refresh"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/pkg/errors"
)

// Manager issues token responses for completed login sessions. Signing
// is a single HMAC secret; key rotation and asymmetric signing live
// outside this core.
type Manager struct {
	signingSecret []byte
	issuer        string
	accessTTL     time.Duration
	refresh       *refresh.Manager
	nowTime       func() time.Time
}

// ManagerOption modifies the Manager.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(signingSecret, issuer string, accessTTL time.Duration, refreshManager *refresh.Manager, options ...ManagerOption) *Manager {
	m := &Manager{
		signingSecret: []byte(signingSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refresh:       refreshManager,
		nowTime:       time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// IssueForLogin builds the token response for an authenticated login
// session. A refresh token is included only when the captured scope
// requested offline_access.
func (m *Manager) IssueForLogin(ctx context.Context, login *loginsession.LoginSession, user *users.User, sessionID string) (*Response, error) {
	now := m.nowTime()
	params := login.AuthParams

	audience := params.Audience
	if audience == "" {
		audience = params.ClientID
	}

	accessClaims := jwt.MapClaims{
		"iss": m.issuer,
		"sub": user.ID,
		"aud": audience,
		"iat": now.Unix(),
		"exp": now.Add(m.accessTTL).Unix(),
		"sid": sessionID,
	}
	if params.Scope != "" {
		accessClaims["scope"] = params.Scope
	}
	if params.Organization != "" {
		accessClaims["org_id"] = params.Organization
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(m.signingSecret)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.IssueForLogin] sign access token")
	}

	response := &Response{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(m.accessTTL.Seconds()),
		Scope:       params.Scope,
	}

	if strings.Contains(params.Scope, "openid") {
		idClaims := jwt.MapClaims{
			"iss":   m.issuer,
			"sub":   user.ID,
			"aud":   params.ClientID,
			"iat":   now.Unix(),
			"exp":   now.Add(m.accessTTL).Unix(),
			"sid":   sessionID,
			"email": user.Email,
		}
		if user.Name != "" {
			idClaims["name"] = user.Name
		}
		if params.Nonce != "" {
			idClaims["nonce"] = params.Nonce
		}
		idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, idClaims).SignedString(m.signingSecret)
		if err != nil {
			return nil, errors.Wrap(err, "[Manager.IssueForLogin] sign ID token")
		}
		response.IDToken = idToken
	}

	if strings.Contains(params.Scope, "offline_access") {
		refreshToken, err := m.refresh.Create(ctx, login.TenantID, params.ClientID, user.ID, sessionID, params.Scope)
		if err != nil {
			return nil, errors.Wrap(err, "[Manager.IssueForLogin] create refresh token")
		}
		response.RefreshToken = refreshToken
	}

	return response, nil
}

// RevokeForSession revokes the refresh tokens bound to a session.
func (m *Manager) RevokeForSession(ctx context.Context, tenantID, sessionID string) error {
	return m.refresh.RevokeForSession(ctx, tenantID, sessionID)
}
