package auth

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/pkg/errors"
)

const defaultProviderScope = "openid profile email"

// connectionAuth hands the browser to a federated provider. The
// correlation state is persisted as an oauth2_state code before the
// redirect so the callback can resume the attempt.
func (s *Service) connectionAuth(ctx context.Context, rc *RequestContext, client *clients.Client, connectionName string, params oauthmodel.AuthParams) (*Result, error) {
	if params.State == "" {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "state is required", idperrors.ErrMissingState)
	}

	connection, ok := client.Connection(connectionName)
	if !ok {
		s.events.LoginFailed(client.TenantID, connectionName, "connection not found")
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "connection not found", idperrors.ErrConnectionNotFound)
	}

	// Reuse the login session when the browser replays the same state
	// (back button, retry); otherwise start a fresh attempt.
	login, err := s.repos.LoginSessions.GetByState(ctx, client.TenantID, params.State)
	if err != nil || login.Expired(s.nowTime()) {
		login = s.newLoginSession(rc, client.TenantID, params)
		if err := s.repos.LoginSessions.Upsert(ctx, login); err != nil {
			return nil, errors.Wrap(err, "[Service.connectionAuth] store login session")
		}
	}

	strategy, err := s.strategies.Resolve(connection.Strategy)
	if idperrors.Is(err, idperrors.ErrStrategyNotFound) {
		return s.legacyAuthorizeRedirect(ctx, login, connection)
	}

	redirect, err := strategy.GetRedirect(ctx, connection)
	if err != nil {
		s.events.LoginFailed(client.TenantID, connectionName, "provider redirect failed")
		return s.connectionFailedRedirect(login), nil
	}

	if _, err := s.codes.IssueWithID(ctx, client.TenantID, redirect.Code, codes.IssueParams{
		Type:         codes.TypeOAuth2State,
		LoginID:      login.ID,
		ConnectionID: connection.ID,
		CodeVerifier: redirect.CodeVerifier,
		TTL:          s.config.GetOAuth2StateExpiry(),
	}); err != nil {
		return nil, errors.Wrap(err, "[Service.connectionAuth] store oauth2 state")
	}

	return &Result{RedirectURL: redirect.URL}, nil
}

// legacyAuthorizeRedirect covers connections configured with a raw
// authorization endpoint but no registered strategy. The generated
// oauth2_state code doubles as the provider state parameter.
func (s *Service) legacyAuthorizeRedirect(ctx context.Context, login *loginsession.LoginSession, connection *clients.Connection) (*Result, error) {
	if connection.Options.AuthorizationEndpoint == "" {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "connection has no usable strategy", idperrors.ErrStrategyNotFound)
	}

	code, err := s.codes.Issue(ctx, login.TenantID, codes.IssueParams{
		Type:         codes.TypeOAuth2State,
		LoginID:      login.ID,
		ConnectionID: connection.ID,
		TTL:          s.config.GetOAuth2StateExpiry(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.legacyAuthorizeRedirect] store oauth2 state")
	}

	scope := connection.Options.Scope
	if scope == "" {
		scope = defaultProviderScope
	}
	values := url.Values{}
	values.Set("client_id", connection.Options.ClientID)
	values.Set("redirect_uri", s.baseURL()+"/callback")
	values.Set("response_type", "code")
	values.Set("scope", scope)
	values.Set("state", code.ID)
	return &Result{RedirectURL: appendQuery(connection.Options.AuthorizationEndpoint, values)}, nil
}

// connectionFailedRedirect sends the user back to the identifier screen
// with a user-facing error instead of dead-ending on a provider fault.
func (s *Service) connectionFailedRedirect(login *loginsession.LoginSession) *Result {
	values := url.Values{
		"error":             {oauthmodel.ErrorCodeAccessDenied},
		"error_description": {"connection failed"},
	}
	return &Result{RedirectURL: s.screenURL(ScreenIdentifier, login.ID, values)}
}
