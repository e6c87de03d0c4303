package auth

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-idp-core/clients"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/pkg/errors"
)

// CallbackRequest is the federated provider's redirect back to us.
type CallbackRequest struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

// Callback resumes a login attempt after the provider round-trip. The
// state value is the only correlation handle; it resolves tenant, login
// session and connection in one lookup and is consumed in the process.
func (s *Service) Callback(ctx context.Context, rc *RequestContext, req *CallbackRequest) (*Result, error) {
	if req.State == "" {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "state is required", idperrors.ErrMissingState)
	}

	stateCode, err := s.codes.ConsumeState(ctx, req.State)
	if err != nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "state is invalid or already used", err)
	}
	if err := rc.Guard.Set(stateCode.TenantID); err != nil {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeTenantMismatch, "request spans tenants", err)
	}

	login, err := s.repos.LoginSessions.Get(ctx, stateCode.TenantID, stateCode.LoginID)
	if err != nil || login.Expired(s.nowTime()) {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "login session expired", idperrors.ErrLoginSessionGone)
	}

	if req.Error != "" {
		// Provider said no. Back to the identifier screen with the
		// provider's error; the attempt stays resumable.
		s.events.LoginFailed(login.TenantID, stateCode.ConnectionID, req.Error)
		values := url.Values{"error": {req.Error}}
		if req.ErrorDescription != "" {
			values.Set("error_description", req.ErrorDescription)
		}
		return &Result{RedirectURL: s.screenURL(ScreenIdentifier, login.ID, values)}, nil
	}
	if req.Code == "" {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "code is required", idperrors.ErrInvalidRequest)
	}

	client, err := s.repos.Clients.Get(ctx, login.AuthParams.ClientID)
	if err != nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "unknown client", err)
	}
	if err := rc.Guard.Set(client.TenantID); err != nil {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeTenantMismatch, "request spans tenants", err)
	}

	connection := connectionByID(client, stateCode.ConnectionID)
	if connection == nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "connection not found", idperrors.ErrConnectionNotFound)
	}

	strategy, err := s.strategies.Resolve(connection.Strategy)
	if err != nil {
		s.events.LoginFailed(login.TenantID, connection.Name, "strategy not registered")
		return s.connectionFailedRedirect(login), nil
	}

	userInfo, err := strategy.ExchangeCodeForUser(ctx, connection, req.Code, stateCode.CodeVerifier)
	if err != nil {
		s.events.LoginFailed(login.TenantID, connection.Name, "code exchange failed")
		return s.connectionFailedRedirect(login), nil
	}

	user, err := s.provisioner.ProvisionFederated(ctx, login.TenantID, connection.Name, users.FederatedIdentity{
		Sub:           userInfo.Sub,
		Email:         userInfo.Email,
		EmailVerified: userInfo.EmailVerified,
		Name:          userInfo.Name,
	}, connection.DisableSignup)
	if idperrors.Is(err, idperrors.ErrSignupDisabled) {
		s.events.LoginFailed(login.TenantID, connection.Name, "public signup is disabled")
		values := url.Values{
			"error":             {oauthmodel.ErrorCodeAccessDenied},
			"error_description": {"public signup is disabled"},
		}
		return &Result{RedirectURL: s.screenURL(ScreenIdentifier, login.ID, values)}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Callback] provision user")
	}

	session := s.resolveSession(ctx, login.TenantID, rc.CookieHeader)
	s.events.LoginSucceeded(login.TenantID, user.ID, connection.Name)
	return s.finishLogin(ctx, rc, login, user, session)
}

func connectionByID(client *clients.Client, id string) *clients.Connection {
	for i := range client.Connections {
		if client.Connections[i].ID == id {
			return &client.Connections[i]
		}
	}
	return nil
}
