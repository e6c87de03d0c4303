package auth

import (
	"context"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/pkg/errors"
)

var logoutWildcards = WildcardOptions{AllowPathWildcards: true}

// LogoutRequest is a parsed /v2/logout request.
type LogoutRequest struct {
	ClientID string
	ReturnTo string
}

// Logout revokes the browser session and its refresh tokens, clears the
// session cookie and bounces to returnTo. The returnTo target validates
// against the client's logout allow-list merged with the tenant default
// client's list; failures never leak whether a session existed.
func (s *Service) Logout(ctx context.Context, rc *RequestContext, req *LogoutRequest) (*Result, error) {
	client, err := s.repos.Clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "unknown client", err)
	}
	if err := rc.Guard.Set(client.TenantID); err != nil {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeTenantMismatch, "request spans tenants", err)
	}

	allowList := append([]string{}, client.AllowedLogoutURLs...)
	if tenantDefault, err := s.repos.Clients.GetTenantDefault(ctx, client.TenantID); err == nil && tenantDefault.ID != client.ID {
		allowList = append(allowList, tenantDefault.AllowedLogoutURLs...)
	}

	returnTo := req.ReturnTo
	if returnTo == "" {
		returnTo = s.baseURL()
	} else if !IsValidRedirectURL(returnTo, allowList, logoutWildcards) {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeInvalidRequest, "returnTo not in allow-list", idperrors.ErrRedirectNotAllowed)
	}

	if session := s.resolveSession(ctx, client.TenantID, rc.CookieHeader); session != nil {
		now := s.nowTime()
		if err := s.repos.Sessions.Revoke(ctx, client.TenantID, session.ID, now); err != nil {
			return nil, errors.Wrap(err, "[Service.Logout] revoke session")
		}
		if err := s.tokens.RevokeForSession(ctx, client.TenantID, session.ID); err != nil {
			return nil, errors.Wrap(err, "[Service.Logout] revoke refresh tokens")
		}
		s.events.LoggedOut(client.TenantID, session.UserID)
	}

	return &Result{RedirectURL: returnTo, ClearCookie: true}, nil
}
