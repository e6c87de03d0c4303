package auth

import (
	"context"

	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
)

// ticketAuth completes a login via a single-use ticket minted after an
// out-of-band authentication (/co/authenticate, signup, password
// reset). The ticket resolves to an already-authenticated session; the
// flow finishes under the current request's parameters.
func (s *Service) ticketAuth(ctx context.Context, rc *RequestContext, client *clients.Client, ticketID string, params oauthmodel.AuthParams) (*Result, error) {
	ticket, err := s.codes.RedeemOnce(ctx, client.TenantID, ticketID, codes.TypeTicket)
	if err != nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "login ticket is invalid or already used", err)
	}

	minted, err := s.repos.LoginSessions.Get(ctx, client.TenantID, ticket.LoginID)
	if err != nil || minted.Expired(s.nowTime()) {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "login session expired", idperrors.ErrLoginSessionGone)
	}
	if minted.SessionID == "" {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "login ticket is not authenticated", idperrors.ErrInvalidRequest)
	}

	session, err := s.repos.Sessions.Get(ctx, client.TenantID, minted.SessionID)
	if err != nil || !session.Active(s.nowTime()) {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "session expired", idperrors.ErrSessionExpired)
	}

	user, err := s.repos.Users.GetByID(ctx, client.TenantID, session.UserID)
	if err != nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "user not found", idperrors.ErrUserNotFound)
	}

	login := s.newLoginSession(rc, client.TenantID, params)
	s.events.LoginSucceeded(client.TenantID, user.ID, user.Connection)
	return s.finishLogin(ctx, rc, login, user, session)
}
