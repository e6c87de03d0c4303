package auth

import (
	"context"

	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/sessions"
	"github.com/pkg/errors"
)

// silentAuth handles prompt=none: authenticate from the existing
// session without any UI, or report login_required. Either way the
// response is a web-message document; silent auth runs in a hidden
// iframe and a redirect would be invisible to the client.
func (s *Service) silentAuth(ctx context.Context, rc *RequestContext, client *clients.Client, req *AuthorizeRequest, session *sessions.Session) (*Result, error) {
	// A cookie that did not resolve to an active session is stale;
	// clear it so the browser stops presenting it.
	hadCookie := len(s.cookies.Parse(client.TenantID, rc.CookieHeader)) > 0

	if session == nil {
		if hadCookie {
			s.events.SilentAuthFailed(client.TenantID, "session expired or revoked")
		} else {
			s.events.SilentAuthFailed(client.TenantID, "no session")
		}
		return s.silentFailure(req, hadCookie), nil
	}

	user, err := s.repos.Users.GetByID(ctx, client.TenantID, session.UserID)
	if err != nil {
		s.events.SilentAuthFailed(client.TenantID, "user not found")
		return s.silentFailure(req, true), nil
	}

	login := s.newLoginSession(rc, client.TenantID, req.Params)
	login.SessionID = session.ID
	if err := s.repos.LoginSessions.Upsert(ctx, login); err != nil {
		return nil, errors.Wrap(err, "[Service.silentAuth] store login session")
	}

	now := s.nowTime()
	session.LoginSessionID = login.ID
	session.UsedAt = now
	session.LastInteractionAt = now
	session.Device = sessions.Device{LastIP: rc.IP, LastUserAgent: rc.UserAgent}
	if session.IdleExpiresAt != nil {
		idle := now.Add(s.config.GetSilentAuthMaxAge())
		session.IdleExpiresAt = &idle
	}
	if err := s.repos.Sessions.Upsert(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[Service.silentAuth] refresh session")
	}

	payload := map[string]any{}
	if req.Params.State != "" {
		payload["state"] = req.Params.State
	}
	if req.Params.ResponseType == oauthmodel.CodeResponseType || req.Params.ResponseType == "" {
		code, err := s.codes.Issue(ctx, client.TenantID, codes.IssueParams{
			Type:    codes.TypeOAuth2State,
			LoginID: login.ID,
			TTL:     s.config.GetOAuth2StateExpiry(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "[Service.silentAuth] issue authorization code")
		}
		payload["code"] = code.ID
	} else {
		response, err := s.tokens.IssueForLogin(ctx, login, user, session.ID)
		if err != nil {
			return nil, errors.Wrap(err, "[Service.silentAuth] issue tokens")
		}
		payload = tokenPayload(response, req.Params.State)
	}

	s.events.SilentAuthSucceeded(client.TenantID, user.ID)
	return &Result{WebMessage: s.webMessage(req, payload), Session: session}, nil
}

// silentFailure is the login_required web message. Never an error
// return: the iframe must receive a well-formed postMessage.
func (s *Service) silentFailure(req *AuthorizeRequest, clearCookie bool) *Result {
	payload := map[string]any{
		"error":             oauthmodel.ErrorCodeLoginRequired,
		"error_description": "Login required",
	}
	if req.Params.State != "" {
		payload["state"] = req.Params.State
	}
	return &Result{WebMessage: s.webMessage(req, payload), ClearCookie: clearCookie}
}

func (s *Service) webMessage(req *AuthorizeRequest, payload map[string]any) *WebMessage {
	return &WebMessage{
		Payload:      payload,
		TargetOrigin: originOf(req.Params.RedirectURI),
		RelayURI:     req.WebMessageURI,
		RelayTarget:  req.WebMessageTarget,
	}
}
