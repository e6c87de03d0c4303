package auth

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-idp-core/codes"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/sessions"
	"github.com/jrsteele09/go-idp-core/token"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/pkg/errors"
)

// establishSession creates a browser session for user, or refreshes the
// existing one: device info, interaction timestamps and the idle expiry
// are brought forward, the absolute expiry is not.
func (s *Service) establishSession(ctx context.Context, rc *RequestContext, tenantID string, user *users.User, existing *sessions.Session, loginSessionID string) (*sessions.Session, error) {
	now := s.nowTime()
	session := existing
	if session == nil {
		session = &sessions.Session{
			ID:        uuid.New().String(),
			TenantID:  tenantID,
			UserID:    user.ID,
			ExpiresAt: now.Add(s.config.GetSessionExpiry()),
			CreatedAt: now,
		}
	}
	session.Device = sessions.Device{LastIP: rc.IP, LastUserAgent: rc.UserAgent}
	session.LoginSessionID = loginSessionID
	session.UsedAt = now
	session.LastInteractionAt = now
	if session.IdleExpiresAt != nil {
		idle := now.Add(s.config.GetSilentAuthMaxAge())
		session.IdleExpiresAt = &idle
	}

	if err := s.repos.Sessions.Upsert(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[Service.establishSession] store session")
	}
	return session, nil
}

// finishLogin completes an authenticated login session: the browser
// session is bound to it, then the response is delivered per the
// captured response_type and response_mode. Tokens never travel in a
// query string; only authorization codes do.
func (s *Service) finishLogin(ctx context.Context, rc *RequestContext, login *loginsession.LoginSession, user *users.User, existing *sessions.Session) (*Result, error) {
	session, err := s.establishSession(ctx, rc, login.TenantID, user, existing, login.ID)
	if err != nil {
		return nil, err
	}

	login.SessionID = session.ID
	if err := s.repos.LoginSessions.Upsert(ctx, login); err != nil {
		return nil, errors.Wrap(err, "[Service.finishLogin] store login session")
	}

	params := login.AuthParams
	result := &Result{Session: session}

	if params.ResponseType == oauthmodel.CodeResponseType || params.ResponseType == "" {
		code, err := s.codes.Issue(ctx, login.TenantID, codes.IssueParams{
			Type:    codes.TypeOAuth2State,
			LoginID: login.ID,
			TTL:     s.config.GetOAuth2StateExpiry(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "[Service.finishLogin] issue authorization code")
		}
		values := url.Values{"code": {code.ID}}
		if params.State != "" {
			values.Set("state", params.State)
		}
		switch params.ResponseMode {
		case oauthmodel.WebMessageResponseMode:
			payload := map[string]any{"code": code.ID}
			if params.State != "" {
				payload["state"] = params.State
			}
			result.WebMessage = &WebMessage{Payload: payload, TargetOrigin: originOf(params.RedirectURI)}
		case oauthmodel.FormPostResponseMode:
			result.FormPost = &FormPost{TargetURL: params.RedirectURI, Values: values}
		case oauthmodel.FragmentResponseMode:
			result.RedirectURL = appendFragment(params.RedirectURI, values)
		default:
			result.RedirectURL = appendQuery(params.RedirectURI, values)
		}
		return result, nil
	}

	response, err := s.tokens.IssueForLogin(ctx, login, user, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.finishLogin] issue tokens")
	}
	switch params.ResponseMode {
	case oauthmodel.WebMessageResponseMode:
		result.WebMessage = &WebMessage{Payload: tokenPayload(response, params.State), TargetOrigin: originOf(params.RedirectURI)}
	case oauthmodel.FormPostResponseMode:
		result.FormPost = &FormPost{TargetURL: params.RedirectURI, Values: tokenValues(response, params.State)}
	default:
		result.RedirectURL = appendFragment(params.RedirectURI, tokenValues(response, params.State))
	}
	return result, nil
}

func tokenPayload(response *token.Response, state string) map[string]any {
	payload := map[string]any{
		"access_token": response.AccessToken,
		"token_type":   response.TokenType,
		"expires_in":   response.ExpiresIn,
	}
	if response.IDToken != "" {
		payload["id_token"] = response.IDToken
	}
	if response.Scope != "" {
		payload["scope"] = response.Scope
	}
	if state != "" {
		payload["state"] = state
	}
	return payload
}

func tokenValues(response *token.Response, state string) url.Values {
	values := url.Values{}
	values.Set("access_token", response.AccessToken)
	values.Set("token_type", response.TokenType)
	values.Set("expires_in", strconv.FormatInt(response.ExpiresIn, 10))
	if response.IDToken != "" {
		values.Set("id_token", response.IDToken)
	}
	if response.Scope != "" {
		values.Set("scope", response.Scope)
	}
	if state != "" {
		values.Set("state", state)
	}
	return values
}
