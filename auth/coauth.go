package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-idp-core/codes"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/pkg/errors"
)

// Credential types accepted by /co/authenticate.
const (
	CredentialTypeOTP      = "otp"
	CredentialTypePassword = "password-realm"
)

// CoAuthRequest is a cross-origin authentication request: the client
// application verifies credentials here, then redeems the returned
// ticket at /authorize to finish with a first-party cookie.
type CoAuthRequest struct {
	ClientID       string `json:"client_id"`
	CredentialType string `json:"credential_type"`
	Username       string `json:"username"`
	OTP            string `json:"otp,omitempty"`
	Password       string `json:"password,omitempty"`
	Realm          string `json:"realm,omitempty"`
}

// CoAuthResponse carries the single-use login ticket.
type CoAuthResponse struct {
	LoginTicket string `json:"login_ticket"`
	CoVerifier  string `json:"co_verifier"`
	CoID        string `json:"co_id"`
}

// CoAuthenticate verifies a credential and mints a login ticket bound
// to an authenticated session. Credential failures deliberately do not
// say which part was wrong.
func (s *Service) CoAuthenticate(ctx context.Context, rc *RequestContext, req *CoAuthRequest) (*CoAuthResponse, error) {
	client, err := s.repos.Clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "unknown client", err)
	}
	if err := rc.Guard.Set(client.TenantID); err != nil {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeTenantMismatch, "request spans tenants", err)
	}
	if req.Username == "" {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "username is required", idperrors.ErrInvalidRequest)
	}

	var user *users.User
	var login *loginsession.LoginSession

	switch req.CredentialType {
	case CredentialTypeOTP:
		if req.OTP == "" {
			return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "otp is required", idperrors.ErrInvalidRequest)
		}
		found, err := s.repos.Users.GetByEmail(ctx, client.TenantID, req.Username)
		if err != nil {
			s.events.LoginFailed(client.TenantID, emailConnection, "unknown email")
			return nil, idperrors.Forbidden(oauthmodel.ErrorCodeAccessDenied, "Wrong email or verification code.", idperrors.ErrUserNotFound)
		}
		code, err := s.codes.RedeemOnce(ctx, client.TenantID, req.OTP, codes.TypeOTP)
		if err != nil {
			s.events.LoginFailed(client.TenantID, emailConnection, "wrong or reused OTP")
			return nil, idperrors.Forbidden(oauthmodel.ErrorCodeAccessDenied, "Wrong email or verification code.", err)
		}
		login, err = s.repos.LoginSessions.Get(ctx, client.TenantID, code.LoginID)
		if err != nil || login.Expired(s.nowTime()) {
			return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "login session expired", idperrors.ErrLoginSessionGone)
		}
		// The OTP only proves control of the address it was mailed to,
		// recorded in the originating login session.
		if !strings.EqualFold(login.AuthParams.Username, req.Username) {
			s.events.LoginFailed(client.TenantID, emailConnection, "OTP issued for a different email")
			return nil, idperrors.Forbidden(oauthmodel.ErrorCodeAccessDenied, "Wrong email or verification code.", idperrors.ErrInvalidRequest)
		}
		user = found

	case CredentialTypePassword:
		if req.Password == "" {
			return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "password is required", idperrors.ErrInvalidRequest)
		}
		found, err := s.repos.Users.GetByEmail(ctx, client.TenantID, req.Username)
		if err != nil || !users.CheckPasswordHash(req.Password, found.PasswordHash) {
			s.events.LoginFailed(client.TenantID, req.Realm, "wrong email or password")
			return nil, idperrors.Forbidden(oauthmodel.ErrorCodeAccessDenied, "Wrong email or password.", idperrors.ErrWrongPassword)
		}
		user = found
		login = s.newLoginSession(rc, client.TenantID, oauthmodel.AuthParams{ClientID: client.ID, Username: req.Username})

	default:
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "unsupported credential_type", idperrors.ErrInvalidRequest)
	}

	// Bind an authenticated session now so the ticket redemption at
	// /authorize can resume it.
	session, err := s.establishSession(ctx, rc, client.TenantID, user, nil, login.ID)
	if err != nil {
		return nil, err
	}
	login.SessionID = session.ID
	if err := s.repos.LoginSessions.Upsert(ctx, login); err != nil {
		return nil, errors.Wrap(err, "[Service.CoAuthenticate] store login session")
	}

	ticket, err := s.codes.Issue(ctx, client.TenantID, codes.IssueParams{
		Type:    codes.TypeTicket,
		LoginID: login.ID,
		TTL:     s.config.GetTicketExpiry(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CoAuthenticate] issue ticket")
	}

	s.events.LoginSucceeded(client.TenantID, user.ID, user.Connection)
	return &CoAuthResponse{
		LoginTicket: ticket.ID,
		CoVerifier:  uuid.New().String(),
		CoID:        uuid.New().String(),
	}, nil
}
