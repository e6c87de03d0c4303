package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/sessions"
	"github.com/pkg/errors"
)

type universalInput struct {
	rc      *RequestContext
	client  *clients.Client
	req     *AuthorizeRequest
	session *sessions.Session
	login   *loginsession.LoginSession
}

// universalRule is one dispatch rule of the universal flow. Rules are
// evaluated in order; the first whose guard passes handles the request.
type universalRule struct {
	name   string
	guard  func(in *universalInput) bool
	handle func(ctx context.Context, in *universalInput) (*Result, error)
}

// universalAuth is the interactive login entry point. A login session
// is always created first so every hosted screen can resume the attempt
// by state.
func (s *Service) universalAuth(ctx context.Context, rc *RequestContext, client *clients.Client, req *AuthorizeRequest, session *sessions.Session) (*Result, error) {
	login := s.newLoginSession(rc, client.TenantID, req.Params)
	if err := s.repos.LoginSessions.Upsert(ctx, login); err != nil {
		return nil, errors.Wrap(err, "[Service.universalAuth] store login session")
	}

	in := &universalInput{rc: rc, client: client, req: req, session: session, login: login}
	for _, rule := range s.universalRules() {
		if rule.guard(in) {
			return rule.handle(ctx, in)
		}
	}
	return nil, errors.New("[Service.universalAuth] no rule matched")
}

func (s *Service) universalRules() []universalRule {
	return []universalRule{
		{
			// An active session whose user matches the login hint is
			// reused directly: no OTP, no provider redirect.
			name: "session-matches-hint",
			guard: func(in *universalInput) bool {
				return in.session != nil &&
					in.req.Prompt != oauthmodel.PromptLogin &&
					in.req.Params.Username != ""
			},
			handle: s.handleSessionHint,
		},
		{
			// connection=email with a known address: mail an OTP and
			// send the browser to the code-entry screen.
			name: "email-otp",
			guard: func(in *universalInput) bool {
				return in.req.Connection == emailConnection && in.req.Params.Username != ""
			},
			handle: s.handleEmailOTP,
		},
		{
			// A session that cannot be matched to the hint still short
			// circuits the identifier screen.
			name: "existing-session",
			guard: func(in *universalInput) bool {
				return in.session != nil && in.req.Prompt != oauthmodel.PromptLogin
			},
			handle: s.handleCheckAccount,
		},
		{
			name:   "identifier",
			guard:  func(*universalInput) bool { return true },
			handle: s.handleIdentifier,
		},
	}
}

func (s *Service) handleSessionHint(ctx context.Context, in *universalInput) (*Result, error) {
	user, err := s.repos.Users.GetByID(ctx, in.login.TenantID, in.session.UserID)
	if err == nil && strings.EqualFold(user.Email, in.req.Params.Username) {
		s.events.LoginSucceeded(in.login.TenantID, user.ID, user.Connection)
		return s.finishLogin(ctx, in.rc, in.login, user, in.session)
	}
	// Hint names a different account; let the user decide.
	return s.handleCheckAccount(ctx, in)
}

func (s *Service) handleEmailOTP(ctx context.Context, in *universalInput) (*Result, error) {
	otp, err := s.codes.Issue(ctx, in.login.TenantID, codes.IssueParams{
		Type:    codes.TypeOTP,
		LoginID: in.login.ID,
		TTL:     s.config.GetOTPExpiry(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.handleEmailOTP] issue OTP")
	}
	if err := s.email.SendOTP(ctx, in.login.TenantID, in.req.Params.Username, otp.ID); err != nil {
		return nil, errors.Wrap(err, "[Service.handleEmailOTP] send OTP")
	}
	return &Result{RedirectURL: s.screenURL(ScreenEnterCode, in.login.ID, nil)}, nil
}

func (s *Service) handleCheckAccount(_ context.Context, in *universalInput) (*Result, error) {
	return &Result{RedirectURL: s.screenURL(ScreenCheckAccount, in.login.ID, nil)}, nil
}

func (s *Service) handleIdentifier(_ context.Context, in *universalInput) (*Result, error) {
	var extra url.Values
	if in.req.Params.Username != "" {
		extra = url.Values{"login_hint": {in.req.Params.Username}}
	}
	return &Result{RedirectURL: s.screenURL(ScreenIdentifier, in.login.ID, extra)}, nil
}
