package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-idp-core/clients"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
)

// AuthorizeRequest is a parsed /authorize request. Params carries the
// protocol parameters; the remaining fields steer flow selection and
// web-message delivery.
type AuthorizeRequest struct {
	Params           oauthmodel.AuthParams
	Prompt           oauthmodel.PromptType
	Connection       string
	LoginTicket      string
	RequestJWT       string
	WebMessageURI    string
	WebMessageTarget string
}

var authorizeWildcards = WildcardOptions{AllowPathWildcards: true, AllowSubdomainWildcards: true}

// emailConnection is the built-in passwordless connection. It is
// interactive, so an explicit connection=email request still goes
// through the universal flow.
const emailConnection = "email"

// interactiveStrategies render a UI instead of redirecting straight to
// a provider, so they never qualify for the single-connection shortcut.
var interactiveStrategies = map[string]struct{}{
	"auth0": {},
	"email": {},
	"sms":   {},
}

// Authorize is the /authorize orchestrator. It resolves the client,
// pins the tenant, validates the request surface and dispatches to
// exactly one flow:
//
//  1. prompt=none            -> silent authentication
//  2. one viable connection  -> connection flow (skip the login UI)
//  3. explicit connection    -> connection flow (unless it is "email")
//  4. login_ticket           -> ticket flow
//  5. otherwise              -> universal login
func (s *Service) Authorize(ctx context.Context, rc *RequestContext, req *AuthorizeRequest) (*Result, error) {
	client, err := s.repos.Clients.Get(ctx, req.Params.ClientID)
	if err != nil {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "unknown client", err)
	}
	if err := rc.Guard.Set(client.TenantID); err != nil {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeTenantMismatch, "request spans tenants", err)
	}

	if req.RequestJWT != "" {
		if err := mergeRequestObject(req); err != nil {
			return nil, err
		}
	}

	// Fragments never survive a redirect round-trip; strip rather than reject.
	if idx := strings.Index(req.Params.RedirectURI, "#"); idx >= 0 {
		req.Params.RedirectURI = req.Params.RedirectURI[:idx]
	}

	if rc.Origin != "" && !client.HasWebOrigin(rc.Origin) {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeAccessDenied, "origin not allowed", idperrors.ErrOriginNotAllowed)
	}

	allowList := s.redirectAllowList(client)

	if req.Params.ResponseType == "" {
		// When the redirect target is trustworthy, bounce the error back
		// to the client application instead of dead-ending the browser.
		if req.Params.RedirectURI != "" && IsValidRedirectURL(req.Params.RedirectURI, allowList, authorizeWildcards) {
			values := url.Values{
				"error":             {oauthmodel.ErrorCodeInvalidRequest},
				"error_description": {"response_type is required"},
			}
			if req.Params.State != "" {
				values.Set("state", req.Params.State)
			}
			return &Result{RedirectURL: appendQuery(req.Params.RedirectURI, values)}, nil
		}
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "response_type is required", idperrors.ErrMissingResponseType)
	}
	if !oauthmodel.ResponseTypeValid(req.Params.ResponseType) {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "unsupported response_type", idperrors.ErrInvalidRequest)
	}
	if !oauthmodel.ResponseModeValid(req.Params.ResponseMode) {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "unsupported response_mode", idperrors.ErrInvalidRequest)
	}
	if req.Params.RedirectURI == "" {
		return nil, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "redirect_uri is required", idperrors.ErrInvalidRequest)
	}
	if !IsValidRedirectURL(req.Params.RedirectURI, allowList, authorizeWildcards) {
		return nil, idperrors.Forbidden(oauthmodel.ErrorCodeInvalidRequest, "redirect_uri not in allow-list", idperrors.ErrRedirectNotAllowed)
	}

	session := s.resolveSession(ctx, client.TenantID, rc.CookieHeader)

	if req.Prompt == oauthmodel.PromptNone {
		return s.silentAuth(ctx, rc, client, req, session)
	}
	if connection, ok := singleViableConnection(client); ok && req.Connection == "" {
		return s.connectionAuth(ctx, rc, client, connection.Name, req.Params)
	}
	if req.Connection != "" && req.Connection != emailConnection {
		return s.connectionAuth(ctx, rc, client, req.Connection, req.Params)
	}
	if req.LoginTicket != "" {
		return s.ticketAuth(ctx, rc, client, req.LoginTicket, req.Params)
	}
	return s.universalAuth(ctx, rc, client, req, session)
}

// redirectAllowList is the client's callbacks plus the server's own
// URLs (wildcarded), so hosted screens can round-trip through
// /authorize themselves.
func (s *Service) redirectAllowList(client *clients.Client) []string {
	allowList := append([]string{}, client.Callbacks...)
	allowList = append(allowList, strings.TrimSuffix(s.config.GetBaseURL(), "/")+"/*")
	if domain := s.config.GetCustomDomain(); domain != "" {
		allowList = append(allowList, strings.TrimSuffix(domain, "/")+"/*")
	}
	return allowList
}

// singleViableConnection reports the client's only connection when it
// is non-interactive, qualifying the request for the login-UI skip.
func singleViableConnection(client *clients.Client) (*clients.Connection, bool) {
	if len(client.Connections) != 1 {
		return nil, false
	}
	connection := &client.Connections[0]
	if _, interactive := interactiveStrategies[connection.Strategy]; interactive {
		return nil, false
	}
	return connection, true
}

// mergeRequestObject folds claims from the request JWT into the request,
// field by field, with query parameters taking precedence. The JWT is
// parsed without signature verification here; request-object signing
// policy is enforced upstream of this core.
func mergeRequestObject(req *AuthorizeRequest) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(req.RequestJWT, claims); err != nil {
		return idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "malformed request object", err)
	}
	str := func(key string) string {
		value, _ := claims[key].(string)
		return value
	}

	params := &req.Params
	if params.RedirectURI == "" {
		params.RedirectURI = str("redirect_uri")
	}
	if params.Scope == "" {
		params.Scope = str("scope")
	}
	if params.State == "" {
		params.State = str("state")
	}
	if params.Nonce == "" {
		params.Nonce = str("nonce")
	}
	if params.ResponseType == "" {
		params.ResponseType = oauthmodel.ResponseType(str("response_type"))
	}
	if params.ResponseMode == "" {
		params.ResponseMode = oauthmodel.ResponseModeType(str("response_mode"))
	}
	if params.CodeChallenge == "" {
		params.CodeChallenge = str("code_challenge")
	}
	if params.CodeChallengeMethod == "" {
		params.CodeChallengeMethod = oauthmodel.CodeMethodType(str("code_challenge_method"))
	}
	if params.Audience == "" {
		params.Audience = str("audience")
	}
	if params.Organization == "" {
		params.Organization = str("organization")
	}
	if params.Username == "" {
		params.Username = str("login_hint")
	}
	if params.ACRValues == "" {
		params.ACRValues = str("acr_values")
	}
	if params.MaxAge == 0 {
		if maxAge, ok := claims["max_age"].(float64); ok {
			params.MaxAge = int(maxAge)
		}
	}
	if req.Prompt == "" {
		req.Prompt = oauthmodel.PromptType(str("prompt"))
	}
	if req.Connection == "" {
		req.Connection = str("connection")
	}
	if req.LoginTicket == "" {
		req.LoginTicket = str("login_ticket")
	}
	return nil
}
