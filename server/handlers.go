package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-idp-core/auth"
	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/jrsteele09/go-idp-core/oauthmodel"
	"github.com/jrsteele09/go-idp-core/tenants"
)

func (s *Server) requestContext(r *http.Request) *auth.RequestContext {
	return &auth.RequestContext{
		Guard:        tenants.NewGuard(),
		IP:           clientIP(r),
		UserAgent:    r.UserAgent(),
		Origin:       r.Header.Get("Origin"),
		CookieHeader: r.Header.Get("Cookie"),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// AuthorizeHandler is GET /authorize.
func (s *Server) AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := s.requestContext(r)
		req := authorizeRequestFromValues(r.URL.Query())

		result, err := s.auth.Authorize(r.Context(), rc, req)
		if err != nil {
			s.writeError(w, err, req.Params.State)
			return
		}
		s.writeResult(w, r, rc, result)
	}
}

// CallbackHandler is GET/POST /callback, the federated provider's
// return leg. POST covers providers using form_post.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				s.writeError(w, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "malformed form body", err), "")
				return
			}
			values = r.Form
		}

		rc := s.requestContext(r)
		result, err := s.auth.Callback(r.Context(), rc, &auth.CallbackRequest{
			State:            values.Get("state"),
			Code:             values.Get("code"),
			Error:            values.Get("error"),
			ErrorDescription: values.Get("error_description"),
		})
		if err != nil {
			s.writeError(w, err, "")
			return
		}
		s.writeResult(w, r, rc, result)
	}
}

// LogoutHandler is GET /v2/logout.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := s.requestContext(r)
		result, err := s.auth.Logout(r.Context(), rc, &auth.LogoutRequest{
			ClientID: r.URL.Query().Get("client_id"),
			ReturnTo: r.URL.Query().Get("returnTo"),
		})
		if err != nil {
			s.writeError(w, err, "")
			return
		}
		s.writeResult(w, r, rc, result)
	}
}

// CoAuthenticateHandler is POST /co/authenticate.
func (s *Server) CoAuthenticateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request auth.CoAuthRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.writeError(w, idperrors.BadRequest(oauthmodel.ErrorCodeInvalidRequest, "malformed JSON body", err), "")
			return
		}

		rc := s.requestContext(r)
		response, err := s.auth.CoAuthenticate(r.Context(), rc, &request)
		if err != nil {
			s.writeError(w, err, "")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

func authorizeRequestFromValues(values url.Values) *auth.AuthorizeRequest {
	maxAge, _ := strconv.Atoi(values.Get("max_age"))
	loginHint := values.Get("login_hint")
	if loginHint == "" {
		loginHint = values.Get("username")
	}
	return &auth.AuthorizeRequest{
		Params: oauthmodel.AuthParams{
			ClientID:            values.Get("client_id"),
			RedirectURI:         values.Get("redirect_uri"),
			Scope:               values.Get("scope"),
			State:               values.Get("state"),
			Nonce:               values.Get("nonce"),
			ResponseType:        oauthmodel.ResponseType(values.Get("response_type")),
			ResponseMode:        oauthmodel.ResponseModeType(values.Get("response_mode")),
			CodeChallenge:       values.Get("code_challenge"),
			CodeChallengeMethod: oauthmodel.CodeMethodType(values.Get("code_challenge_method")),
			Audience:            values.Get("audience"),
			Organization:        values.Get("organization"),
			Username:            loginHint,
			MaxAge:              maxAge,
			ACRValues:           values.Get("acr_values"),
		},
		Prompt:           oauthmodel.PromptType(values.Get("prompt")),
		Connection:       values.Get("connection"),
		LoginTicket:      values.Get("login_ticket"),
		RequestJWT:       values.Get("request"),
		WebMessageURI:    values.Get("web_message_uri"),
		WebMessageTarget: values.Get("web_message_target"),
	}
}

// writeResult applies the cookie side effects and delivers the response
// shape the flow chose.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, rc *auth.RequestContext, result *auth.Result) {
	codec := s.auth.Cookies()
	if result.Session != nil {
		http.SetCookie(w, codec.Serialize(result.Session.TenantID, result.Session.ID))
	} else if result.ClearCookie {
		if tenantID := rc.Guard.TenantID(); tenantID != "" {
			http.SetCookie(w, codec.Clear(tenantID))
		}
	}

	if result.WebMessage != nil {
		s.writeWebMessage(w, result.WebMessage)
		return
	}
	if result.FormPost != nil {
		s.writeFormPost(w, result.FormPost)
		return
	}
	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

func (s *Server) writeError(w http.ResponseWriter, err error, state string) {
	status := idperrors.HTTPStatus(err)
	response := oauthmodel.ErrorResponse{Error: oauthmodel.ErrorCodeServerError, State: state}

	var httpErr *idperrors.HTTPError
	if idperrors.As(err, &httpErr) {
		response.Error = httpErr.Code
		response.ErrorDescription = httpErr.Description
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
		// internal detail stays in the log
		response.ErrorDescription = ""
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
