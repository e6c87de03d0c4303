package oauthmodel

// ResponseType represents the OAuth 2.0 response type.
// Determines what is returned from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow: the
	// authorization endpoint returns a code to be exchanged for tokens.
	CodeResponseType ResponseType = "code"

	// TokenResponseType returns tokens directly from the authorization
	// endpoint. Used by silent auth iframes and legacy implicit clients.
	TokenResponseType ResponseType = "token"

	// IDTokenResponseType returns an ID token directly.
	IDTokenResponseType ResponseType = "id_token"
)

// ResponseModeType denotes how the authorization response parameters are
// returned to the client.
type ResponseModeType string

const (
	// QueryResponseMode returns parameters in the URL query string.
	QueryResponseMode ResponseModeType = "query"

	// FragmentResponseMode returns parameters in the URL fragment.
	FragmentResponseMode ResponseModeType = "fragment"

	// FormPostResponseMode returns parameters via an auto-submitting HTML form.
	FormPostResponseMode ResponseModeType = "form_post"

	// WebMessageResponseMode delivers parameters to the opener/parent frame
	// via postMessage. Used by silent authentication.
	WebMessageResponseMode ResponseModeType = "web_message"
)

// CodeMethodType represents the PKCE challenge method.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing of the code verifier.
	CodeMethodTypeS256 CodeMethodType = "S256"

	// CodeMethodTypeNone (labeled "plain") sends the verifier unhashed.
	CodeMethodTypeNone CodeMethodType = "plain"
)

// PromptType is the OIDC prompt parameter.
type PromptType string

const (
	// PromptNone requests non-interactive (silent) authentication.
	PromptNone PromptType = "none"

	// PromptLogin forces re-authentication even with a live session.
	PromptLogin PromptType = "login"
)

// AuthParams holds the OAuth2/OIDC request parameters carried through one
// login attempt. Immutable once captured into a login session.
type AuthParams struct {
	ClientID            string           `json:"client_id"`
	RedirectURI         string           `json:"redirect_uri,omitempty"`
	Scope               string           `json:"scope,omitempty"`
	State               string           `json:"state,omitempty"`
	Nonce               string           `json:"nonce,omitempty"`
	ResponseType        ResponseType     `json:"response_type,omitempty"`
	ResponseMode        ResponseModeType `json:"response_mode,omitempty"`
	CodeChallenge       string           `json:"code_challenge,omitempty"`
	CodeChallengeMethod CodeMethodType   `json:"code_challenge_method,omitempty"`
	Audience            string           `json:"audience,omitempty"`
	Organization        string           `json:"organization,omitempty"`
	Username            string           `json:"username,omitempty"` // login hint
	MaxAge              int              `json:"max_age,omitempty"`
	ACRValues           string           `json:"acr_values,omitempty"`
}

// ResponseModeValid reports whether the response mode is one we support.
func ResponseModeValid(responseMode ResponseModeType) bool {
	switch responseMode {
	case "", QueryResponseMode, FragmentResponseMode, FormPostResponseMode, WebMessageResponseMode:
		return true
	}
	return false
}

// ResponseTypeValid reports whether the response type is one we support.
func ResponseTypeValid(responseType ResponseType) bool {
	switch responseType {
	case CodeResponseType, TokenResponseType, IDTokenResponseType:
		return true
	}
	return false
}
