package oauthmodel

// OAuth2/OIDC error codes forwarded to clients on the protocol error surface.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeAccessDenied   = "access_denied"
	ErrorCodeLoginRequired  = "login_required"
	ErrorCodeServerError    = "server_error"
	ErrorCodeTenantMismatch = "tenant_mismatch"
)

// ErrorResponse is the JSON body for 4xx/5xx protocol errors.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	State            string `json:"state,omitempty"`
}
