package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OAuth2 / OIDC endpoints
	RouteAuthorize      = "/authorize"
	RouteCallback       = "/callback"
	RouteLogout         = "/v2/logout"
	RouteCoAuthenticate = "/co/authenticate"

	// Hosted login screens. The state query parameter carries the
	// login-session id.
	RouteScreenIdentifier   = "/u/login/identifier"
	RouteScreenEnterCode    = "/u/login/enter-code"
	RouteScreenCheckAccount = "/u/login/check-account"
)
