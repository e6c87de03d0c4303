package auth

import (
	"net/url"

	"github.com/jrsteele09/go-idp-core/sessions"
)

// Screen paths under /u/ the flows redirect to, always carrying the
// login-session id as state.
const (
	ScreenIdentifier   = "login/identifier"
	ScreenEnterCode    = "login/enter-code"
	ScreenCheckAccount = "login/check-account"
)

// SentinelEnding is the terminal state marker emitted by the hosted
// forms subsystem. It is propagated untouched and never resolves to a
// login session.
const SentinelEnding = "$ending"

// WebMessage is an authorization response delivered to the opener frame
// via postMessage instead of a redirect. RelayURI/RelayTarget are set
// when the client asked for an extra relay-frame indirection.
type WebMessage struct {
	Payload      map[string]any
	TargetOrigin string
	RelayURI     string
	RelayTarget  string
}

// FormPost is an authorization response delivered as an auto-submitting
// HTML form POSTed to the client's redirect_uri (response_mode=form_post).
type FormPost struct {
	TargetURL string
	Values    url.Values
}

// Result is the outcome of an authorization operation. Exactly one of
// RedirectURL, WebMessage and FormPost is set. Session, when non-nil,
// must be (re)written to the tenant's session cookie; ClearCookie
// removes it.
type Result struct {
	RedirectURL string
	WebMessage  *WebMessage
	FormPost    *FormPost
	Session     *sessions.Session
	ClearCookie bool
}

func appendQuery(base string, values url.Values) string {
	if len(values) == 0 {
		return base
	}
	separator := "?"
	if parsed, err := url.Parse(base); err == nil && parsed.RawQuery != "" {
		separator = "&"
	}
	return base + separator + values.Encode()
}

func appendFragment(base string, values url.Values) string {
	return base + "#" + values.Encode()
}

// originOf reduces a URL to its origin for postMessage targeting.
func originOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
