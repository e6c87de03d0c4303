package loginsession

import (
	"time"

	"github.com/jrsteele09/go-idp-core/oauthmodel"
)

// LoginSession identifies one in-progress authentication attempt. The
// captured AuthParams are immutable; the record is mutated only to
// attach a session id once the user authenticates, and never after
// expiry. TTL garbage collection happens in the store.
type LoginSession struct {
	ID               string                `json:"id"`
	TenantID         string                `json:"tenant_id"`
	CSRFToken        string                `json:"csrf_token,omitempty"`
	AuthParams       oauthmodel.AuthParams `json:"auth_params"`
	ExpiresAt        time.Time             `json:"expires_at"`
	SessionID        string                `json:"session_id,omitempty"`
	IP               string                `json:"ip,omitempty"`
	UserAgent        string                `json:"useragent,omitempty"`
	AuthorizationURL string                `json:"authorization_url,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// Expired reports whether the login session is past its expiry.
func (ls *LoginSession) Expired(now time.Time) bool {
	return !ls.ExpiresAt.IsZero() && now.After(ls.ExpiresAt)
}
