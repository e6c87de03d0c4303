package strategies

import (
	"context"

	"github.com/jrsteele09/go-idp-core/clients"
)

// UserInfo is the normalized identity a federated provider reports
// after a successful code exchange.
type UserInfo struct {
	Sub           string         `json:"sub"`
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	Name          string         `json:"name,omitempty"`
	Raw           map[string]any `json:"-"`
}

// Redirect describes the provider hand-off built by a strategy: the URL
// to send the browser to, the correlation code embedded in it, and the
// PKCE verifier to replay on exchange (if the strategy uses PKCE).
type Redirect struct {
	URL          string
	Code         string
	CodeVerifier string
}

// Strategy drives one federated identity provider's redirect-and-exchange
// protocol. Implementations must be safe for concurrent use; the registry
// is read-only after startup.
type Strategy interface {
	GetRedirect(ctx context.Context, connection *clients.Connection) (*Redirect, error)
	ExchangeCodeForUser(ctx context.Context, connection *clients.Connection, code, codeVerifier string) (*UserInfo, error)
}
