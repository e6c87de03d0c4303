package clients

// Connection is one federated identity provider configured on a client.
// Strategy names the protocol driver; Name disambiguates multiple
// instances of the same strategy on one client.
type Connection struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Strategy      string            `json:"strategy"`
	DisableSignup bool              `json:"disable_signup,omitempty"`
	Options       ConnectionOptions `json:"options,omitempty"`
}

// ConnectionOptions carries provider settings for connections that have
// no registered strategy object (legacy authorize-URL fallback) and the
// issuer/credentials the OIDC strategy needs.
type ConnectionOptions struct {
	Issuer                string `json:"issuer,omitempty"`
	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	ClientID              string `json:"client_id,omitempty"`
	ClientSecret          string `json:"client_secret,omitempty"`
	Scope                 string `json:"scope,omitempty"`
}

// Client is an OAuth2 application registered on a tenant.
type Client struct {
	ID                string       `json:"id"`
	TenantID          string       `json:"tenant_id"`
	Name              string       `json:"name,omitempty"`
	Callbacks         []string     `json:"callbacks,omitempty"`
	WebOrigins        []string     `json:"web_origins,omitempty"`
	AllowedLogoutURLs []string     `json:"allowed_logout_urls,omitempty"`
	Connections       []Connection `json:"connections,omitempty"`
}

// Connection returns the client's connection with the given name.
func (c *Client) Connection(name string) (*Connection, bool) {
	for i := range c.Connections {
		if c.Connections[i].Name == name {
			return &c.Connections[i], true
		}
	}
	return nil, false
}

// HasWebOrigin reports whether origin is in the client's origin allow-list.
func (c *Client) HasWebOrigin(origin string) bool {
	for _, o := range c.WebOrigins {
		if o == origin {
			return true
		}
	}
	return false
}
