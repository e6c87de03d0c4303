package clients

import "context"

// Repo is the client/connection directory consumed by the authorization
// core. Client ids are globally unique; the resolved client carries its
// tenant id.
type Repo interface {
	Get(ctx context.Context, clientID string) (*Client, error)

	// GetTenantDefault returns the tenant's default client, used to merge
	// logout URL allow-lists. Returns errors.ErrClientNotFound when the
	// tenant has no default client.
	GetTenantDefault(ctx context.Context, tenantID string) (*Client, error)
}
