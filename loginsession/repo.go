package loginsession

import "context"

// Repo stores in-progress login sessions, keyed by tenant.
type Repo interface {
	Get(ctx context.Context, tenantID, id string) (*LoginSession, error)
	Upsert(ctx context.Context, session *LoginSession) error
	Delete(ctx context.Context, tenantID, id string) error

	// GetByState returns the login session whose captured auth params
	// carry the given state value. The connection flow reuses it when a
	// user navigates back mid-flow.
	GetByState(ctx context.Context, tenantID, state string) (*LoginSession, error)
}
