package sessions

import (
	"context"
	"time"
)

// Repo stores long-lived sessions, keyed by tenant. Expired records are
// garbage-collected by the store (TTL), not by the authorization core.
type Repo interface {
	Get(ctx context.Context, tenantID, sessionID string) (*Session, error)
	Upsert(ctx context.Context, session *Session) error
	Revoke(ctx context.Context, tenantID, sessionID string, at time.Time) error
	Delete(ctx context.Context, tenantID, sessionID string) error
}
