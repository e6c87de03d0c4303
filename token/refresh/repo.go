package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server-side record for an opaque refresh
// token. The client only ever sees the Token string.
type StoredRefreshToken struct {
	Token     string
	TenantID  string
	UserID    string
	ClientID  string
	SessionID string
	Scope     string
	Iat       time.Time
}

// Repo manages server-side refresh token metadata, keyed by the token
// string. DeleteBySession supports logout revocation.
type Repo interface {
	Upsert(ctx context.Context, token *StoredRefreshToken) error
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteBySession(ctx context.Context, tenantID, sessionID string) error
}
