package users

import "context"

// Repo is the user directory consumed by the authorization core.
// All lookups are tenant scoped. GetByEmail matches case-insensitively;
// email comparison is case-insensitive everywhere in the core.
type Repo interface {
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, tenantID, id string) (*User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
	GetByProvider(ctx context.Context, tenantID, connection, providerSub string) (*User, error)
}
