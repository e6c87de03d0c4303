package refresh

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-idp-core/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory refresh token store.
type InMemoryRepo struct {
	mu     sync.RWMutex
	tokens map[string]*StoredRefreshToken
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{tokens: make(map[string]*StoredRefreshToken)}
}

func (r *InMemoryRepo) Upsert(_ context.Context, token *StoredRefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, token string) (*StoredRefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.tokens[token]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}

func (r *InMemoryRepo) DeleteBySession(_ context.Context, tenantID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, stored := range r.tokens {
		if stored.TenantID == tenantID && stored.SessionID == sessionID {
			delete(r.tokens, key)
		}
	}
	return nil
}
