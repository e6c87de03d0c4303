package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-idp-core/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory session store.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session // tenantID -> sessionID -> Session
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{sessions: make(map[string]map[string]*Session)}
}

func (r *InMemoryRepo) Get(_ context.Context, tenantID, sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tenantID][sessionID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.TenantID]; !ok {
		r.sessions[session.TenantID] = make(map[string]*Session)
	}
	copied := *session
	r.sessions[session.TenantID][session.ID] = &copied
	return nil
}

func (r *InMemoryRepo) Revoke(_ context.Context, tenantID, sessionID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[tenantID][sessionID]
	if !ok {
		return errors.ErrNotFound
	}
	session.RevokedAt = &at
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, tenantID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions[tenantID], sessionID)
	return nil
}
