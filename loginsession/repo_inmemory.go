package loginsession

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-idp-core/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory login session store.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*LoginSession // tenantID -> id -> LoginSession
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{sessions: make(map[string]map[string]*LoginSession)}
}

func (r *InMemoryRepo) Get(_ context.Context, tenantID, id string) (*LoginSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tenantID][id]
	if !ok {
		return nil, errors.ErrLoginSessionGone
	}
	copied := *session
	return &copied, nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, session *LoginSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.TenantID]; !ok {
		r.sessions[session.TenantID] = make(map[string]*LoginSession)
	}
	copied := *session
	r.sessions[session.TenantID][session.ID] = &copied
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions[tenantID], id)
	return nil
}

func (r *InMemoryRepo) GetByState(_ context.Context, tenantID, state string) (*LoginSession, error) {
	if state == "" {
		return nil, errors.ErrLoginSessionGone
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions[tenantID] {
		if session.AuthParams.State == state {
			copied := *session
			return &copied, nil
		}
	}
	return nil, errors.ErrLoginSessionGone
}
