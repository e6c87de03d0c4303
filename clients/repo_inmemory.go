package clients

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-idp-core/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory client directory.
type InMemoryRepo struct {
	mu             sync.RWMutex
	clients        map[string]*Client
	tenantDefaults map[string]string // tenantID -> clientID
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		clients:        make(map[string]*Client),
		tenantDefaults: make(map[string]string),
	}
}

// Upsert stores a client. markDefault makes it the tenant's default client.
func (r *InMemoryRepo) Upsert(client *Client, markDefault bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[client.ID] = client
	if markDefault {
		r.tenantDefaults[client.TenantID] = client.ID
	}
}

func (r *InMemoryRepo) Get(_ context.Context, clientID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[clientID]
	if !ok {
		return nil, errors.ErrClientNotFound
	}
	return client, nil
}

func (r *InMemoryRepo) GetTenantDefault(_ context.Context, tenantID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clientID, ok := r.tenantDefaults[tenantID]
	if !ok {
		return nil, errors.ErrClientNotFound
	}
	client, ok := r.clients[clientID]
	if !ok {
		return nil, errors.ErrClientNotFound
	}
	return client, nil
}
