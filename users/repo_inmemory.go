package users

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-idp-core/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory user directory.
type InMemoryRepo struct {
	mu    sync.RWMutex
	users map[string]map[string]*User // tenantID -> userID -> User
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{users: make(map[string]map[string]*User)}
}

func (r *InMemoryRepo) Upsert(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if _, ok := r.users[user.TenantID]; !ok {
		r.users[user.TenantID] = make(map[string]*User)
	}
	copied := *user
	r.users[user.TenantID][user.ID] = &copied
	return nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, tenantID, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[tenantID][id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *InMemoryRepo) GetByEmail(_ context.Context, tenantID, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users[tenantID] {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (r *InMemoryRepo) GetByProvider(_ context.Context, tenantID, connection, providerSub string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users[tenantID] {
		if user.Connection == connection && user.ProviderSub == providerSub {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.ErrUserNotFound
}
