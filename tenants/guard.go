package tenants

import (
	"sync"

	"github.com/jrsteele09/go-idp-core/internal/errors"
)

// Guard is the request-scoped tenant id: settable exactly once per
// request, any later attempt to record a different tenant fails closed.
// It blocks a crafted request from getting one component to act on
// tenant A while another component believes tenant B.
type Guard struct {
	mu       sync.Mutex
	tenantID string
}

// NewGuard returns an unset guard for one request.
func NewGuard() *Guard {
	return &Guard{}
}

// Set records the tenant id. Setting the same value again is a no-op;
// setting a different value returns ErrTenantMismatch.
func (g *Guard) Set(tenantID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.tenantID == "" {
		g.tenantID = tenantID
		return nil
	}
	if g.tenantID != tenantID {
		return errors.ErrTenantMismatch
	}
	return nil
}

// TenantID returns the recorded tenant id, or "" if not yet set.
func (g *Guard) TenantID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tenantID
}
