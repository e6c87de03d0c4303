package codes

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-idp-core/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory code store. The mutex makes MarkUsed a
// compare-and-set.
type InMemoryRepo struct {
	mu    sync.Mutex
	codes map[string]*Code // composite key tenant:type:id
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{codes: make(map[string]*Code)}
}

func codeKey(tenantID, id string, codeType Type) string {
	return tenantID + ":" + string(codeType) + ":" + id
}

func (r *InMemoryRepo) Create(_ context.Context, code *Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *code
	r.codes[codeKey(code.TenantID, code.ID, code.Type)] = &copied
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, tenantID, id string, codeType Type) (*Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[codeKey(tenantID, id, codeType)]
	if !ok {
		return nil, errors.ErrCodeNotFound
	}
	copied := *code
	return &copied, nil
}

func (r *InMemoryRepo) MarkUsed(_ context.Context, tenantID, id string, codeType Type, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[codeKey(tenantID, id, codeType)]
	if !ok {
		return false, errors.ErrCodeNotFound
	}
	if code.UsedAt != nil {
		return false, nil
	}
	code.UsedAt = &at
	return true, nil
}

func (r *InMemoryRepo) FindState(_ context.Context, id string) (*Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, code := range r.codes {
		if code.Type == TypeOAuth2State && code.ID == id {
			copied := *code
			return &copied, nil
		}
	}
	return nil, errors.ErrCodeNotFound
}

func (r *InMemoryRepo) Delete(_ context.Context, tenantID, id string, codeType Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.codes, codeKey(tenantID, id, codeType))
	return nil
}
