package codes

import (
	"context"
	"time"
)

// Repo stores single-use codes, keyed by tenant and (id, type).
//
// MarkUsed must be atomic relative to concurrent attempts for the same
// code: exactly one caller observes firstUse == true. A plain
// read-then-write implementation is a correctness bug under concurrency.
type Repo interface {
	Create(ctx context.Context, code *Code) error
	Get(ctx context.Context, tenantID, id string, codeType Type) (*Code, error)
	MarkUsed(ctx context.Context, tenantID, id string, codeType Type, at time.Time) (firstUse bool, err error)
	Delete(ctx context.Context, tenantID, id string, codeType Type) error

	// FindState resolves an oauth2_state code by id alone. The federated
	// callback arrives without a tenant; the 256-bit random state value is
	// the only correlation handle. Only oauth2_state codes are indexed
	// this way.
	FindState(ctx context.Context, id string) (*Code, error)
}
