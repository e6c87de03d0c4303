package users

import (
	"context"
	"time"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/pkg/errors"
)

// FederatedIdentity is the normalized profile returned by a federated
// provider after code exchange.
type FederatedIdentity struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
}

// Provisioner matches or creates local users for federated identities.
type Provisioner struct {
	repo    Repo
	nowTime func() time.Time
}

func NewProvisioner(repo Repo) *Provisioner {
	return &Provisioner{repo: repo, nowTime: time.Now}
}

// ProvisionFederated finds the user by (connection, sub) or creates one.
// When the connection disables public signup, a missing user surfaces as
// errors.ErrSignupDisabled instead of being created.
func (p *Provisioner) ProvisionFederated(ctx context.Context, tenantID, connection string, identity FederatedIdentity, signupDisabled bool) (*User, error) {
	user, err := p.repo.GetByProvider(ctx, tenantID, connection, identity.Sub)
	if err == nil {
		user.LastLogin = p.nowTime()
		if upErr := p.repo.Upsert(ctx, user); upErr != nil {
			return nil, errors.Wrap(upErr, "[ProvisionFederated] failed to record login")
		}
		return user, nil
	}

	if signupDisabled {
		return nil, idperrors.ErrSignupDisabled
	}

	user = &User{
		TenantID:      tenantID,
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
		Name:          identity.Name,
		Connection:    connection,
		ProviderSub:   identity.Sub,
		CreatedAt:     p.nowTime(),
		LastLogin:     p.nowTime(),
	}
	if err := p.repo.Upsert(ctx, user); err != nil {
		return nil, errors.Wrap(err, "[ProvisionFederated] failed to create user")
	}
	return user, nil
}
