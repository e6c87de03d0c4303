package users

import (
	"context"
	"testing"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestProvisionFederated(t *testing.T) {
	identity := FederatedIdentity{
		Sub:           "google-sub-1",
		Email:         "jane@example.com",
		EmailVerified: true,
		Name:          "Jane",
	}

	t.Run("creates a user on first login", func(t *testing.T) {
		repo := NewInMemoryRepo()
		provisioner := NewProvisioner(repo)

		user, err := provisioner.ProvisionFederated(context.Background(), "tenant-a", "google-oauth2", identity, false)
		require.NoError(t, err)
		require.NotEmpty(t, user.ID)
		require.Equal(t, "jane@example.com", user.Email)
		require.Equal(t, "google-oauth2", user.Connection)
		require.False(t, user.LastLogin.IsZero())
	})

	t.Run("matches the existing user by connection and subject", func(t *testing.T) {
		repo := NewInMemoryRepo()
		provisioner := NewProvisioner(repo)

		first, err := provisioner.ProvisionFederated(context.Background(), "tenant-a", "google-oauth2", identity, false)
		require.NoError(t, err)

		second, err := provisioner.ProvisionFederated(context.Background(), "tenant-a", "google-oauth2", identity, false)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
	})

	t.Run("disabled signup rejects unknown identities", func(t *testing.T) {
		repo := NewInMemoryRepo()
		provisioner := NewProvisioner(repo)

		_, err := provisioner.ProvisionFederated(context.Background(), "tenant-a", "google-oauth2", identity, true)
		require.ErrorIs(t, err, idperrors.ErrSignupDisabled)
	})

	t.Run("disabled signup still admits existing users", func(t *testing.T) {
		repo := NewInMemoryRepo()
		provisioner := NewProvisioner(repo)

		_, err := provisioner.ProvisionFederated(context.Background(), "tenant-a", "google-oauth2", identity, false)
		require.NoError(t, err)

		user, err := provisioner.ProvisionFederated(context.Background(), "tenant-a", "google-oauth2", identity, true)
		require.NoError(t, err)
		require.Equal(t, "jane@example.com", user.Email)
	})

	t.Run("identities are tenant scoped", func(t *testing.T) {
		repo := NewInMemoryRepo()
		provisioner := NewProvisioner(repo)

		userA, err := provisioner.ProvisionFederated(context.Background(), "tenant-a", "google-oauth2", identity, false)
		require.NoError(t, err)
		userB, err := provisioner.ProvisionFederated(context.Background(), "tenant-b", "google-oauth2", identity, false)
		require.NoError(t, err)
		require.NotEqual(t, userA.ID, userB.ID)
	})
}
