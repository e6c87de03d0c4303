package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
)

// Manager handles refresh token creation and revocation.
type Manager struct {
	repo        Repo
	tokenLength int
	nowTime     func() time.Time
}

// NewManager creates a refresh token manager. tokenLength is in bytes.
func NewManager(repo Repo, tokenLength int) *Manager {
	return &Manager{repo: repo, tokenLength: tokenLength, nowTime: time.Now}
}

// Create generates an opaque refresh token bound to a session so logout
// can revoke it.
func (m *Manager) Create(ctx context.Context, tenantID, clientID, userID, sessionID, scope string) (string, error) {
	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[refresh.Manager.Create] rand.Read")
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(ctx, &StoredRefreshToken{
		Token:     tokenStr,
		TenantID:  tenantID,
		UserID:    userID,
		ClientID:  clientID,
		SessionID: sessionID,
		Scope:     scope,
		Iat:       m.nowTime(),
	}); err != nil {
		return "", errors.Wrap(err, "[refresh.Manager.Create] store refresh token")
	}

	return tokenStr, nil
}

// RevokeForSession deletes every refresh token minted against a session.
func (m *Manager) RevokeForSession(ctx context.Context, tenantID, sessionID string) error {
	return m.repo.DeleteBySession(ctx, tenantID, sessionID)
}
