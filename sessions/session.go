package sessions

import "time"

// Device records where a session was last seen.
type Device struct {
	LastIP        string `json:"last_ip,omitempty"`
	LastUserAgent string `json:"last_user_agent,omitempty"`
}

// Session is a long-lived authenticated browser session, independent of
// any single login attempt. Created on successful authentication,
// revoked on logout, never reused across tenants.
type Session struct {
	ID                string     `json:"id"`
	TenantID          string     `json:"tenant_id"`
	UserID            string     `json:"user_id"`
	ExpiresAt         time.Time  `json:"expires_at"`
	IdleExpiresAt     *time.Time `json:"idle_expires_at,omitempty"`
	RevokedAt         *time.Time `json:"revoked_at,omitempty"`
	Device            Device     `json:"device,omitempty"`
	LoginSessionID    string     `json:"login_session_id,omitempty"`
	UsedAt            time.Time  `json:"used_at,omitempty"`
	LastInteractionAt time.Time  `json:"last_interaction_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Active reports whether the session is usable at the given instant:
// not revoked, not expired, not idle-expired.
func (s *Session) Active(now time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	if !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) {
		return false
	}
	if s.IdleExpiresAt != nil && now.After(*s.IdleExpiresAt) {
		return false
	}
	return true
}
