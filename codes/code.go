package codes

import "time"

// Type discriminates the kinds of single-use codes. Lookups are always
// scoped by (id, type); there is no untyped prefix-scan lookup, so id
// uniqueness across types is never assumed.
type Type string

const (
	// TypeOAuth2State correlates a federated redirect round-trip.
	// Read once and discarded by the callback handler.
	TypeOAuth2State Type = "oauth2_state"

	// TypeOTP is a short one-time password emailed to the user.
	TypeOTP Type = "otp"

	// TypeTicket resumes a login session minted out-of-band
	// (post-signup, post-password-reset).
	TypeTicket Type = "ticket"

	// TypeEmailVerification proves ownership of an email address.
	TypeEmailVerification Type = "email_verification"
)

// Code is a single-use, typed, expiring token correlating back to a
// login session. Redeemable at most once.
type Code struct {
	ID           string     `json:"code_id"`
	TenantID     string     `json:"tenant_id"`
	Type         Type       `json:"code_type"`
	LoginID      string     `json:"login_id"`
	ConnectionID string     `json:"connection_id,omitempty"`
	CodeVerifier string     `json:"code_verifier,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Expired reports whether the code is past its expiry.
func (c *Code) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
