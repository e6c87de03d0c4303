package config

import "time"

// AuthConfig holds the expiry values driving the authorization flows.
type AuthConfig interface {
	GetLoginSessionExpiry() time.Duration
	GetOAuth2StateExpiry() time.Duration
	GetOTPExpiry() time.Duration
	GetTicketExpiry() time.Duration
	GetSilentAuthMaxAge() time.Duration
	GetSessionExpiry() time.Duration
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetLoginSessionExpiry() time.Duration {
	return 5 * time.Minute
}

func (Auth) GetOAuth2StateExpiry() time.Duration {
	return 5 * time.Minute
}

// GetOTPExpiry is the TTL for emailed one-time codes, separate from the
// login-session expiry.
func (Auth) GetOTPExpiry() time.Duration {
	return 5 * time.Minute
}

func (Auth) GetTicketExpiry() time.Duration {
	return 5 * time.Minute
}

// GetSilentAuthMaxAge drives both the session cookie Max-Age and the
// idle-expiry extension applied on successful silent auth.
func (Auth) GetSilentAuthMaxAge() time.Duration {
	return 30 * 24 * time.Hour
}

func (Auth) GetSessionExpiry() time.Duration {
	return 30 * 24 * time.Hour
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (Auth) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}
