package sessions

import (
	"net/http"
	"time"
)

const cookieNameSuffix = "-auth-token"

// CookieCodec serializes and parses the per-tenant session cookie. The
// cookie name is tenant-namespaced so multiple tenants served from one
// host never collide. Stateless.
type CookieCodec struct {
	maxAge time.Duration
}

// NewCookieCodec creates a codec whose Set-Cookie values carry the given
// Max-Age (the silent-auth max age).
func NewCookieCodec(maxAge time.Duration) CookieCodec {
	return CookieCodec{maxAge: maxAge}
}

// CookieName returns the tenant-namespaced session cookie name.
func CookieName(tenantID string) string {
	return tenantID + cookieNameSuffix
}

// Serialize builds the Set-Cookie value for a session id.
func (c CookieCodec) Serialize(tenantID, sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(tenantID),
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(c.maxAge.Seconds()),
	}
}

// Parse returns every value presented for the tenant's session cookie.
// Browsers may send multiple same-named cookies (domain/path/partition
// variants); the caller must try all of them, not just the first.
func (c CookieCodec) Parse(tenantID, cookieHeader string) []string {
	if cookieHeader == "" {
		return nil
	}
	parsed, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return nil
	}

	name := CookieName(tenantID)
	var values []string
	for _, cookie := range parsed {
		if cookie.Name == name && cookie.Value != "" {
			values = append(values, cookie.Value)
		}
	}
	return values
}

// Clear builds the Set-Cookie value that removes the tenant's session
// cookie. Clearing an already-cleared cookie yields the same value.
func (c CookieCodec) Clear(tenantID string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(tenantID),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	}
}
