package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an end user within one tenant. Federated users are matched by
// (connection, provider subject); database users carry a password hash.
type User struct {
	ID            string    `json:"id,omitempty"`
	TenantID      string    `json:"tenant_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"email_verified,omitempty"`
	Name          string    `json:"name,omitempty"`
	Connection    string    `json:"connection,omitempty"`
	ProviderSub   string    `json:"provider_sub,omitempty"`
	PasswordHash  string    `json:"-"` // never serialize
	CreatedAt     time.Time `json:"created_at,omitempty"`
	LastLogin     time.Time `json:"last_login,omitempty"`
}

// CheckPasswordHash compares a plaintext password against a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HashPassword creates a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
