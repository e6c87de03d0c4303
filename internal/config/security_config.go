package config

type SecurityConfig interface {
	GetSigningSecret() string
	GetProviderTimeoutSeconds() int
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSigningSecret is the HMAC secret for issued tokens. Key management
// beyond a single shared secret is out of scope for this core.
func (Security) GetSigningSecret() string {
	return GetEnv("SIGNING_SECRET", "dev-signing-secret-do-not-use-in-prod")
}

// GetProviderTimeoutSeconds bounds outbound calls to federated identity
// providers so a slow provider cannot hang the request.
func (Security) GetProviderTimeoutSeconds() int {
	return 10
}
