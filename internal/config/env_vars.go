package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	baseURLVar      = "BASE_URL"
	customDomainVar = "CUSTOM_DOMAIN"
	redisAddrVar    = "REDIS_ADDR"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetCustomDomain() string
	GetRedisAddr() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go IdP Core")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the base URL of the authorization server
// (e.g., "https://auth.example.com"). Used for issuer URLs, the
// /callback redirect URI and the canonical authorization URL.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetCustomDomain returns the tenant-facing vanity hostname, if any.
// When set it replaces the base URL hostname in authorization URLs.
func (EnvVars) GetCustomDomain() string {
	return GetEnv(customDomainVar, "")
}

// GetRedisAddr returns the redis address for the session/code stores.
// When empty the in-memory stores are used.
func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
