package strategies

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const defaultScopes = "openid profile email"

var _ Strategy = (*OIDCStrategy)(nil)

// OIDCStrategy drives any OpenID Connect provider via discovery. One
// instance serves all connections whose options carry an issuer; the
// discovered providers are cached per issuer.
type OIDCStrategy struct {
	callbackURL string
	timeout     time.Duration

	mu        sync.RWMutex
	providers map[string]*oidc.Provider
}

// NewOIDCStrategy creates the strategy. callbackURL is this server's
// /callback endpoint; timeout bounds all outbound provider calls.
func NewOIDCStrategy(callbackURL string, timeout time.Duration) *OIDCStrategy {
	return &OIDCStrategy{
		callbackURL: callbackURL,
		timeout:     timeout,
		providers:   make(map[string]*oidc.Provider),
	}
}

func (s *OIDCStrategy) GetRedirect(ctx context.Context, connection *clients.Connection) (*Redirect, error) {
	cfg, _, err := s.oauthConfig(ctx, connection)
	if err != nil {
		return nil, err
	}

	state, err := generateState()
	if err != nil {
		return nil, errors.Wrap(err, "[OIDCStrategy.GetRedirect] state generation")
	}
	verifier := oauth2.GenerateVerifier()

	return &Redirect{
		URL:          cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		Code:         state,
		CodeVerifier: verifier,
	}, nil
}

func (s *OIDCStrategy) ExchangeCodeForUser(ctx context.Context, connection *clients.Connection, code, codeVerifier string) (*UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cfg, provider, err := s.oauthConfig(ctx, connection)
	if err != nil {
		return nil, err
	}

	opts := []oauth2.AuthCodeOption{}
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	token, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "[OIDCStrategy.ExchangeCodeForUser] token exchange")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("[OIDCStrategy.ExchangeCodeForUser] no ID token in response")
	}

	idToken, err := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrap(err, "[OIDCStrategy.ExchangeCodeForUser] ID token verification")
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[OIDCStrategy.ExchangeCodeForUser] extract claims")
	}

	return &UserInfo{
		Sub:           claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

func (s *OIDCStrategy) oauthConfig(ctx context.Context, connection *clients.Connection) (*oauth2.Config, *oidc.Provider, error) {
	if connection.Options.Issuer == "" {
		return nil, nil, errors.New("[OIDCStrategy] connection has no issuer configured")
	}

	provider, err := s.provider(ctx, connection.Options.Issuer)
	if err != nil {
		return nil, nil, err
	}

	scopes := connection.Options.Scope
	if scopes == "" {
		scopes = defaultScopes
	}

	return &oauth2.Config{
		ClientID:     connection.Options.ClientID,
		ClientSecret: connection.Options.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  s.callbackURL,
		Scopes:       strings.Fields(scopes),
	}, provider, nil
}

func (s *OIDCStrategy) provider(ctx context.Context, issuer string) (*oidc.Provider, error) {
	s.mu.RLock()
	provider, ok := s.providers[issuer]
	s.mu.RUnlock()
	if ok {
		return provider, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[OIDCStrategy] provider discovery")
	}

	s.mu.Lock()
	s.providers[issuer] = provider
	s.mu.Unlock()

	return provider, nil
}

func generateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
