package auth

import (
	"net/url"
	"strings"
)

// WildcardOptions controls which wildcard forms an allow-list entry may use.
// The authorize redirect_uri check and the logout returnTo check run with
// different options.
type WildcardOptions struct {
	AllowPathWildcards      bool
	AllowSubdomainWildcards bool
}

// IsValidRedirectURL reports whether candidate validates against at least
// one allow-list entry: protocol equality, then hostname and pathname,
// each exact unless the corresponding wildcard form applies.
//
// A subdomain wildcard must be the left-most label immediately followed
// by a dot ("*.example.com"), is only honoured for http/https, and also
// matches the apex domain. The candidate must end with the wildcard's
// fixed suffix and contain exactly one more label than it, so "evil.com"
// never matches "*.com" and "example.com.evil.com" never matches
// "*.example.com". A malformed wildcard entry never matches anything.
func IsValidRedirectURL(candidate string, allowList []string, opts WildcardOptions) bool {
	candidateURL, err := url.Parse(candidate)
	if err != nil || candidateURL.Scheme == "" || candidateURL.Hostname() == "" {
		return false
	}

	for _, allowed := range allowList {
		allowedURL, err := url.Parse(allowed)
		if err != nil || allowedURL.Scheme == "" {
			continue
		}
		if candidateURL.Scheme != allowedURL.Scheme {
			continue
		}
		if candidateURL.Port() != allowedURL.Port() {
			continue
		}
		if !pathMatches(candidateURL.Path, allowedURL.Path, opts.AllowPathWildcards) {
			continue
		}
		if !hostnameMatches(candidateURL.Hostname(), allowedURL.Hostname(), candidateURL.Scheme, opts.AllowSubdomainWildcards) {
			continue
		}
		return true
	}
	return false
}

func pathMatches(candidate, allowed string, allowWildcards bool) bool {
	if candidate == allowed {
		return true
	}
	if !allowWildcards {
		return false
	}
	// A literal trailing "*" means any path under/equal to the fixed prefix.
	if !strings.HasSuffix(allowed, "*") {
		return false
	}
	prefix := strings.TrimSuffix(allowed, "*")
	return strings.HasPrefix(candidate, prefix)
}

func hostnameMatches(candidate, allowed, scheme string, allowWildcards bool) bool {
	if !strings.Contains(allowed, "*") {
		return candidate == allowed
	}
	if !allowWildcards {
		return false
	}
	if scheme != "http" && scheme != "https" {
		return false
	}
	// The wildcard must be a single "*" forming the entire left-most
	// label; anything else invalidates the whole entry.
	if strings.Count(allowed, "*") != 1 || !strings.HasPrefix(allowed, "*.") {
		return false
	}

	suffix := strings.TrimPrefix(allowed, "*.")
	if suffix == "" {
		return false
	}
	if candidate == suffix {
		return true // wildcard entry also matches the exact domain
	}
	if !strings.HasSuffix(candidate, "."+suffix) {
		return false
	}
	// Exactly one more label than the fixed suffix.
	remainder := strings.TrimSuffix(candidate, "."+suffix)
	return remainder != "" && !strings.Contains(remainder, ".")
}
