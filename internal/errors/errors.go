package errors

import (
	"errors"
	"fmt"
)

// Common error types for the authorization core
var (
	// Client configuration errors
	ErrClientNotFound     = errors.New("client not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrStrategyNotFound   = errors.New("strategy not found")

	// Security policy errors
	ErrTenantMismatch     = errors.New("tenant mismatch")
	ErrOriginNotAllowed   = errors.New("origin not allowed")
	ErrRedirectNotAllowed = errors.New("redirect URI not in allow-list")

	// Protocol errors
	ErrMissingResponseType = errors.New("response_type is required")
	ErrMissingState        = errors.New("state is required")
	ErrInvalidRequest      = errors.New("invalid request")

	// Authentication errors
	ErrUserNotFound   = errors.New("user not found")
	ErrSessionExpired = errors.New("session expired")
	ErrSessionRevoked = errors.New("session revoked")
	ErrSignupDisabled = errors.New("public signup is disabled")
	ErrWrongPassword  = errors.New("wrong email or password")

	// Correlation state errors
	ErrCodeNotFound     = errors.New("code not found")
	ErrCodeUsed         = errors.New("code already used")
	ErrCodeExpired      = errors.New("code expired")
	ErrLoginSessionGone = errors.New("login session not found")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
