package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError carries an HTTP status and the OAuth2/OIDC error surface
// (error code + description) for failures that are part of the protocol.
// Internal errors that are not HTTPErrors must surface as a generic 500.
type HTTPError struct {
	Status      int
	Code        string
	Description string
	err         error
}

func (e *HTTPError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return e.Code
}

func (e *HTTPError) Unwrap() error { return e.err }

// NewHTTPError builds an HTTPError wrapping cause (cause may be nil).
func NewHTTPError(status int, code, description string, cause error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Description: description, err: cause}
}

// BadRequest is a 400 with the given OAuth error code and description.
func BadRequest(code, description string, cause error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, code, description, cause)
}

// Forbidden is a 403 for security policy violations.
func Forbidden(code, description string, cause error) *HTTPError {
	return NewHTTPError(http.StatusForbidden, code, description, cause)
}

// HTTPStatus extracts the status from err, defaulting to 500 for
// anything that is not an HTTPError.
func HTTPStatus(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return http.StatusInternalServerError
}
