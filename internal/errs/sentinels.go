// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist for the acting
	// user. A task owned by a different user maps to the same error on purpose.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers both unknown username and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken indicates a registration conflict on username.
	ErrUsernameTaken = errors.New("username already in use")

	// ErrEmailTaken indicates a registration conflict on email.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidToken indicates a token that fails signature or structural checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a well-formed token past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrUnauthenticated indicates a protected request without a bearer token.
	ErrUnauthenticated = errors.New("missing bearer token")

	// ErrUnknownSubject indicates a valid token whose subject no longer exists.
	ErrUnknownSubject = errors.New("unknown token subject")
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a ValidationError for a single field.
func Validation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
