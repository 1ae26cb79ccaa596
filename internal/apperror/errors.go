// Package apperror defines the error taxonomy shared across handlers and
// services. Token decode errors live in pkg/jwtutil.
package apperror

import "errors"

var (
	// ErrInvalidCredentials covers both wrong password and unknown login
	// name; callers must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccessDenied means an otherwise valid caller failed an
	// authorization check.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound means a referenced user, role, menu or tenant is absent.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means a uniqueness constraint was violated.
	ErrDuplicateKey = errors.New("duplicate key")
)
