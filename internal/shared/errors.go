package shared

import "errors"

var (
	// ErrInvalidCredentials covers both unknown users and wrong
	// passwords so the login form leaks nothing.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when a mutating request carries no token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when the token does not match the session.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
