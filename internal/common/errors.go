// Package common defines shared constants and sentinel errors used across
// the cache, sync and service layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Gateway-level errors.
	ErrGatewayUnavailable = errors.New("remote gateway unavailable")

	// Auth / user errors.
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Queue errors.
	ErrUnknownTable     = errors.New("unknown sync table")
	ErrUnknownOperation = errors.New("unknown sync operation")
)
