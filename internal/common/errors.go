// Package common defines shared constants and sentinel errors used across
// client and server layers of StockKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Validation errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// Credential errors. The message never says which half was wrong.
	ErrInvalidCredentials = errors.New("email or password is incorrect")

	// Registration errors.
	ErrDuplicateEmail      = errors.New("email is already registered")
	ErrUnknownOrganization = errors.New("organization does not exist")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
