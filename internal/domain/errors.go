package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the username or the password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized signals a missing, expired, or malformed access token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden covers role/ownership failures and detected refresh-token reuse.
	// Both surface as the same opaque 403 so callers cannot probe which one fired.
	ErrForbidden = errors.New("forbidden")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	ErrAccountLocked = errors.New("account locked")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrRateLimited   = errors.New("rate limited")
	// ErrTokenExpired and ErrTokenMalformed stay internal to auth flows; the
	// application layer translates them before anything reaches a client.
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)
