package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the canonical account aggregate. It keeps the auth-relevant state
// (credential hash, roles, refresh sessions) next to the public profile so
// session flows stay service-owned.
type User struct {
	UserID       uuid.UUID
	Username     string
	PasswordHash string
	Roles        []Role
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the free-form descriptive fields. None of it is
// security-relevant; AvatarKey references an object in the blob store.
type Profile struct {
	FirstName   string
	LastName    string
	Gender      string
	BirthDate   *time.Time
	Bio         string
	Status      string
	AvatarKey   string
	Location    string
	Website     string
	SocialLinks SocialLinks
}

type SocialLinks struct {
	Facebook  string
	Twitter   string
	Instagram string
	LinkedIn  string
}

// RefreshSession is one entry of a user's active-session set: a currently
// valid refresh token. A token leaves the set exactly once, on rotation,
// logout, or a reuse-detection wipe; it never returns.
type RefreshSession struct {
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LoginAttempt records authentication outcomes for audit and lockout review.
type LoginAttempt struct {
	ID            int64
	UserID        *uuid.UUID
	AttemptAt     time.Time
	IPAddress     string
	Status        string
	FailureReason string
	UserAgent     string
}
