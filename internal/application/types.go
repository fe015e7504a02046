package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
)

// AuthContext is the per-request identity derived from a verified access
// token. It lives for one request and never touches the session store.
type AuthContext struct {
	UserID   uuid.UUID
	Username string
	Roles    []domain.Role
	IsAdmin  bool
}

// TokenPair is the ephemeral result of login/register/refresh. The refresh
// token travels back to the client only as a secure cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type SocialLinksInput struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

type ProfileInput struct {
	FirstName   *string           `json:"first_name"`
	LastName    *string           `json:"last_name"`
	Gender      *string           `json:"gender"`
	BirthDate   *time.Time        `json:"birth_date"`
	Bio         *string           `json:"bio"`
	Status      *string           `json:"status"`
	Location    *string           `json:"location"`
	Website     *string           `json:"website"`
	SocialLinks *SocialLinksInput `json:"social_links"`
}

type RegisterRequest struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Roles    []string     `json:"roles"`
	Profile  ProfileInput `json:"profile"`
}

type RegisterResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Tokens   TokenPair `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// PriorRefreshToken is the refresh cookie presented on a re-login
	// without logout; exactly that session is replaced.
	PriorRefreshToken string `json:"-"`
	IPAddress         string `json:"-"`
	UserAgent         string `json:"-"`
}

type LoginResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Tokens TokenPair `json:"-"`
}

type RefreshResponse struct {
	Tokens TokenPair `json:"-"`
}

type UserView struct {
	UserID    uuid.UUID   `json:"user_id"`
	Username  string      `json:"username"`
	Roles     []string    `json:"roles"`
	Profile   ProfileView `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type ProfileView struct {
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Gender      string           `json:"gender,omitempty"`
	BirthDate   *time.Time       `json:"birth_date,omitempty"`
	Bio         string           `json:"bio"`
	Status      string           `json:"status"`
	HasAvatar   bool             `json:"has_avatar"`
	Location    string           `json:"location,omitempty"`
	Website     string           `json:"website,omitempty"`
	SocialLinks SocialLinksInput `json:"social_links"`
}

type CreateUserRequest struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Roles    []string     `json:"roles"`
	Profile  ProfileInput `json:"profile"`
}

type UpdateUserRequest struct {
	Roles   []string      `json:"roles"`
	Profile *ProfileInput `json:"profile"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Page carries normalized pagination inputs. Page numbers are zero-based to
// match the listing responses.
type Page struct {
	Number int
	Size   int
}

// Paginated is the common list envelope: items plus total bookkeeping.
type Paginated[T any] struct {
	TotalItems  int64 `json:"total_items"`
	Items       []T   `json:"items"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
}

type NoteView struct {
	NoteID      uuid.UUID      `json:"note_id"`
	Owner       string         `json:"owner"`
	OwnerID     uuid.UUID      `json:"owner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Picture     string         `json:"picture,omitempty"`
	Completed   bool           `json:"completed"`
	Categories  []CategoryView `json:"categories"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type CreateNoteRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Picture     string      `json:"picture"`
	Categories  []uuid.UUID `json:"categories"`
}

type UpdateNoteRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Picture     *string      `json:"picture"`
	Completed   *bool        `json:"completed"`
	Categories  *[]uuid.UUID `json:"categories"`
}

type CategoryView struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
}

type CommentView struct {
	CommentID uuid.UUID  `json:"comment_id"`
	NoteID    uuid.UUID  `json:"note_id"`
	Author    string     `json:"author"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Body      string     `json:"body"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	IsPrivate bool       `json:"is_private"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CreateCommentRequest struct {
	NoteID    uuid.UUID  `json:"note_id"`
	Body      string     `json:"body"`
	ParentID  *uuid.UUID `json:"parent_id"`
	IsPrivate bool       `json:"is_private"`
}

type UpdateCommentRequest struct {
	Body      string `json:"body"`
	IsPrivate *bool  `json:"is_private"`
}

type LoginAttemptView struct {
	AttemptAt     time.Time `json:"attempt_at"`
	IPAddress     string    `json:"ip_address,omitempty"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
}

const (
	eventTypeUserRegistered = "user.registered"
	eventTypeUserDeleted    = "user.deleted"
	eventTypeNoteCreated    = "note.created"
	eventTypeCommentCreated = "comment.created"
)
