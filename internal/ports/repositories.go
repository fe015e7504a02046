package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
)

// CreateUserTxParams captures atomic account-creation inputs. The outbox
// event rides in the same transaction so account state and integration
// signal cannot diverge.
type CreateUserTxParams struct {
	Username        string
	PasswordHash    string
	Roles           []domain.Role
	Profile         domain.Profile
	RegisteredAtUTC time.Time
}

// UserRepository owns account identities and their refresh-session sets.
//
// The session methods are the SessionStore of the auth subsystem. Each one is
// a single atomic statement in the backing store; ConsumeRefreshToken in
// particular decides rotation races by its rows-affected result, so two
// concurrent refreshes of the same token can never both win.
type UserRepository interface {
	CreateWithOutboxTx(ctx context.Context, params CreateUserTxParams, outboxEvent OutboxEvent) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile, updatedAt time.Time) error
	UpdateRoles(ctx context.Context, userID uuid.UUID, roles []domain.Role, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error
	Delete(ctx context.Context, userID uuid.UUID) error

	FindByRefreshToken(ctx context.Context, token string) (domain.User, error)
	AddRefreshToken(ctx context.Context, userID uuid.UUID, token string, createdAt, expiresAt time.Time) error
	// ConsumeRefreshToken removes the token wherever it lives and reports
	// whether this call was the one that removed it.
	ConsumeRefreshToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	ClearRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// NoteListParams bundles pagination and filter inputs for note queries.
type NoteListParams struct {
	Limit      int
	Offset     int
	SortNewest bool
	CategoryID *uuid.UUID
	OwnerID    *uuid.UUID
}

type NoteRepository interface {
	Create(ctx context.Context, note domain.Note, categoryIDs []uuid.UUID) (domain.Note, error)
	GetByID(ctx context.Context, noteID uuid.UUID) (domain.Note, error)
	List(ctx context.Context, params NoteListParams) ([]domain.Note, int64, error)
	Update(ctx context.Context, note domain.Note, categoryIDs *[]uuid.UUID) (domain.Note, error)
	Delete(ctx context.Context, noteID uuid.UUID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, name string, createdAt time.Time) (domain.Category, error)
	GetByID(ctx context.Context, categoryID uuid.UUID) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Rename(ctx context.Context, categoryID uuid.UUID, name string, updatedAt time.Time) (domain.Category, error)
	Delete(ctx context.Context, categoryID uuid.UUID) error
}

// CommentListParams filters comment pages. Deleted comments are excluded
// unless IncludeDeleted is set (admin listings).
type CommentListParams struct {
	Limit          int
	Offset         int
	NoteID         *uuid.UUID
	ParentID       *uuid.UUID
	IncludeDeleted bool
}

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	GetByID(ctx context.Context, commentID uuid.UUID) (domain.Comment, error)
	List(ctx context.Context, params CommentListParams) ([]domain.Comment, int64, error)
	UpdateBody(ctx context.Context, commentID uuid.UUID, body string, isPrivate *bool, updatedAt time.Time) (domain.Comment, error)
	MarkDeleted(ctx context.Context, commentID uuid.UUID, byAdmin bool, deletedAt time.Time) error
}

// LoginAttemptRepository stores login outcomes used by audit and history endpoints.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt domain.LoginAttempt) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LoginAttempt, int64, error)
}

// OutboxEvent is the write-side event payload prior to storage.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord is durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the publish-retry workflow for domain events.
// The explicit claim protocol lets multiple worker replicas share the table.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
