package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username      string    `gorm:"column:username"`
	UsernameLower string    `gorm:"column:username_lower"`
	PasswordHash  string    `gorm:"column:password_hash"`
	Roles         string    `gorm:"column:roles;type:jsonb"`
	Profile       string    `gorm:"column:profile;type:jsonb"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type refreshTokenModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (refreshTokenModel) TableName() string { return "user_refresh_tokens" }

type noteModel struct {
	NoteID      uuid.UUID `gorm:"column:note_id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Picture     string    `gorm:"column:picture"`
	Completed   bool      `gorm:"column:completed"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (noteModel) TableName() string { return "notes" }

type noteCategoryModel struct {
	NoteID     uuid.UUID `gorm:"column:note_id;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;primaryKey"`
}

func (noteCategoryModel) TableName() string { return "note_categories" }

type categoryModel struct {
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (categoryModel) TableName() string { return "categories" }

type commentModel struct {
	CommentID     uuid.UUID  `gorm:"column:comment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	NoteID        uuid.UUID  `gorm:"column:note_id"`
	AuthorID      uuid.UUID  `gorm:"column:author_id"`
	Body          string     `gorm:"column:body"`
	ParentID      *uuid.UUID `gorm:"column:parent_id"`
	IsPrivate     bool       `gorm:"column:is_private"`
	DeletedByUser bool       `gorm:"column:deleted_by_user"`
	DeletedByAdmin bool      `gorm:"column:deleted_by_admin"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (commentModel) TableName() string { return "comments" }

type loginAttemptModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	UserID        *uuid.UUID `gorm:"column:user_id"`
	AttemptAt     time.Time  `gorm:"column:attempt_at"`
	IPAddress     *string    `gorm:"column:ip_address"`
	Status        string     `gorm:"column:status"`
	FailureReason string     `gorm:"column:failure_reason"`
	UserAgent     string     `gorm:"column:user_agent"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "content_outbox" }
