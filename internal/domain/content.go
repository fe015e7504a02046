package domain

import (
	"time"

	"github.com/google/uuid"
)

// Note is a user-authored document, optionally tagged with categories.
type Note struct {
	NoteID      uuid.UUID
	OwnerID     uuid.UUID
	OwnerName   string
	Title       string
	Description string
	Picture     string
	Completed   bool
	Categories  []Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is a flat label notes can be grouped under.
type Category struct {
	CategoryID uuid.UUID
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Comment is a threaded note comment. ParentID points at the comment being
// replied to; nil means a top-level comment. Deletion is soft: the row stays,
// flagged by whoever removed it, so threads keep their shape.
type Comment struct {
	CommentID      uuid.UUID
	NoteID         uuid.UUID
	AuthorID       uuid.UUID
	AuthorName     string
	Body           string
	ParentID       *uuid.UUID
	IsPrivate      bool
	DeletedByUser  bool
	DeletedByAdmin bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Deleted reports whether the comment was soft-deleted by anyone.
func (c Comment) Deleted() bool {
	return c.DeletedByUser || c.DeletedByAdmin
}
