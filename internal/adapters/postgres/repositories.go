package postgres

import (
	"github.com/scribeworks/notes-service/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Users         ports.UserRepository
	Notes         ports.NoteRepository
	Categories    ports.CategoryRepository
	Comments      ports.CommentRepository
	LoginAttempts ports.LoginAttemptRepository
	Outbox        ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         &userRepository{db: db},
		Notes:         &noteRepository{db: db},
		Categories:    &categoryRepository{db: db},
		Comments:      &commentRepository{db: db},
		LoginAttempts: &loginAttemptRepository{db: db},
		Outbox:        &outboxRepository{db: db},
	}
}
