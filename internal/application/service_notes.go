package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
)

// ListNotes returns a page of notes, newest first by default.
func (s *Service) ListNotes(ctx context.Context, page Page, sortNewest bool) (Paginated[NoteView], error) {
	page = normalizePage(page)
	notes, total, err := s.notes.List(ctx, ports.NoteListParams{
		Limit:      page.Size,
		Offset:     page.Number * page.Size,
		SortNewest: sortNewest,
	})
	if err != nil {
		return Paginated[NoteView]{}, fmt.Errorf("list notes: %w", err)
	}
	return paginatedNotes(notes, total, page), nil
}

// ListNotesByCategory filters the note listing by a category.
func (s *Service) ListNotesByCategory(ctx context.Context, categoryID uuid.UUID, page Page) (Paginated[NoteView], error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return Paginated[NoteView]{}, err
	}
	page = normalizePage(page)
	notes, total, err := s.notes.List(ctx, ports.NoteListParams{
		Limit:      page.Size,
		Offset:     page.Number * page.Size,
		SortNewest: true,
		CategoryID: &categoryID,
	})
	if err != nil {
		return Paginated[NoteView]{}, fmt.Errorf("list notes by category: %w", err)
	}
	return paginatedNotes(notes, total, page), nil
}

func (s *Service) GetNote(ctx context.Context, noteID uuid.UUID) (NoteView, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return NoteView{}, err
	}
	return toNoteView(note), nil
}

// CreateNote authors a note owned by the caller and enqueues note.created.
func (s *Service) CreateNote(ctx context.Context, auth AuthContext, req CreateNoteRequest) (NoteView, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return NoteView{}, fmt.Errorf("%w: title and description are required", domain.ErrInvalidInput)
	}
	for _, categoryID := range req.Categories {
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			return NoteView{}, fmt.Errorf("%w: unknown category %s", domain.ErrInvalidInput, categoryID)
		}
	}

	now := s.nowFn()
	note, err := s.notes.Create(ctx, domain.Note{
		OwnerID:     auth.UserID,
		Title:       title,
		Description: description,
		Picture:     strings.TrimSpace(req.Picture),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, req.Categories)
	if err != nil {
		return NoteView{}, fmt.Errorf("create note: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"note_id":    note.NoteID.String(),
		"owner_id":   auth.UserID.String(),
		"created_at": now,
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeNoteCreated,
		PartitionKey: note.NoteID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue note.created",
			"module", "notes",
			"operation", "create_note",
			"outcome", "failure",
			"note_id", note.NoteID,
			"error", err,
		)
	}
	return toNoteView(note), nil
}

// UpdateNote lets the owner (or an admin) patch note fields.
func (s *Service) UpdateNote(ctx context.Context, auth AuthContext, noteID uuid.UUID, req UpdateNoteRequest) (NoteView, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return NoteView{}, err
	}
	if !domain.AuthorizeOwnerOrAdmin(auth.UserID.String(), auth.Roles, note.OwnerID.String()) {
		return NoteView{}, domain.ErrForbidden
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return NoteView{}, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		note.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return NoteView{}, fmt.Errorf("%w: description cannot be empty", domain.ErrInvalidInput)
		}
		note.Description = description
	}
	if req.Picture != nil {
		note.Picture = strings.TrimSpace(*req.Picture)
	}
	if req.Completed != nil {
		note.Completed = *req.Completed
	}
	if req.Categories != nil {
		for _, categoryID := range *req.Categories {
			if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
				return NoteView{}, fmt.Errorf("%w: unknown category %s", domain.ErrInvalidInput, categoryID)
			}
		}
	}
	note.UpdatedAt = s.nowFn()

	updated, err := s.notes.Update(ctx, note, req.Categories)
	if err != nil {
		return NoteView{}, fmt.Errorf("update note: %w", err)
	}
	return toNoteView(updated), nil
}

// DeleteNote removes a note. The route additionally requires Admin or Editor;
// ownership still applies so an editor cannot delete someone else's note.
func (s *Service) DeleteNote(ctx context.Context, auth AuthContext, noteID uuid.UUID) error {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if !domain.AuthorizeOwnerOrAdmin(auth.UserID.String(), auth.Roles, note.OwnerID.String()) {
		return domain.ErrForbidden
	}
	return s.notes.Delete(ctx, noteID)
}

func paginatedNotes(notes []domain.Note, total int64, page Page) Paginated[NoteView] {
	items := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		items = append(items, toNoteView(n))
	}
	return Paginated[NoteView]{
		TotalItems:  total,
		Items:       items,
		CurrentPage: page.Number,
		TotalPages:  totalPages(total, page.Size),
	}
}
