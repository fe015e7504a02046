package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
)

// ListComments pages through comments, optionally filtered by note. Admins
// see soft-deleted rows; everyone else gets the live thread only.
func (s *Service) ListComments(ctx context.Context, auth AuthContext, noteID *uuid.UUID, page Page) (Paginated[CommentView], error) {
	page = normalizePage(page)
	comments, total, err := s.comments.List(ctx, ports.CommentListParams{
		Limit:          page.Size,
		Offset:         page.Number * page.Size,
		NoteID:         noteID,
		IncludeDeleted: auth.IsAdmin,
	})
	if err != nil {
		return Paginated[CommentView]{}, fmt.Errorf("list comments: %w", err)
	}
	return paginatedComments(comments, total, page), nil
}

// ListReplies pages a comment's reply thread.
func (s *Service) ListReplies(ctx context.Context, commentID uuid.UUID, page Page) (Paginated[CommentView], error) {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return Paginated[CommentView]{}, err
	}
	page = normalizePage(page)
	comments, total, err := s.comments.List(ctx, ports.CommentListParams{
		Limit:    page.Size,
		Offset:   page.Number * page.Size,
		ParentID: &commentID,
	})
	if err != nil {
		return Paginated[CommentView]{}, fmt.Errorf("list replies: %w", err)
	}
	return paginatedComments(comments, total, page), nil
}

// CreateComment posts a comment or a reply. Replies must target a live
// comment on the same note.
func (s *Service) CreateComment(ctx context.Context, auth AuthContext, req CreateCommentRequest) (CommentView, error) {
	body := strings.TrimSpace(req.Body)
	if req.NoteID == uuid.Nil || body == "" {
		return CommentView{}, fmt.Errorf("%w: note_id and body are required", domain.ErrInvalidInput)
	}
	if _, err := s.notes.GetByID(ctx, req.NoteID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CommentView{}, fmt.Errorf("%w: unknown note", domain.ErrInvalidInput)
		}
		return CommentView{}, err
	}
	if req.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return CommentView{}, fmt.Errorf("%w: unknown parent comment", domain.ErrInvalidInput)
			}
			return CommentView{}, err
		}
		if parent.NoteID != req.NoteID {
			return CommentView{}, fmt.Errorf("%w: parent comment belongs to another note", domain.ErrInvalidInput)
		}
		if parent.Deleted() {
			return CommentView{}, fmt.Errorf("%w: cannot reply to a deleted comment", domain.ErrInvalidInput)
		}
	}

	now := s.nowFn()
	comment, err := s.comments.Create(ctx, domain.Comment{
		NoteID:    req.NoteID,
		AuthorID:  auth.UserID,
		Body:      body,
		ParentID:  req.ParentID,
		IsPrivate: req.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return CommentView{}, fmt.Errorf("create comment: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"comment_id": comment.CommentID.String(),
		"note_id":    req.NoteID.String(),
		"author_id":  auth.UserID.String(),
		"created_at": now,
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeCommentCreated,
		PartitionKey: req.NoteID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue comment.created",
			"module", "comments",
			"operation", "create_comment",
			"outcome", "failure",
			"comment_id", comment.CommentID,
			"error", err,
		)
	}
	return toCommentView(comment), nil
}

// UpdateComment lets the author edit a live comment.
func (s *Service) UpdateComment(ctx context.Context, auth AuthContext, commentID uuid.UUID, req UpdateCommentRequest) (CommentView, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return CommentView{}, fmt.Errorf("%w: body is required", domain.ErrInvalidInput)
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return CommentView{}, err
	}
	if comment.AuthorID != auth.UserID {
		return CommentView{}, domain.ErrForbidden
	}
	if comment.Deleted() {
		return CommentView{}, domain.ErrNotFound
	}
	updated, err := s.comments.UpdateBody(ctx, commentID, body, req.IsPrivate, s.nowFn())
	if err != nil {
		return CommentView{}, fmt.Errorf("update comment: %w", err)
	}
	return toCommentView(updated), nil
}

// DeleteComment soft-deletes: authors remove their own comments, admins
// remove anything, and the flags record who did it.
func (s *Service) DeleteComment(ctx context.Context, auth AuthContext, commentID uuid.UUID) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !domain.AuthorizeOwnerOrAdmin(auth.UserID.String(), auth.Roles, comment.AuthorID.String()) {
		return domain.ErrForbidden
	}
	byAdmin := auth.IsAdmin && comment.AuthorID != auth.UserID
	return s.comments.MarkDeleted(ctx, commentID, byAdmin, s.nowFn())
}

func paginatedComments(comments []domain.Comment, total int64, page Page) Paginated[CommentView] {
	items := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		items = append(items, toCommentView(c))
	}
	return Paginated[CommentView]{
		TotalItems:  total,
		Items:       items,
		CurrentPage: page.Number,
		TotalPages:  totalPages(total, page.Size),
	}
}
