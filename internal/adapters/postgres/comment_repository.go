package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

type commentRow struct {
	commentModel
	AuthorName string `gorm:"column:author_name"`
}

func (r *commentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	rec := commentModel{
		NoteID:    comment.NoteID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		ParentID:  comment.ParentID,
		IsPrivate: comment.IsPrivate,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Comment{}, err
	}
	return r.GetByID(ctx, rec.CommentID)
}

func (r *commentRepository) GetByID(ctx context.Context, commentID uuid.UUID) (domain.Comment, error) {
	var row commentRow
	if err := r.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.username AS author_name").
		Joins("JOIN users ON users.user_id = comments.author_id").
		Where("comments.comment_id = ?", commentID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, err
	}
	return toDomainComment(row.commentModel, row.AuthorName), nil
}

func (r *commentRepository) List(ctx context.Context, params ports.CommentListParams) ([]domain.Comment, int64, error) {
	base := r.db.WithContext(ctx).Table("comments")
	if params.NoteID != nil {
		base = base.Where("comments.note_id = ?", *params.NoteID)
	}
	if params.ParentID != nil {
		base = base.Where("comments.parent_id = ?", *params.ParentID)
	}
	if !params.IncludeDeleted {
		base = base.Where("comments.deleted_by_user = FALSE").Where("comments.deleted_by_admin = FALSE")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []commentRow
	if err := base.Session(&gorm.Session{}).
		Select("comments.*, users.username AS author_name").
		Joins("JOIN users ON users.user_id = comments.author_id").
		Order("comments.created_at ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainComment(row.commentModel, row.AuthorName))
	}
	return result, total, nil
}

func (r *commentRepository) UpdateBody(ctx context.Context, commentID uuid.UUID, body string, isPrivate *bool, updatedAt time.Time) (domain.Comment, error) {
	updates := map[string]any{
		"body":       body,
		"updated_at": updatedAt,
	}
	if isPrivate != nil {
		updates["is_private"] = *isPrivate
	}
	res := r.db.WithContext(ctx).
		Model(&commentModel{}).
		Where("comment_id = ?", commentID).
		Updates(updates)
	if res.Error != nil {
		return domain.Comment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Comment{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, commentID)
}

func (r *commentRepository) MarkDeleted(ctx context.Context, commentID uuid.UUID, byAdmin bool, deletedAt time.Time) error {
	column := "deleted_by_user"
	if byAdmin {
		column = "deleted_by_admin"
	}
	res := r.db.WithContext(ctx).
		Model(&commentModel{}).
		Where("comment_id = ?", commentID).
		Updates(map[string]any{
			column:       true,
			"updated_at": deletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
