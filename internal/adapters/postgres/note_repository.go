package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
	"gorm.io/gorm"
)

type noteRepository struct {
	db *gorm.DB
}

// noteRow flattens the owner join so one query yields display-ready notes.
type noteRow struct {
	noteModel
	OwnerName string `gorm:"column:owner_name"`
}

func (r *noteRepository) Create(ctx context.Context, note domain.Note, categoryIDs []uuid.UUID) (domain.Note, error) {
	var created noteModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := noteModel{
			OwnerID:     note.OwnerID,
			Title:       note.Title,
			Description: note.Description,
			Picture:     note.Picture,
			Completed:   note.Completed,
			CreatedAt:   note.CreatedAt,
			UpdatedAt:   note.UpdatedAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		if err := replaceNoteCategories(tx, rec.NoteID, categoryIDs); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return domain.Note{}, err
	}
	return r.GetByID(ctx, created.NoteID)
}

func (r *noteRepository) GetByID(ctx context.Context, noteID uuid.UUID) (domain.Note, error) {
	var row noteRow
	if err := r.db.WithContext(ctx).
		Table("notes").
		Select("notes.*, users.username AS owner_name").
		Joins("JOIN users ON users.user_id = notes.owner_id").
		Where("notes.note_id = ?", noteID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Note{}, domain.ErrNotFound
		}
		return domain.Note{}, err
	}
	categories, err := r.loadCategories(ctx, []uuid.UUID{noteID})
	if err != nil {
		return domain.Note{}, err
	}
	return toDomainNote(row, categories[noteID]), nil
}

func (r *noteRepository) List(ctx context.Context, params ports.NoteListParams) ([]domain.Note, int64, error) {
	base := r.db.WithContext(ctx).Table("notes")
	if params.CategoryID != nil {
		base = base.
			Joins("JOIN note_categories nc ON nc.note_id = notes.note_id").
			Where("nc.category_id = ?", *params.CategoryID)
	}
	if params.OwnerID != nil {
		base = base.Where("notes.owner_id = ?", *params.OwnerID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "notes.created_at ASC"
	if params.SortNewest {
		order = "notes.created_at DESC"
	}
	var rows []noteRow
	if err := base.Session(&gorm.Session{}).
		Select("notes.*, users.username AS owner_name").
		Joins("JOIN users ON users.user_id = notes.owner_id").
		Order(order).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	noteIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		noteIDs = append(noteIDs, row.NoteID)
	}
	categories, err := r.loadCategories(ctx, noteIDs)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.Note, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainNote(row, categories[row.NoteID]))
	}
	return result, total, nil
}

func (r *noteRepository) Update(ctx context.Context, note domain.Note, categoryIDs *[]uuid.UUID) (domain.Note, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&noteModel{}).
			Where("note_id = ?", note.NoteID).
			Updates(map[string]any{
				"title":       note.Title,
				"description": note.Description,
				"picture":     note.Picture,
				"completed":   note.Completed,
				"updated_at":  note.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if categoryIDs != nil {
			if err := tx.Where("note_id = ?", note.NoteID).Delete(&noteCategoryModel{}).Error; err != nil {
				return err
			}
			if err := replaceNoteCategories(tx, note.NoteID, *categoryIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Note{}, err
	}
	return r.GetByID(ctx, note.NoteID)
}

func (r *noteRepository) Delete(ctx context.Context, noteID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", noteID).Delete(&noteCategoryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", noteID).Delete(&commentModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("note_id = ?", noteID).Delete(&noteModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func replaceNoteCategories(tx *gorm.DB, noteID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]noteCategoryModel, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		links = append(links, noteCategoryModel{NoteID: noteID, CategoryID: categoryID})
	}
	return tx.Create(&links).Error
}

// loadCategories resolves the category sets for a page of notes in one pass.
func (r *noteRepository) loadCategories(ctx context.Context, noteIDs []uuid.UUID) (map[uuid.UUID][]domain.Category, error) {
	result := make(map[uuid.UUID][]domain.Category, len(noteIDs))
	if len(noteIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		NoteID     uuid.UUID `gorm:"column:note_id"`
		categoryModel
	}
	if err := r.db.WithContext(ctx).
		Table("note_categories").
		Select("note_categories.note_id, categories.*").
		Joins("JOIN categories ON categories.category_id = note_categories.category_id").
		Where("note_categories.note_id IN ?", noteIDs).
		Order("categories.name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.NoteID] = append(result[row.NoteID], domain.Category{
			CategoryID: row.CategoryID,
			Name:       row.Name,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return result, nil
}

func toDomainNote(row noteRow, categories []domain.Category) domain.Note {
	return domain.Note{
		NoteID:      row.NoteID,
		OwnerID:     row.OwnerID,
		OwnerName:   row.OwnerName,
		Title:       row.Title,
		Description: row.Description,
		Picture:     row.Picture,
		Completed:   row.Completed,
		Categories:  categories,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
