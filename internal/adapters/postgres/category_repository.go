package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

func (r *categoryRepository) Create(ctx context.Context, name string, createdAt time.Time) (domain.Category, error) {
	rec := categoryModel{
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Category{}, domain.ErrConflict
		}
		return domain.Category{}, err
	}
	return toDomainCategory(rec), nil
}

func (r *categoryRepository) GetByID(ctx context.Context, categoryID uuid.UUID) (domain.Category, error) {
	var rec categoryModel
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, err
	}
	return toDomainCategory(rec), nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainCategory(row))
	}
	return result, nil
}

func (r *categoryRepository) Rename(ctx context.Context, categoryID uuid.UUID, name string, updatedAt time.Time) (domain.Category, error) {
	res := r.db.WithContext(ctx).
		Model(&categoryModel{}).
		Where("category_id = ?", categoryID).
		Updates(map[string]any{
			"name":       name,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.Category{}, domain.ErrConflict
		}
		return domain.Category{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Category{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, categoryID)
}

func (r *categoryRepository) Delete(ctx context.Context, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).Delete(&noteCategoryModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("category_id = ?", categoryID).Delete(&categoryModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func toDomainCategory(row categoryModel) domain.Category {
	return domain.Category{
		CategoryID: row.CategoryID,
		Name:       row.Name,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
