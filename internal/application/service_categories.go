package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
)

func (s *Service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	items := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		items = append(items, CategoryView{CategoryID: c.CategoryID, Name: c.Name})
	}
	return items, nil
}

// CreateCategory adds a label. Admin-only at the route level.
func (s *Service) CreateCategory(ctx context.Context, name string) (CategoryView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CategoryView{}, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	category, err := s.categories.Create(ctx, name, s.nowFn())
	if err != nil {
		return CategoryView{}, err
	}
	return CategoryView{CategoryID: category.CategoryID, Name: category.Name}, nil
}

func (s *Service) RenameCategory(ctx context.Context, categoryID uuid.UUID, name string) (CategoryView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CategoryView{}, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	category, err := s.categories.Rename(ctx, categoryID, name, s.nowFn())
	if err != nil {
		return CategoryView{}, err
	}
	return CategoryView{CategoryID: category.CategoryID, Name: category.Name}, nil
}

func (s *Service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	return s.categories.Delete(ctx, categoryID)
}
