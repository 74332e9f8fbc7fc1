package service

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/model"
)

//go:generate mockgen -source=categories.go -destination=./category_storage_mock.go -package=service
type CategoryStorage interface {
	// CreateCategory returns ErrConflict when the name is taken.
	CreateCategory(ctx context.Context, category model.Category) (model.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type CategoryService struct {
	categoryStorage CategoryStorage
}

func NewCategoryService(categoryStorage CategoryStorage) *CategoryService {
	return &CategoryService{categoryStorage: categoryStorage}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	return s.categoryStorage.CreateCategory(ctx, model.Category{Name: name})
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID string) (model.Category, error) {
	if categoryID == "" {
		return model.Category{}, fmt.Errorf("%w: category id is required", ErrInvalidRequest)
	}
	return s.categoryStorage.GetCategoryByID(ctx, categoryID)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryStorage.ListCategories(ctx)
}
