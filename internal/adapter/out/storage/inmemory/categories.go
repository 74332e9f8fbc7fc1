package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"inkwell/internal/model"
	"inkwell/internal/service"

	"github.com/google/uuid"
)

type CategoryStorage struct {
	mu         sync.RWMutex
	categories map[string]model.Category
}

func NewCategoryStorage() *CategoryStorage {
	return &CategoryStorage{categories: make(map[string]model.Category)}
}

func (s *CategoryStorage) CreateCategory(_ context.Context, in model.Category) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == in.Name {
			return model.Category{}, fmt.Errorf("%w: category %q", service.ErrConflict, in.Name)
		}
	}

	in.ID = uuid.NewString()
	s.categories[in.ID] = in
	return in, nil
}

func (s *CategoryStorage) GetCategoryByID(_ context.Context, categoryID string) (model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[categoryID]
	if !ok {
		return model.Category{}, service.ErrNotFound
	}
	return c, nil
}

func (s *CategoryStorage) ListCategories(_ context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *CategoryStorage) GetCategoriesByIDs(_ context.Context, categoryIDs []string) (map[string]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.Category, len(categoryIDs))
	for _, id := range categoryIDs {
		if c, ok := s.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}
