// Package catalog exposes read-only service-category lookups.
package catalog

import (
	"context"

	"github.com/faenaapp/faena-backend/internal/domain"
)

// Store persists service categories.
type Store interface {
	GetCategory(ctx context.Context, categoryID string) (*domain.ServiceCategory, error)
	GetCategories(ctx context.Context, categoryIDs []string) ([]domain.ServiceCategory, error)
	ListActiveCategories(ctx context.Context) ([]domain.ServiceCategory, error)
}

// Service is the category catalog.
type Service struct {
	store Store
}

// NewService creates a catalog service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns one category by id.
func (s *Service) Get(ctx context.Context, categoryID string) (*domain.ServiceCategory, error) {
	return s.store.GetCategory(ctx, categoryID)
}

// GetMany returns the categories for a set of ids; unknown ids are skipped.
func (s *Service) GetMany(ctx context.Context, categoryIDs []string) ([]domain.ServiceCategory, error) {
	return s.store.GetCategories(ctx, categoryIDs)
}

// ListActive returns every category with the active flag set.
func (s *Service) ListActive(ctx context.Context) ([]domain.ServiceCategory, error) {
	return s.store.ListActiveCategories(ctx)
}
