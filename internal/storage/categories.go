package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/faenaapp/faena-backend/internal/domain"
)

const categoryColumns = `
	service_category_id, name, description, icon_url, is_active,
	created_at, updated_at`

// GetCategory returns a service category by id.
func (s *Storage) GetCategory(ctx context.Context, categoryID string) (*domain.ServiceCategory, error) {
	var c domain.ServiceCategory
	err := s.db.GetContext(ctx, &c,
		`SELECT `+categoryColumns+` FROM service_categories WHERE service_category_id = $1`,
		categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// GetCategories returns the categories for a set of ids. Unknown ids are
// silently skipped.
func (s *Storage) GetCategories(ctx context.Context, categoryIDs []string) ([]domain.ServiceCategory, error) {
	var list []domain.ServiceCategory
	err := s.db.SelectContext(ctx, &list,
		`SELECT `+categoryColumns+` FROM service_categories WHERE service_category_id = ANY($1)`,
		pq.Array(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return list, nil
}

// ListActiveCategories returns every active category ordered by name.
func (s *Storage) ListActiveCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	var list []domain.ServiceCategory
	err := s.db.SelectContext(ctx, &list,
		`SELECT `+categoryColumns+` FROM service_categories WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return list, nil
}
