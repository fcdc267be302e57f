package out

import (
	"context"

	"tabwise_server/core/domain"
)

// CategoryRepository is the outbound port for persisted category
// configuration. The engine reads categories and mappings; writes happen
// through the configuration API only.
type CategoryRepository interface {
	// ListCategories returns all categories ordered by their persisted
	// position index.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// GetCategory returns one category by id.
	GetCategory(ctx context.Context, id string) (*domain.Category, error)

	// CreateCategory inserts a new category.
	CreateCategory(ctx context.Context, cat *domain.Category) error

	// UpdateCategory updates name, color, domains, keywords and position.
	UpdateCategory(ctx context.Context, cat *domain.Category) error

	// DeleteCategory removes a non-system category.
	DeleteCategory(ctx context.Context, id string) error

	// ListMappings returns all explicit domain -> category overrides.
	ListMappings(ctx context.Context) ([]domain.CategoryMapping, error)

	// PutMapping creates or replaces the override for a domain.
	PutMapping(ctx context.Context, m *domain.CategoryMapping) error

	// DeleteMapping removes the override for a domain.
	DeleteMapping(ctx context.Context, domainKey string) error
}
