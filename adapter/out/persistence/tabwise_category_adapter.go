// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tabwise_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CategoryAdapter implements out.CategoryRepository using PostgreSQL.
type CategoryAdapter struct {
	db *sqlx.DB
}

// NewCategoryAdapter creates a new CategoryAdapter.
func NewCategoryAdapter(db *sqlx.DB) *CategoryAdapter {
	return &CategoryAdapter{db: db}
}

// categoryRow represents the database row for categories.
type categoryRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Color     sql.NullString `db:"color"`
	Domains   pq.StringArray `db:"domains"`
	Keywords  pq.StringArray `db:"keywords"`
	IsDefault bool           `db:"is_default"`
	IsSystem  bool           `db:"is_system"`
	Position  int            `db:"position"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *categoryRow) toEntity() domain.Category {
	cat := domain.Category{
		ID:        r.ID,
		Name:      r.Name,
		Domains:   []string(r.Domains),
		Keywords:  []string(r.Keywords),
		IsDefault: r.IsDefault,
		IsSystem:  r.IsSystem,
		Position:  r.Position,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Color.Valid {
		cat.Color = r.Color.String
	}
	return cat
}

// ListCategories returns all categories ordered by position.
func (a *CategoryAdapter) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	query := `SELECT * FROM categories ORDER BY position ASC, created_at ASC`

	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	cats := make([]domain.Category, 0, len(rows))
	for i := range rows {
		cats = append(cats, rows[i].toEntity())
	}
	return cats, nil
}

// GetCategory retrieves a category by its ID.
func (a *CategoryAdapter) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var row categoryRow
	query := `SELECT * FROM categories WHERE id = $1`

	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	cat := row.toEntity()
	return &cat, nil
}

// CreateCategory inserts a new category.
func (a *CategoryAdapter) CreateCategory(ctx context.Context, cat *domain.Category) error {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	now := time.Now()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	query := `
		INSERT INTO categories (id, name, color, domains, keywords, is_default, is_system, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := a.db.ExecContext(ctx, query,
		cat.ID, cat.Name, cat.Color,
		pq.Array(cat.Domains), pq.Array(cat.Keywords),
		cat.IsDefault, cat.IsSystem, cat.Position,
		cat.CreatedAt, cat.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory updates name, color, domains, keywords and position.
func (a *CategoryAdapter) UpdateCategory(ctx context.Context, cat *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, color = $3, domains = $4, keywords = $5, position = $6, updated_at = $7
		WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query,
		cat.ID, cat.Name, cat.Color,
		pq.Array(cat.Domains), pq.Array(cat.Keywords),
		cat.Position, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a non-system category and its mappings.
func (a *CategoryAdapter) DeleteCategory(ctx context.Context, id string) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM category_mappings WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete mappings: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND is_system = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListMappings returns all explicit domain -> category overrides.
func (a *CategoryAdapter) ListMappings(ctx context.Context) ([]domain.CategoryMapping, error) {
	var rows []struct {
		Domain     string    `db:"domain"`
		CategoryID string    `db:"category_id"`
		CreatedAt  time.Time `db:"created_at"`
	}
	query := `SELECT domain, category_id, created_at FROM category_mappings ORDER BY domain ASC`

	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	mappings := make([]domain.CategoryMapping, 0, len(rows))
	for _, r := range rows {
		mappings = append(mappings, domain.CategoryMapping{
			Domain:     r.Domain,
			CategoryID: r.CategoryID,
			CreatedAt:  r.CreatedAt,
		})
	}
	return mappings, nil
}

// PutMapping creates or replaces the override for a domain.
func (a *CategoryAdapter) PutMapping(ctx context.Context, m *domain.CategoryMapping) error {
	query := `
		INSERT INTO category_mappings (domain, category_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (domain) DO UPDATE SET category_id = EXCLUDED.category_id`

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if _, err := a.db.ExecContext(ctx, query, m.Domain, m.CategoryID, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to put mapping: %w", err)
	}
	return nil
}

// DeleteMapping removes the override for a domain.
func (a *CategoryAdapter) DeleteMapping(ctx context.Context, domainKey string) error {
	result, err := a.db.ExecContext(ctx, `DELETE FROM category_mappings WHERE domain = $1`, domainKey)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
