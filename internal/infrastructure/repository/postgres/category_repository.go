package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcarruthers/shotsort/internal/core/domain"
)

// CategoryRepository owns the taxonomy. Name identity is case-insensitive
// everywhere; the unique index on LOWER(name) serializes concurrent creation
// of the same name without application-level locks.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Seed ensures the default taxonomy exists, assigning sort order by list
// position. Idempotent and safe under concurrent process starts: the unique
// index swallows racing inserts.
func (r *CategoryRepository) Seed(ctx context.Context) error {
	now := time.Now().UTC()
	for idx, name := range domain.SeedCategories {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (id, name, is_system, sort_order, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT DO NOTHING
`, uuid.NewString(), name, true, int64(idx), now)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}

// ResolveOrCreate looks a category up by case-insensitive name and creates it
// on miss. A lost creation race falls back to re-selecting the winner, so
// concurrent calls for the same name converge on one row.
func (r *CategoryRepository) ResolveOrCreate(ctx context.Context, name string) (*domain.Category, error) {
	category, err := r.GetByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !domain.IsKind(err, domain.ErrCategoryNotFound) {
		return nil, err
	}

	created := &domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		IsSystem:  domain.IsCatchAll(name),
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO categories (id, name, is_system, sort_order, created_at)
SELECT $1, $2, $3, COALESCE(MAX(sort_order), -1) + 1, $4 FROM categories
ON CONFLICT DO NOTHING
`, created.ID, created.Name, created.IsSystem, created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert category %q: %w", name, err)
	}
	// Re-select regardless of who won the race; one row exists now.
	return r.GetByName(ctx, name)
}

func (r *CategoryRepository) IsKnown(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS(SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1))
`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category membership: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, is_system, sort_order, created_at
FROM categories
WHERE LOWER(name) = LOWER($1)
`, name)

	var category domain.Category
	err := row.Scan(&category.ID, &category.Name, &category.IsSystem, &category.SortOrder, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCategoryNotFound, "query category",
				fmt.Errorf("name=%s", name))
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, is_system, sort_order, created_at
FROM categories
ORDER BY sort_order, LOWER(name)
`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.IsSystem, &category.SortOrder, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}
