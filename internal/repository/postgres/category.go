package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/models"
)

const categoryColumns = `id, user_id, parent_id, category_group_id, name, is_active, sort_order, is_system, created_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	c := &models.Category{}
	err := row.Scan(&c.ID, &c.UserID, &c.ParentID, &c.CategoryGroupID, &c.Name,
		&c.IsActive, &c.SortOrder, &c.IsSystem, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.q.QueryRow(ctx,
		`INSERT INTO categories (id, user_id, parent_id, category_group_id, name, is_active, sort_order, is_system)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		category.ID, category.UserID, category.ParentID, category.CategoryGroupID, category.Name,
		category.IsActive, category.SortOrder, category.IsSystem,
	).Scan(&category.CreatedAt)
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.q.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return c, nil
}

func (s *Store) ListVisibleCategories(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE user_id = $1 OR user_id IS NULL
		 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) ListCategoryGroups(ctx context.Context) ([]*models.CategoryGroup, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, name, description, sort_order FROM category_groups ORDER BY sort_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*models.CategoryGroup
	for rows.Next() {
		g := &models.CategoryGroup{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.SortOrder); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
