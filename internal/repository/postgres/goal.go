package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/models"
)

const goalColumns = `id, user_id, name, description, target_amount, current_amount, target_date,
	category_id, currency_code, status, is_active, created_at, updated_at`

func scanGoal(row rowScanner) (*models.FinancialGoal, error) {
	g := &models.FinancialGoal{}
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount,
		&g.TargetDate, &g.CategoryID, &g.CurrencyCode, &g.Status, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, goal *models.FinancialGoal) error {
	return s.q.QueryRow(ctx,
		`INSERT INTO financial_goals (id, user_id, name, description, target_amount, current_amount,
		 target_date, category_id, currency_code, status, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		goal.ID, goal.UserID, goal.Name, goal.Description, goal.TargetAmount, goal.CurrentAmount,
		goal.TargetDate, goal.CategoryID, goal.CurrencyCode, goal.Status, goal.IsActive,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
}

func (s *Store) GetGoal(ctx context.Context, id, userID uuid.UUID) (*models.FinancialGoal, error) {
	g, err := scanGoal(s.q.QueryRow(ctx,
		`SELECT `+goalColumns+` FROM financial_goals WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound(err, "goal", id)
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.FinancialGoal, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+goalColumns+` FROM financial_goals
		 WHERE user_id = $1 AND ($2::boolean OR status <> 'ARCHIVED')
		 ORDER BY created_at DESC`,
		userID, includeArchived,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.FinancialGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoal(ctx context.Context, goal *models.FinancialGoal) error {
	err := s.q.QueryRow(ctx,
		`UPDATE financial_goals SET name = $1, description = $2, target_amount = $3, current_amount = $4,
		 target_date = $5, category_id = $6, currency_code = $7, status = $8, is_active = $9, updated_at = NOW()
		 WHERE id = $10 AND user_id = $11
		 RETURNING updated_at`,
		goal.Name, goal.Description, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate, goal.CategoryID,
		goal.CurrencyCode, goal.Status, goal.IsActive, goal.ID, goal.UserID,
	).Scan(&goal.UpdatedAt)
	return notFound(err, "goal", goal.ID)
}
