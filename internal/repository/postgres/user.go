package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/models"
)

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.q.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, profile, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Profile, &user.CreatedAt)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

func (s *Store) ListCurrencies(ctx context.Context) ([]*models.Currency, error) {
	rows, err := s.q.Query(ctx,
		`SELECT code, name, symbol, decimal_digits FROM currencies ORDER BY code`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var currencies []*models.Currency
	for rows.Next() {
		c := &models.Currency{}
		if err := rows.Scan(&c.Code, &c.Name, &c.Symbol, &c.DecimalDigits); err != nil {
			return nil, err
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

func (s *Store) GetCurrency(ctx context.Context, code string) (*models.Currency, error) {
	c := &models.Currency{}
	err := s.q.QueryRow(ctx,
		`SELECT code, name, symbol, decimal_digits FROM currencies WHERE code = $1`,
		code,
	).Scan(&c.Code, &c.Name, &c.Symbol, &c.DecimalDigits)
	if err != nil {
		return nil, notFound(err, "currency", code)
	}
	return c, nil
}
