package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/models"
)

const accountColumns = `id, user_id, name, type, currency_code, current_balance, is_active, color,
	is_tax_exempt, interest_rate, version, created_at, updated_at`

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.CurrencyCode, &a.CurrentBalance,
		&a.IsActive, &a.Color, &a.IsTaxExempt, &a.InterestRate, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	return s.q.QueryRow(ctx,
		`INSERT INTO accounts (id, user_id, name, type, currency_code, current_balance, is_active, color,
		 is_tax_exempt, interest_rate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING version, created_at, updated_at`,
		account.ID, account.UserID, account.Name, account.Type, account.CurrencyCode, account.CurrentBalance,
		account.IsActive, account.Color, account.IsTaxExempt, account.InterestRate,
	).Scan(&account.Version, &account.CreatedAt, &account.UpdatedAt)
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	a, err := scanAccount(s.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "account", id)
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, account *models.Account) error {
	err := s.q.QueryRow(ctx,
		`UPDATE accounts SET name = $1, type = $2, currency_code = $3, is_active = $4, color = $5,
		 is_tax_exempt = $6, interest_rate = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING current_balance, version, updated_at`,
		account.Name, account.Type, account.CurrencyCode, account.IsActive, account.Color,
		account.IsTaxExempt, account.InterestRate, account.ID,
	).Scan(&account.CurrentBalance, &account.Version, &account.UpdatedAt)
	return notFound(err, "account", account.ID)
}

func (s *Store) listAccounts(ctx context.Context, where string, args ...any) ([]*models.Account, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE `+where+` ORDER BY created_at ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) ListActiveAccounts(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	return s.listAccounts(ctx, `user_id = $1 AND is_active`, userID)
}

func (s *Store) ListInterestBearingAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.listAccounts(ctx, `is_active AND interest_rate > 0 AND current_balance > 0`)
}

// AdjustBalance relies on the row lock taken by UPDATE to serialize
// concurrent writers of the same account.
func (s *Store) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE accounts SET current_balance = current_balance + $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2`,
		delta, accountID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account", accountID)
	}
	return nil
}

func (s *Store) SetBalance(ctx context.Context, accountID uuid.UUID, balance int64) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE accounts SET current_balance = $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2`,
		balance, accountID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account", accountID)
	}
	return nil
}

func (s *Store) ListConfigurations(ctx context.Context, accountIDs []uuid.UUID) ([]*models.AccountConfiguration, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx,
		`SELECT id, account_id, name, type, value, currency_code, frequency, applies_to, is_active, created_at
		 FROM account_configurations WHERE account_id = ANY($1)
		 ORDER BY created_at ASC, id ASC`,
		accountIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.AccountConfiguration
	for rows.Next() {
		c := &models.AccountConfiguration{}
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.Type, &c.Value, &c.CurrencyCode,
			&c.Frequency, &c.AppliesTo, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (s *Store) InsertConfigurations(ctx context.Context, configs []*models.AccountConfiguration) error {
	for _, c := range configs {
		err := s.q.QueryRow(ctx,
			`INSERT INTO account_configurations (id, account_id, name, type, value, currency_code, frequency,
			 applies_to, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING created_at`,
			c.ID, c.AccountID, c.Name, c.Type, c.Value, c.CurrencyCode, c.Frequency, c.AppliesTo, c.IsActive,
		).Scan(&c.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteConfigurations(ctx context.Context, accountID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM account_configurations WHERE account_id = $1`, accountID)
	return err
}
