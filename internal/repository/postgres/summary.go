package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

const signedAmount = `CASE WHEN t.type = 'Income' THEN t.amount ELSE -t.amount END`

func (s *Store) ClaimAccrual(ctx context.Context, accrual *models.YieldAccrual) (bool, error) {
	tag, err := s.q.Exec(ctx,
		`INSERT INTO yield_accruals (account_id, accrual_date, transaction_id, amount)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_id, accrual_date) DO NOTHING`,
		accrual.AccountID, repository.AccrualDay(accrual.AccrualDate), accrual.TransactionID, accrual.Amount,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SumActiveAccountBalances(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(current_balance), 0)::BIGINT FROM accounts WHERE user_id = $1 AND is_active`,
		userID,
	).Scan(&total)
	return total, err
}

func (s *Store) SumSignedTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(`+signedAmount+`), 0)::BIGINT FROM transactions t WHERE t.user_id = $1`,
		userID,
	).Scan(&total)
	return total, err
}

func (s *Store) CategoryGroupTotals(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]*models.CategoryGroupSummary, error) {
	rows, err := s.q.Query(ctx,
		`SELECT g.id, g.name, g.sort_order, SUM(`+signedAmount+`)::BIGINT, COUNT(*)
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 JOIN category_groups g ON g.id = c.category_group_id
		 WHERE t.user_id = $1
		   AND ($2::timestamptz IS NULL OR t.date >= $2)
		   AND ($3::timestamptz IS NULL OR t.date <= $3)
		 GROUP BY g.id, g.name, g.sort_order
		 ORDER BY g.sort_order ASC`,
		userID, r.Start, r.End,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.CategoryGroupSummary
	for rows.Next() {
		sum := &models.CategoryGroupSummary{}
		if err := rows.Scan(&sum.CategoryGroupID, &sum.CategoryGroupName, &sum.SortOrder,
			&sum.NetAmount, &sum.TransactionCount); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) AccountActivity(ctx context.Context, userID uuid.UUID) ([]*repository.AccountActivity, error) {
	rows, err := s.q.Query(ctx,
		`SELECT a.id, a.name, a.current_balance, COALESCE(SUM(`+signedAmount+`), 0)::BIGINT, COUNT(t.id)
		 FROM accounts a
		 LEFT JOIN transactions t ON t.account_id = a.id
		 WHERE a.user_id = $1 AND a.is_active
		 GROUP BY a.id
		 ORDER BY a.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repository.AccountActivity
	for rows.Next() {
		a := &repository.AccountActivity{}
		if err := rows.Scan(&a.AccountID, &a.Name, &a.CachedBalance, &a.LedgerNet, &a.TransactionCnt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
