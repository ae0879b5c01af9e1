package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/models"
)

const transactionColumns = `id, user_id, account_id, category_id, goal_id, transfer_destination_account_id,
	date, amount, type, description, notes, currency_code, receipt_image_url, receipt_processed_at,
	merchant_name, has_line_items, idempotency_key, created_at, updated_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.GoalID, &t.TransferDestinationAccountID,
		&t.Date, &t.Amount, &t.Type, &t.Description, &t.Notes, &t.CurrencyCode, &t.ReceiptImageURL,
		&t.ReceiptProcessedAt, &t.MerchantName, &t.HasLineItems, &t.IdempotencyKey, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	return s.q.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, account_id, category_id, goal_id, transfer_destination_account_id,
		 date, amount, type, description, notes, currency_code, receipt_image_url, receipt_processed_at,
		 merchant_name, has_line_items, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING created_at, updated_at`,
		tx.ID, tx.UserID, tx.AccountID, tx.CategoryID, tx.GoalID, tx.TransferDestinationAccountID,
		tx.Date, tx.Amount, tx.Type, tx.Description, tx.Notes, tx.CurrencyCode, tx.ReceiptImageURL,
		tx.ReceiptProcessedAt, tx.MerchantName, tx.HasLineItems, tx.IdempotencyKey,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, err := scanTransaction(s.q.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return t, nil
}

func (s *Store) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, err := scanTransaction(s.q.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return t, nil
}

func (s *Store) FindTransactionByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Transaction, error) {
	t, err := scanTransaction(s.q.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key))
	if err != nil {
		return nil, notFound(err, "transaction with idempotency key", key)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	err := s.q.QueryRow(ctx,
		`UPDATE transactions SET account_id = $1, category_id = $2, goal_id = $3,
		 transfer_destination_account_id = $4, date = $5, amount = $6, type = $7, description = $8,
		 notes = $9, currency_code = $10, merchant_name = $11, updated_at = NOW()
		 WHERE id = $12
		 RETURNING updated_at`,
		tx.AccountID, tx.CategoryID, tx.GoalID, tx.TransferDestinationAccountID, tx.Date, tx.Amount,
		tx.Type, tx.Description, tx.Notes, tx.CurrencyCode, tx.MerchantName, tx.ID,
	).Scan(&tx.UpdatedAt)
	return notFound(err, "transaction", tx.ID)
}

// DeleteTransaction relies on ON DELETE CASCADE for the items.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("transaction", id)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int, error) {
	const where = `user_id = $1
		 AND ($2::timestamptz IS NULL OR date >= $2)
		 AND ($3::timestamptz IS NULL OR date <= $3)`

	var total int
	err := s.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+where,
		filter.UserID, filter.Range.Start, filter.Range.End,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.q.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+`
		 ORDER BY date DESC, created_at DESC
		 LIMIT $4 OFFSET $5`,
		filter.UserID, filter.Range.Start, filter.Range.End, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

func (s *Store) InsertTransactionItems(ctx context.Context, items []*models.TransactionItem) error {
	for _, item := range items {
		err := s.q.QueryRow(ctx,
			`INSERT INTO transaction_items (id, transaction_id, item_name, quantity, unit_price, total_amount,
			 category_id, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING created_at`,
			item.ID, item.TransactionID, item.ItemName, item.Quantity, item.UnitPrice, item.TotalAmount,
			item.CategoryID, item.SortOrder,
		).Scan(&item.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListTransactionItems(ctx context.Context, transactionID uuid.UUID) ([]*models.TransactionItem, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, transaction_id, item_name, quantity, unit_price, total_amount, category_id, sort_order, created_at
		 FROM transaction_items WHERE transaction_id = $1
		 ORDER BY sort_order ASC`,
		transactionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.TransactionItem
	for rows.Next() {
		item := &models.TransactionItem{}
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.ItemName, &item.Quantity, &item.UnitPrice,
			&item.TotalAmount, &item.CategoryID, &item.SortOrder, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
