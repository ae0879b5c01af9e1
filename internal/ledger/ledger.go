// Package ledger owns every write that moves an account balance. A
// transaction row and its balance adjustment are always persisted in the
// same store transaction.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	AccountID                    uuid.UUID              `json:"account_id"`
	CategoryID                   uuid.UUID              `json:"category_id"`
	GoalID                       *uuid.UUID             `json:"goal_id,omitempty"`
	TransferDestinationAccountID *uuid.UUID             `json:"transfer_destination_account_id,omitempty"`
	Date                         time.Time              `json:"date"`
	Amount                       int64                  `json:"amount"`
	Type                         models.TransactionType `json:"type"`
	Description                  string                 `json:"description"`
	Notes                        *string                `json:"notes,omitempty"`
	CurrencyCode                 string                 `json:"currency_code,omitempty"`
	MerchantName                 *string                `json:"merchant_name,omitempty"`
	ReceiptImageURL              *string                `json:"receipt_image_url,omitempty"`
	ReceiptProcessedAt           *time.Time             `json:"receipt_processed_at,omitempty"`
	IdempotencyKey               *string                `json:"idempotency_key,omitempty"`
	// HasLineItems marks the transaction as itemized even when no items
	// are written with it.
	HasLineItems                 bool                   `json:"has_line_items,omitempty"`
}

type ItemInput struct {
	ItemName    string     `json:"item_name"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   int64      `json:"unit_price"`
	TotalAmount int64      `json:"total_amount"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
}

// Patch carries the fields of a partial update. Nil means unchanged;
// ClearGoal and ClearNotes remove the goal link and the notes.
type Patch struct {
	AccountID    *uuid.UUID              `json:"account_id,omitempty"`
	CategoryID   *uuid.UUID              `json:"category_id,omitempty"`
	GoalID       *uuid.UUID              `json:"goal_id,omitempty"`
	Date         *time.Time              `json:"date,omitempty"`
	Amount       *int64                  `json:"amount,omitempty"`
	Type         *models.TransactionType `json:"type,omitempty"`
	Description  *string                 `json:"description,omitempty"`
	Notes        *string                 `json:"notes,omitempty"`
	CurrencyCode *string                 `json:"currency_code,omitempty"`
	MerchantName *string                 `json:"merchant_name,omitempty"`
	ClearGoal    bool                    `json:"clear_goal,omitempty"`
	ClearNotes   bool                    `json:"clear_notes,omitempty"`
}

type Page struct {
	Page  int
	Limit int
}

type ListResult struct {
	Transactions []*models.Transaction `json:"transactions"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"totalPages"`
}

// CreateTransaction posts a transaction and adjusts its account balance.
// A request carrying an idempotency key that was already used by the user
// returns the stored transaction without a second adjustment.
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.Transaction, error) {
	out, err := s.CreateTransactionWithItems(ctx, userID, in, nil)
	if err != nil {
		return nil, err
	}
	return &out.Transaction, nil
}

// CreateTransactionWithItems writes the transaction, its balance adjustment
// and its line items atomically.
func (s *Service) CreateTransactionWithItems(ctx context.Context, userID uuid.UUID, in CreateInput, items []ItemInput) (*models.TransactionWithItems, error) {
	if in.IdempotencyKey != nil {
		if prior, err := s.replay(ctx, userID, *in.IdempotencyKey); err != nil || prior != nil {
			return prior, err
		}
	}

	var out *models.TransactionWithItems
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		out, err = Post(ctx, q, userID, in, items)
		return err
	})
	if err != nil {
		if in.IdempotencyKey != nil && errors.Is(err, apperr.ErrStore) {
			// A concurrent request with the same key may have won the insert.
			if prior, perr := s.replay(ctx, userID, *in.IdempotencyKey); perr == nil && prior != nil {
				return prior, nil
			}
		}
		return nil, apperr.Store("create transaction", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", out.ID.String()).
		Str("account_id", out.AccountID.String()).
		Int64("signed_amount", out.SignedAmount()).
		Int("items", len(out.Items)).
		Msg("transaction created")
	return out, nil
}

func (s *Service) replay(ctx context.Context, userID uuid.UUID, key string) (*models.TransactionWithItems, error) {
	prior, err := s.store.FindTransactionByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Store("find transaction by idempotency key", err)
	}
	items, err := s.store.ListTransactionItems(ctx, prior.ID)
	if err != nil {
		return nil, apperr.Store("list transaction items", err)
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", prior.ID.String()).
		Str("idempotency_key", key).
		Msg("idempotent replay, no balance change")
	return &models.TransactionWithItems{Transaction: *prior, Items: items}, nil
}

// Post validates in and writes the transaction, the balance adjustment and
// the items through q. It must run inside a store transaction; callers that
// need to combine a post with other writes (the yield accrual marker) use
// it directly.
func Post(ctx context.Context, q repository.Queries, userID uuid.UUID, in CreateInput, items []ItemInput) (*models.TransactionWithItems, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	for i, item := range items {
		if err := validateItem(i, item); err != nil {
			return nil, err
		}
	}

	account, err := ownedAccount(ctx, q, userID, in.AccountID)
	if err != nil {
		return nil, err
	}
	currency, err := matchCurrency(account, in.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if err := visibleCategory(ctx, q, userID, in.CategoryID); err != nil {
		return nil, err
	}
	if err := checkReferences(ctx, q, userID, in.GoalID, in.TransferDestinationAccountID); err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.CategoryID != nil {
			if err := visibleCategory(ctx, q, userID, *item.CategoryID); err != nil {
				return nil, err
			}
		}
	}

	tx := &models.Transaction{
		ID:                           uuid.New(),
		UserID:                       userID,
		AccountID:                    account.ID,
		CategoryID:                   in.CategoryID,
		GoalID:                       in.GoalID,
		TransferDestinationAccountID: in.TransferDestinationAccountID,
		Date:                         in.Date,
		Amount:                       in.Amount,
		Type:                         in.Type,
		Description:                  strings.TrimSpace(in.Description),
		Notes:                        in.Notes,
		CurrencyCode:                 currency,
		ReceiptImageURL:              in.ReceiptImageURL,
		ReceiptProcessedAt:           in.ReceiptProcessedAt,
		MerchantName:                 in.MerchantName,
		HasLineItems:                 in.HasLineItems || len(items) > 0,
		IdempotencyKey:               in.IdempotencyKey,
	}
	if err := q.InsertTransaction(ctx, tx); err != nil {
		return nil, apperr.Store("insert transaction", err)
	}
	if err := q.AdjustBalance(ctx, account.ID, tx.SignedAmount()); err != nil {
		return nil, apperr.Store("adjust balance", err)
	}

	rows := make([]*models.TransactionItem, len(items))
	for i, item := range items {
		rows[i] = &models.TransactionItem{
			ID:            uuid.New(),
			TransactionID: tx.ID,
			ItemName:      strings.TrimSpace(item.ItemName),
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalAmount:   item.TotalAmount,
			CategoryID:    item.CategoryID,
			SortOrder:     i,
		}
	}
	if len(rows) > 0 {
		if err := q.InsertTransactionItems(ctx, rows); err != nil {
			return nil, apperr.Store("insert transaction items", err)
		}
	}
	return &models.TransactionWithItems{Transaction: *tx, Items: rows}, nil
}

// UpdateTransaction applies patch. When the account, amount or type
// changes, the old signed amount is reversed and the new one applied in the
// same store transaction.
func (s *Service) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch Patch) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		old, err := q.GetTransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old.UserID != userID {
			return apperr.NotFound("transaction", id)
		}

		next := *old
		if err := applyPatch(&next, patch); err != nil {
			return err
		}

		// Transactions on a deactivated account stay editable; only moving
		// one onto an inactive account is refused.
		account, err := userAccount(ctx, q, userID, next.AccountID)
		if err != nil {
			return err
		}
		if next.AccountID != old.AccountID && !account.IsActive {
			return apperr.Validation("account %s is inactive", account.ID)
		}
		// A moved transaction takes the new account's currency unless the
		// caller set one explicitly.
		requested := ""
		if patch.CurrencyCode != nil {
			requested = *patch.CurrencyCode
		} else if next.AccountID == old.AccountID {
			requested = old.CurrencyCode
		}
		if next.CurrencyCode, err = matchCurrency(account, requested); err != nil {
			return err
		}
		if patch.CategoryID != nil {
			if err := visibleCategory(ctx, q, userID, next.CategoryID); err != nil {
				return err
			}
		}
		if patch.GoalID != nil {
			if err := checkReferences(ctx, q, userID, next.GoalID, nil); err != nil {
				return err
			}
		}

		if err := q.UpdateTransaction(ctx, &next); err != nil {
			return err
		}
		if err := rebalance(ctx, q, old, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, apperr.Store("update transaction", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", id.String()).
		Str("account_id", updated.AccountID.String()).
		Msg("transaction updated")
	return updated, nil
}

// rebalance moves the balance effect from old to next. When the
// transaction changes account, the two rows are adjusted in ascending id
// order so opposite moves cannot deadlock on the row locks.
func rebalance(ctx context.Context, q repository.Queries, old, next *models.Transaction) error {
	if old.AccountID == next.AccountID {
		delta := next.SignedAmount() - old.SignedAmount()
		if delta == 0 {
			return nil
		}
		return q.AdjustBalance(ctx, next.AccountID, delta)
	}

	type adjustment struct {
		accountID uuid.UUID
		delta     int64
	}
	steps := [2]adjustment{
		{old.AccountID, -old.SignedAmount()},
		{next.AccountID, next.SignedAmount()},
	}
	if bytes.Compare(steps[1].accountID[:], steps[0].accountID[:]) < 0 {
		steps[0], steps[1] = steps[1], steps[0]
	}
	for _, step := range steps {
		if err := q.AdjustBalance(ctx, step.accountID, step.delta); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTransaction removes the transaction with its items and reverses
// its balance contribution.
func (s *Service) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		old, err := q.GetTransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old.UserID != userID {
			return apperr.NotFound("transaction", id)
		}
		if err := q.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		return q.AdjustBalance(ctx, old.AccountID, -old.SignedAmount())
	})
	if err != nil {
		return apperr.Store("delete transaction", err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("transaction_id", id.String()).Msg("transaction deleted")
	return nil
}

// ListTransactions returns one page of the user's transactions, newest
// first. Zero page or limit take the defaults; limit is capped at MaxLimit.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, r models.DateRange, p Page) (*ListResult, error) {
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return nil, apperr.Validation("end date %s is before start date %s",
			r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	txs, total, err := s.store.ListTransactions(ctx, models.TransactionFilter{
		UserID: userID,
		Range:  r,
		Limit:  p.Limit,
		Offset: (p.Page - 1) * p.Limit,
	})
	if err != nil {
		return nil, apperr.Store("list transactions", err)
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}
	return &ListResult{
		Transactions: txs,
		Total:        total,
		Page:         p.Page,
		Limit:        p.Limit,
		TotalPages:   (total + p.Limit - 1) / p.Limit,
	}, nil
}

func (s *Service) GetTransactionWithItems(ctx context.Context, userID, id uuid.UUID) (*models.TransactionWithItems, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, apperr.Store("get transaction", err)
	}
	if tx.UserID != userID {
		return nil, apperr.NotFound("transaction", id)
	}
	items, err := s.store.ListTransactionItems(ctx, id)
	if err != nil {
		return nil, apperr.Store("list transaction items", err)
	}
	if items == nil {
		items = []*models.TransactionItem{}
	}
	return &models.TransactionWithItems{Transaction: *tx, Items: items}, nil
}
