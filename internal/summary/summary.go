// Package summary computes read-only views derived from accounts and the
// transaction log.
package summary

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

type Service struct {
	store repository.Queries
}

func NewService(store repository.Queries) *Service {
	return &Service{store: store}
}

// Balance compares the cached account balances with the transaction log.
type Balance struct {
	AccountsTotalBalance     int64 `json:"accounts_total_balance"`
	TransactionTotal         int64 `json:"transaction_total"`
	CurrentCalculatedBalance int64 `json:"current_calculated_balance"`
}

// GetUserBalance sums active account balances and the signed transaction
// log independently. A mismatch between the two exposes drift.
func (s *Service) GetUserBalance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	var b Balance
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.store.SumActiveAccountBalances(gctx, userID)
		if err != nil {
			return apperr.Store("sum account balances", err)
		}
		b.AccountsTotalBalance = total
		return nil
	})
	g.Go(func() error {
		total, err := s.store.SumSignedTransactions(gctx, userID)
		if err != nil {
			return apperr.Store("sum transactions", err)
		}
		b.TransactionTotal = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	b.CurrentCalculatedBalance = b.AccountsTotalBalance + b.TransactionTotal
	return &b, nil
}

// GetCategoryGroupSummary returns the net amount and count per category
// group in the range. Groups without transactions are omitted and
// transactions in ungrouped categories are ignored.
func (s *Service) GetCategoryGroupSummary(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]*models.CategoryGroupSummary, error) {
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return nil, apperr.Validation("end date is before start date")
	}
	totals, err := s.store.CategoryGroupTotals(ctx, userID, r)
	if err != nil {
		return nil, apperr.Store("category group totals", err)
	}
	out := make([]*models.CategoryGroupSummary, 0, len(totals))
	for _, t := range totals {
		if t.TransactionCount > 0 {
			out = append(out, t)
		}
	}
	return out, nil
}

// AccountActivity lists each active account's cached balance next to the
// signed sum of its transactions. No opening balance is stored, so the
// difference is reported, not asserted.
func (s *Service) AccountActivity(ctx context.Context, userID uuid.UUID) ([]*repository.AccountActivity, error) {
	activity, err := s.store.AccountActivity(ctx, userID)
	if err != nil {
		return nil, apperr.Store("account activity", err)
	}
	if activity == nil {
		activity = []*repository.AccountActivity{}
	}
	return activity, nil
}
