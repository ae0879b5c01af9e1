package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

var errDuplicateKey = errors.New("duplicate idempotency key")

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var out *models.User
	err := s.read(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return apperr.NotFound("user", id)
		}
		out = &u
		return nil
	})
	return out, err
}

func (s *Store) ListCurrencies(ctx context.Context) ([]*models.Currency, error) {
	var out []*models.Currency
	err := s.read(func(d *data) error {
		for _, c := range d.currencies {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (s *Store) GetCurrency(ctx context.Context, code string) (*models.Currency, error) {
	var out *models.Currency
	err := s.read(func(d *data) error {
		c, ok := d.currencies[code]
		if !ok {
			return apperr.NotFound("currency", code)
		}
		out = &c
		return nil
	})
	return out, err
}

// Accounts

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	return s.write(ctx, func(d *data) error {
		now := d.stamp(s.now())
		account.Version = 0
		account.CreatedAt = now
		account.UpdatedAt = now
		row := *account
		row.Configurations = nil
		d.accounts[account.ID] = row
		return nil
	})
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var out *models.Account
	err := s.read(func(d *data) error {
		a, ok := d.accounts[id]
		if !ok {
			return apperr.NotFound("account", id)
		}
		out = &a
		return nil
	})
	return out, err
}

func (s *Store) UpdateAccount(ctx context.Context, account *models.Account) error {
	return s.write(ctx, func(d *data) error {
		row, ok := d.accounts[account.ID]
		if !ok {
			return apperr.NotFound("account", account.ID)
		}
		row.Name = account.Name
		row.Type = account.Type
		row.CurrencyCode = account.CurrencyCode
		row.IsActive = account.IsActive
		row.Color = account.Color
		row.IsTaxExempt = account.IsTaxExempt
		row.InterestRate = account.InterestRate
		row.UpdatedAt = d.stamp(s.now())
		d.accounts[row.ID] = row

		account.CurrentBalance = row.CurrentBalance
		account.Version = row.Version
		account.UpdatedAt = row.UpdatedAt
		return nil
	})
}

func (s *Store) listAccounts(keep func(a models.Account) bool) []*models.Account {
	var out []*models.Account
	_ = s.read(func(d *data) error {
		for _, a := range d.accounts {
			if keep(a) {
				a := a
				out = append(out, &a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) ListActiveAccounts(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	return s.listAccounts(func(a models.Account) bool {
		return a.UserID == userID && a.IsActive
	}), nil
}

func (s *Store) ListInterestBearingAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.listAccounts(func(a models.Account) bool {
		return a.IsActive && a.InterestRate > 0 && a.CurrentBalance > 0
	}), nil
}

func (s *Store) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	return s.write(ctx, func(d *data) error {
		a, ok := d.accounts[accountID]
		if !ok {
			return apperr.NotFound("account", accountID)
		}
		a.CurrentBalance += delta
		a.Version++
		a.UpdatedAt = d.stamp(s.now())
		d.accounts[accountID] = a
		return nil
	})
}

func (s *Store) SetBalance(ctx context.Context, accountID uuid.UUID, balance int64) error {
	return s.write(ctx, func(d *data) error {
		a, ok := d.accounts[accountID]
		if !ok {
			return apperr.NotFound("account", accountID)
		}
		a.CurrentBalance = balance
		a.Version++
		a.UpdatedAt = d.stamp(s.now())
		d.accounts[accountID] = a
		return nil
	})
}

func (s *Store) ListConfigurations(ctx context.Context, accountIDs []uuid.UUID) ([]*models.AccountConfiguration, error) {
	want := make(map[uuid.UUID]bool, len(accountIDs))
	for _, id := range accountIDs {
		want[id] = true
	}
	var out []*models.AccountConfiguration
	_ = s.read(func(d *data) error {
		for _, c := range d.configs {
			if want[c.AccountID] {
				c := c
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InsertConfigurations(ctx context.Context, configs []*models.AccountConfiguration) error {
	return s.write(ctx, func(d *data) error {
		for _, c := range configs {
			if _, ok := d.accounts[c.AccountID]; !ok {
				return apperr.NotFound("account", c.AccountID)
			}
			c.CreatedAt = d.stamp(s.now())
			d.configs[c.ID] = *c
		}
		return nil
	})
}

func (s *Store) DeleteConfigurations(ctx context.Context, accountID uuid.UUID) error {
	return s.write(ctx, func(d *data) error {
		for id, c := range d.configs {
			if c.AccountID == accountID {
				delete(d.configs, id)
			}
		}
		return nil
	})
}

// Categories

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.write(ctx, func(d *data) error {
		category.CreatedAt = d.stamp(s.now())
		d.categories[category.ID] = *category
		return nil
	})
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var out *models.Category
	err := s.read(func(d *data) error {
		c, ok := d.categories[id]
		if !ok {
			return apperr.NotFound("category", id)
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *Store) ListVisibleCategories(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	var out []*models.Category
	_ = s.read(func(d *data) error {
		for _, c := range d.categories {
			if c.VisibleTo(userID) {
				c := c
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListCategoryGroups(ctx context.Context) ([]*models.CategoryGroup, error) {
	var out []*models.CategoryGroup
	_ = s.read(func(d *data) error {
		for _, g := range d.groups {
			g := g
			out = append(out, &g)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// Transactions

func (s *Store) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	return s.write(ctx, func(d *data) error {
		if tx.IdempotencyKey != nil {
			for _, t := range d.transactions {
				if t.UserID == tx.UserID && t.IdempotencyKey != nil && *t.IdempotencyKey == *tx.IdempotencyKey {
					return errDuplicateKey
				}
			}
		}
		now := d.stamp(s.now())
		tx.CreatedAt = now
		tx.UpdatedAt = now
		d.transactions[tx.ID] = *tx
		return nil
	})
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.read(func(d *data) error {
		t, ok := d.transactions[id]
		if !ok {
			return apperr.NotFound("transaction", id)
		}
		out = &t
		return nil
	})
	return out, err
}

// GetTransactionForUpdate needs no row lock: transactions already run one
// at a time.
func (s *Store) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.GetTransaction(ctx, id)
}

func (s *Store) FindTransactionByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.read(func(d *data) error {
		for _, t := range d.transactions {
			if t.UserID == userID && t.IdempotencyKey != nil && *t.IdempotencyKey == key {
				out = &t
				return nil
			}
		}
		return apperr.NotFound("transaction with idempotency key", key)
	})
	return out, err
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	return s.write(ctx, func(d *data) error {
		row, ok := d.transactions[tx.ID]
		if !ok {
			return apperr.NotFound("transaction", tx.ID)
		}
		row.AccountID = tx.AccountID
		row.CategoryID = tx.CategoryID
		row.GoalID = tx.GoalID
		row.TransferDestinationAccountID = tx.TransferDestinationAccountID
		row.Date = tx.Date
		row.Amount = tx.Amount
		row.Type = tx.Type
		row.Description = tx.Description
		row.Notes = tx.Notes
		row.CurrencyCode = tx.CurrencyCode
		row.MerchantName = tx.MerchantName
		row.UpdatedAt = d.stamp(s.now())
		d.transactions[tx.ID] = row
		tx.UpdatedAt = row.UpdatedAt
		return nil
	})
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, func(d *data) error {
		if _, ok := d.transactions[id]; !ok {
			return apperr.NotFound("transaction", id)
		}
		delete(d.transactions, id)
		for itemID, item := range d.items {
			if item.TransactionID == id {
				delete(d.items, itemID)
			}
		}
		return nil
	})
}

func (s *Store) userTransactions(userID uuid.UUID, r models.DateRange) []*models.Transaction {
	var out []*models.Transaction
	_ = s.read(func(d *data) error {
		for _, t := range d.transactions {
			if t.UserID == userID && r.Contains(t.Date) {
				t := t
				out = append(out, &t)
			}
		}
		return nil
	})
	return out
}

func (s *Store) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int, error) {
	all := s.userTransactions(filter.UserID, filter.Range)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return all[start:end], total, nil
}

func (s *Store) InsertTransactionItems(ctx context.Context, items []*models.TransactionItem) error {
	return s.write(ctx, func(d *data) error {
		for _, item := range items {
			if _, ok := d.transactions[item.TransactionID]; !ok {
				return apperr.NotFound("transaction", item.TransactionID)
			}
			item.CreatedAt = d.stamp(s.now())
			d.items[item.ID] = *item
		}
		return nil
	})
}

func (s *Store) ListTransactionItems(ctx context.Context, transactionID uuid.UUID) ([]*models.TransactionItem, error) {
	var out []*models.TransactionItem
	_ = s.read(func(d *data) error {
		for _, item := range d.items {
			if item.TransactionID == transactionID {
				item := item
				out = append(out, &item)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// Goals

func (s *Store) CreateGoal(ctx context.Context, goal *models.FinancialGoal) error {
	return s.write(ctx, func(d *data) error {
		now := d.stamp(s.now())
		goal.CreatedAt = now
		goal.UpdatedAt = now
		d.goals[goal.ID] = *goal
		return nil
	})
}

func (s *Store) GetGoal(ctx context.Context, id, userID uuid.UUID) (*models.FinancialGoal, error) {
	var out *models.FinancialGoal
	err := s.read(func(d *data) error {
		g, ok := d.goals[id]
		if !ok || g.UserID != userID {
			return apperr.NotFound("goal", id)
		}
		out = &g
		return nil
	})
	return out, err
}

func (s *Store) ListGoals(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.FinancialGoal, error) {
	var out []*models.FinancialGoal
	_ = s.read(func(d *data) error {
		for _, g := range d.goals {
			if g.UserID != userID {
				continue
			}
			if !includeArchived && g.Status == models.GoalStatusArchived {
				continue
			}
			g := g
			out = append(out, &g)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateGoal(ctx context.Context, goal *models.FinancialGoal) error {
	return s.write(ctx, func(d *data) error {
		row, ok := d.goals[goal.ID]
		if !ok || row.UserID != goal.UserID {
			return apperr.NotFound("goal", goal.ID)
		}
		goal.CreatedAt = row.CreatedAt
		goal.UpdatedAt = d.stamp(s.now())
		d.goals[goal.ID] = *goal
		return nil
	})
}

// Accruals and summaries

func (s *Store) ClaimAccrual(ctx context.Context, accrual *models.YieldAccrual) (bool, error) {
	claimed := false
	err := s.write(ctx, func(d *data) error {
		key := accrualKey{accountID: accrual.AccountID, day: repository.AccrualDay(accrual.AccrualDate)}
		if _, ok := d.accruals[key]; ok {
			return nil
		}
		row := *accrual
		row.AccrualDate = key.day
		d.accruals[key] = row
		claimed = true
		return nil
	})
	return claimed, err
}

func (s *Store) SumActiveAccountBalances(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	for _, a := range s.listAccounts(func(a models.Account) bool { return a.UserID == userID && a.IsActive }) {
		total += a.CurrentBalance
	}
	return total, nil
}

func (s *Store) SumSignedTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	for _, t := range s.userTransactions(userID, models.DateRange{}) {
		total += t.SignedAmount()
	}
	return total, nil
}

func (s *Store) CategoryGroupTotals(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]*models.CategoryGroupSummary, error) {
	byGroup := map[uuid.UUID]*models.CategoryGroupSummary{}
	_ = s.read(func(d *data) error {
		for _, t := range d.transactions {
			if t.UserID != userID || !r.Contains(t.Date) {
				continue
			}
			c, ok := d.categories[t.CategoryID]
			if !ok || c.CategoryGroupID == nil {
				continue
			}
			g, ok := d.groups[*c.CategoryGroupID]
			if !ok {
				continue
			}
			sum, ok := byGroup[g.ID]
			if !ok {
				sum = &models.CategoryGroupSummary{CategoryGroupID: g.ID, CategoryGroupName: g.Name, SortOrder: g.SortOrder}
				byGroup[g.ID] = sum
			}
			sum.NetAmount += t.SignedAmount()
			sum.TransactionCount++
		}
		return nil
	})

	out := make([]*models.CategoryGroupSummary, 0, len(byGroup))
	for _, sum := range byGroup {
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return strings.Compare(string(out[i].CategoryGroupName), string(out[j].CategoryGroupName)) < 0
	})
	return out, nil
}

func (s *Store) AccountActivity(ctx context.Context, userID uuid.UUID) ([]*repository.AccountActivity, error) {
	accounts := s.listAccounts(func(a models.Account) bool { return a.UserID == userID && a.IsActive })
	byAccount := make(map[uuid.UUID]*repository.AccountActivity, len(accounts))
	out := make([]*repository.AccountActivity, 0, len(accounts))
	for _, a := range accounts {
		act := &repository.AccountActivity{AccountID: a.ID, Name: a.Name, CachedBalance: a.CurrentBalance}
		byAccount[a.ID] = act
		out = append(out, act)
	}
	for _, t := range s.userTransactions(userID, models.DateRange{}) {
		if act, ok := byAccount[t.AccountID]; ok {
			act.LedgerNet += t.SignedAmount()
			act.TransactionCnt++
		}
	}
	return out, nil
}
