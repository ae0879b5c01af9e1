// Package repository defines the persistence boundary of the ledger engine.
//
// Services depend on Store; postgres.Store implements it on top of pgx and
// memory.Store keeps everything in process for tests and local runs.
// Lookups of a single entity return apperr.ErrNotFound when it is absent.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/models"
)

// Store is the full query surface plus a transaction runner.
type Store interface {
	Queries

	// WithTx runs fn inside a single store transaction. Every write made
	// through q is committed when fn returns nil and discarded otherwise.
	WithTx(ctx context.Context, fn func(q Queries) error) error
}

type Queries interface {
	UserQueries
	AccountQueries
	CategoryQueries
	TransactionQueries
	GoalQueries
	AccrualQueries
	SummaryQueries
}

type UserQueries interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListCurrencies(ctx context.Context) ([]*models.Currency, error)
	GetCurrency(ctx context.Context, code string) (*models.Currency, error)
}

type AccountQueries interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// UpdateAccount writes the scalar fields. It never touches the balance.
	UpdateAccount(ctx context.Context, account *models.Account) error
	ListActiveAccounts(ctx context.Context, userID uuid.UUID) ([]*models.Account, error)
	ListInterestBearingAccounts(ctx context.Context) ([]*models.Account, error)
	// AdjustBalance adds delta to the cached balance and bumps the version.
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error
	// SetBalance overwrites the cached balance and bumps the version.
	SetBalance(ctx context.Context, accountID uuid.UUID, balance int64) error

	ListConfigurations(ctx context.Context, accountIDs []uuid.UUID) ([]*models.AccountConfiguration, error)
	InsertConfigurations(ctx context.Context, configs []*models.AccountConfiguration) error
	DeleteConfigurations(ctx context.Context, accountID uuid.UUID) error
}

type CategoryQueries interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// ListVisibleCategories returns the user's categories plus global ones, by name.
	ListVisibleCategories(ctx context.Context, userID uuid.UUID) ([]*models.Category, error)
	ListCategoryGroups(ctx context.Context) ([]*models.CategoryGroup, error)
}

type TransactionQueries interface {
	InsertTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	// GetTransactionForUpdate reads the row and locks it until the
	// surrounding store transaction ends.
	GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindTransactionByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	// DeleteTransaction removes the transaction and its items.
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	// ListTransactions returns one page ordered by date descending and the
	// total number of matching rows.
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int, error)

	InsertTransactionItems(ctx context.Context, items []*models.TransactionItem) error
	ListTransactionItems(ctx context.Context, transactionID uuid.UUID) ([]*models.TransactionItem, error)
}

type GoalQueries interface {
	CreateGoal(ctx context.Context, goal *models.FinancialGoal) error
	GetGoal(ctx context.Context, id, userID uuid.UUID) (*models.FinancialGoal, error)
	ListGoals(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.FinancialGoal, error)
	UpdateGoal(ctx context.Context, goal *models.FinancialGoal) error
}

type AccrualQueries interface {
	// ClaimAccrual records the marker for (accountID, day). It returns false
	// when the marker already exists.
	ClaimAccrual(ctx context.Context, accrual *models.YieldAccrual) (bool, error)
}

// AccountActivity pairs an account's cached balance with the signed sum of
// its transaction log.
type AccountActivity struct {
	AccountID      uuid.UUID `json:"account_id"`
	Name           string    `json:"name"`
	CachedBalance  int64     `json:"cached_balance"`
	LedgerNet      int64     `json:"ledger_net"`
	TransactionCnt int       `json:"transaction_count"`
}

type SummaryQueries interface {
	SumActiveAccountBalances(ctx context.Context, userID uuid.UUID) (int64, error)
	SumSignedTransactions(ctx context.Context, userID uuid.UUID) (int64, error)
	CategoryGroupTotals(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]*models.CategoryGroupSummary, error)
	AccountActivity(ctx context.Context, userID uuid.UUID) ([]*AccountActivity, error)
}

// AccrualDay truncates t to the UTC calendar day used for accrual markers.
func AccrualDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
