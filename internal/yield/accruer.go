// Package yield posts the daily interest of interest-bearing accounts.
package yield

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/ledger"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/money"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

const (
	InterestCategoryName = "Interest"
	Description          = "Daily Yield"

	DefaultAccountTimeout = 30 * time.Second
)

var (
	errNoInterestCategory = errors.New("no Interest category")
	errAlreadyAccrued     = errors.New("yield already accrued for this day")
)

// WorkingSet lists the accounts that earn interest.
type WorkingSet interface {
	GetActiveInterestBearingAccounts(ctx context.Context) ([]*models.Account, error)
}

type Accruer struct {
	accounts WorkingSet
	store    repository.Store
	timeout  time.Duration
}

func NewAccruer(accounts WorkingSet, store repository.Store, accountTimeout time.Duration) *Accruer {
	if accountTimeout <= 0 {
		accountTimeout = DefaultAccountTimeout
	}
	return &Accruer{accounts: accounts, store: store, timeout: accountTimeout}
}

// DailyYield is the interest one day adds to balance at an annual
// effective rate in percent, rounded to minor units.
func DailyYield(balance int64, ratePercent float64) int64 {
	return money.DailyYield(balance, ratePercent)
}

type RunReport struct {
	Date     time.Time        `json:"date"`
	Accounts int              `json:"accounts"`
	Posted   int              `json:"posted"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Accrued  map[string]int64 `json:"accrued"` // minor units per currency
}

type outcome int

const (
	posted outcome = iota
	skipped
)

// Run accrues one day of yield for every account in the working set. A
// failure to list the working set aborts the run; a failure on one account
// is logged and counted while the others proceed. Rerunning on the same
// day posts nothing twice.
func (a *Accruer) Run(ctx context.Context, now time.Time) (*RunReport, error) {
	log := logger.FromContext(ctx)
	report := &RunReport{Date: repository.AccrualDay(now), Accrued: map[string]int64{}}

	accounts, err := a.accounts.GetActiveInterestBearingAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("yield run aborted: %w", err)
	}
	report.Accounts = len(accounts)

	categories := map[uuid.UUID]uuid.UUID{}
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		alog := log.With().Str("account_id", account.ID.String()).Logger()

		amount, result, err := a.accrue(logger.WithContext(ctx, alog), account, now, categories)
		switch {
		case errors.Is(err, errNoInterestCategory):
			alog.Warn().Str("user_id", account.UserID.String()).Msg("no Interest category, skipping account")
			report.Skipped++
		case err != nil:
			alog.Error().Err(err).Msg("yield accrual failed")
			report.Failed++
		case result == skipped:
			report.Skipped++
		default:
			report.Posted++
			report.Accrued[account.CurrencyCode] += amount
		}
	}

	log.Info().
		Int("accounts", report.Accounts).
		Int("posted", report.Posted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("yield run finished")
	return report, nil
}

// accrue handles one account under its own deadline.
func (a *Accruer) accrue(ctx context.Context, account *models.Account, now time.Time, categories map[uuid.UUID]uuid.UUID) (int64, outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	log := logger.FromContext(ctx)

	amount := DailyYield(account.CurrentBalance, account.InterestRate)
	if amount <= 0 {
		return 0, skipped, nil
	}

	categoryID, ok := categories[account.UserID]
	if !ok {
		var err error
		if categoryID, err = a.interestCategory(ctx, account.UserID); err != nil {
			return 0, skipped, err
		}
		categories[account.UserID] = categoryID
	}

	notes := fmt.Sprintf("Automated interest deposit. Rate: %s%% E.A.",
		strconv.FormatFloat(account.InterestRate, 'f', -1, 64))
	merchant := account.Name
	in := ledger.CreateInput{
		AccountID:    account.ID,
		CategoryID:   categoryID,
		Date:         now,
		Amount:       amount,
		Type:         models.TransactionTypeIncome,
		Description:  Description,
		Notes:        &notes,
		CurrencyCode: account.CurrencyCode,
		MerchantName: &merchant,
	}

	err := a.store.WithTx(ctx, func(q repository.Queries) error {
		tx, err := ledger.Post(ctx, q, account.UserID, in, nil)
		if err != nil {
			return err
		}
		claimed, err := q.ClaimAccrual(ctx, &models.YieldAccrual{
			AccountID:     account.ID,
			AccrualDate:   now,
			TransactionID: tx.ID,
			Amount:        amount,
		})
		if err != nil {
			return apperr.Store("claim accrual", err)
		}
		if !claimed {
			return errAlreadyAccrued
		}
		return nil
	})
	if errors.Is(err, errAlreadyAccrued) {
		log.Debug().Msg("already accrued today")
		return 0, skipped, nil
	}
	if err != nil {
		return 0, skipped, err
	}

	log.Info().Int64("amount", amount).Float64("rate", account.InterestRate).Msg("yield posted")
	return amount, posted, nil
}

// interestCategory picks the category named "Interest" (any case) visible
// to the user, preferring the user's own over a global one.
func (a *Accruer) interestCategory(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	categories, err := a.store.ListVisibleCategories(ctx, userID)
	if err != nil {
		return uuid.Nil, apperr.Store("list categories", err)
	}
	var global *models.Category
	for _, c := range categories {
		if !strings.EqualFold(strings.TrimSpace(c.Name), InterestCategoryName) {
			continue
		}
		if c.UserID != nil {
			return c.ID, nil
		}
		if global == nil {
			global = c
		}
	}
	if global == nil {
		return uuid.Nil, errNoInterestCategory
	}
	return global.ID, nil
}

// Markdown renders the report for the run notification.
func (r *RunReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Daily yield %s**\n", r.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Accounts: `%d` Posted: `%d` Skipped: `%d` Failed: `%d`\n",
		r.Accounts, r.Posted, r.Skipped, r.Failed)

	currencies := make([]string, 0, len(r.Accrued))
	for c := range r.Accrued {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		fmt.Fprintf(&b, "%s accrued: `%d`\n", c, r.Accrued[c])
	}
	return b.String()
}
