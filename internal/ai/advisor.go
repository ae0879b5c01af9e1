package ai

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

const (
	analysisWindow  = 90 * 24 * time.Hour
	maxTransactions = 500
)

const advisorPrompt = `You are an expert financial advisor. You will be given a user's financial profile,
their goals, and their transaction history for the last quarter.
The data is written in a compact token-oriented notation: a header
name[count]{fields}: followed by one comma-separated row per item.
'amount' is in minor units (cents), positive for income and negative for expenses.

Your task is to:
1. Analyze the user's total income, total expenses, and net savings.
2. Analyze their spending patterns, bucketing expenses into "Needs" (e.g. Groceries,
   Utilities, Rent) and "Wants" (e.g. Dining, Shopping, Subscriptions).
3. Compare their spending to the 50/30/20 rule (50% Needs, 30% Wants, 20% Savings).
4. Provide 3-5 concrete, actionable recommendations tailored specifically
   to their profile and goals.
Respond only with your recommendations in a brief, actionable list.`

// Generator produces text from a system and a user message.
type Generator interface {
	Advise(ctx context.Context, systemMsg, userMsg string) (string, error)
}

type TransactionRow struct {
	Date        time.Time
	Description string
	Amount      int64 // signed minor units
	Currency    string
	Category    string
}

type Financials struct {
	Profile      models.FinancialProfile
	Goals        []string
	Transactions []TransactionRow
}

// Encode renders f in the notation described to the model.
func (f Financials) Encode() string {
	rows := make([][]string, len(f.Transactions))
	for i, t := range f.Transactions {
		rows[i] = []string{
			t.Date.UTC().Format("2006-01-02"),
			t.Description,
			strconv.FormatInt(t.Amount, 10),
			t.Currency,
			t.Category,
		}
	}
	return strings.Join([]string{
		field("profile", string(f.Profile)),
		field("goals", strings.Join(f.Goals, ",")),
		table("transactions", []string{"date", "description", "amount", "currency", "category"}, rows),
	}, "\n")
}

type Advisor struct {
	gen   Generator
	store repository.Queries
	now   func() time.Time
}

func NewAdvisor(gen Generator, store repository.Queries) *Advisor {
	return &Advisor{gen: gen, store: store, now: time.Now}
}

// Analyze asks the model for recommendations on f.
func (a *Advisor) Analyze(ctx context.Context, f Financials) (string, error) {
	prompt := "USER_FINANCIAL_DATA:\n" + f.Encode()
	log := logger.FromContext(ctx)
	log.Debug().Int("transactions", len(f.Transactions)).Int("prompt_bytes", len(prompt)).Msg("requesting financial analysis")

	out, err := a.gen.Advise(ctx, advisorPrompt, prompt)
	if err != nil {
		return "", apperr.External("financial advisor", err)
	}
	return strings.TrimSpace(out), nil
}

// AnalyzeUser gathers the user's profile, active goals and last quarter of
// transactions and analyzes them.
func (a *Advisor) AnalyzeUser(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return "", apperr.Store("get user", err)
	}
	goals, err := a.store.ListGoals(ctx, userID, false)
	if err != nil {
		return "", apperr.Store("list goals", err)
	}
	categories, err := a.store.ListVisibleCategories(ctx, userID)
	if err != nil {
		return "", apperr.Store("list categories", err)
	}
	since := a.now().Add(-analysisWindow)
	txs, _, err := a.store.ListTransactions(ctx, models.TransactionFilter{
		UserID: userID,
		Range:  models.DateRange{Start: &since},
		Limit:  maxTransactions,
	})
	if err != nil {
		return "", apperr.Store("list transactions", err)
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	f := Financials{Profile: user.Profile, Goals: make([]string, len(goals))}
	for i, g := range goals {
		f.Goals[i] = g.Name
	}
	for _, t := range txs {
		f.Transactions = append(f.Transactions, TransactionRow{
			Date:        t.Date,
			Description: t.Description,
			Amount:      t.SignedAmount(),
			Currency:    t.CurrencyCode,
			Category:    names[t.CategoryID],
		})
	}
	return a.Analyze(ctx, f)
}
