package ledger

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
	"github.com/diego28e/backend-wealth-builder/internal/repository/memory"
)

type fixture struct {
	store   *memory.Store
	svc     *Service
	userID  uuid.UUID
	account *models.Account
}

func newFixture(t *testing.T, startBalance int64) *fixture {
	t.Helper()
	store := memory.NewSeededStore()
	f := &fixture{store: store, svc: NewService(store), userID: uuid.New()}
	f.account = f.addAccount(t, f.userID, "COP", startBalance)
	return f
}

func (f *fixture) addAccount(t *testing.T, userID uuid.UUID, currency string, balance int64) *models.Account {
	t.Helper()
	a := &models.Account{
		ID: uuid.New(), UserID: userID, Name: "Main", Type: models.AccountTypeSavings,
		CurrencyCode: currency, CurrentBalance: balance, IsActive: true,
	}
	if err := f.store.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func (f *fixture) balance(t *testing.T, accountID uuid.UUID) int64 {
	t.Helper()
	a, err := f.store.GetAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return a.CurrentBalance
}

func (f *fixture) input(typ models.TransactionType, amount int64) CreateInput {
	return CreateInput{
		AccountID:   f.account.ID,
		CategoryID:  memory.CategoryGroceriesID,
		Date:        time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC),
		Amount:      amount,
		Type:        typ,
		Description: "market",
	}
}

func TestCreateTransactionAdjustsBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)

	tx, err := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 300))
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if tx.CurrencyCode != "COP" {
		t.Errorf("currency = %q, want inferred COP", tx.CurrencyCode)
	}
	if got := f.balance(t, f.account.ID); got != 700 {
		t.Errorf("balance after expense = %d, want 700", got)
	}

	if _, err := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeIncome, 50)); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if got := f.balance(t, f.account.ID); got != 750 {
		t.Errorf("balance after income = %d, want 750", got)
	}
}

func TestCreateTransactionRejectsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	other := f.addAccount(t, uuid.New(), "COP", 500)
	privateCategory := models.Category{ID: uuid.New(), UserID: ptr(uuid.New()), Name: "Theirs", IsActive: true}
	f.store.PutCategory(privateCategory)

	tests := []struct {
		name   string
		mutate func(in *CreateInput)
		want   error
	}{
		{"zero amount", func(in *CreateInput) { in.Amount = 0 }, apperr.ErrValidation},
		{"negative amount", func(in *CreateInput) { in.Amount = -5 }, apperr.ErrValidation},
		{"missing description", func(in *CreateInput) { in.Description = "  " }, apperr.ErrValidation},
		{"missing date", func(in *CreateInput) { in.Date = time.Time{} }, apperr.ErrValidation},
		{"bad type", func(in *CreateInput) { in.Type = "Transfer" }, apperr.ErrValidation},
		{"missing account", func(in *CreateInput) { in.AccountID = uuid.Nil }, apperr.ErrValidation},
		{"currency mismatch", func(in *CreateInput) { in.CurrencyCode = "USD" }, apperr.ErrValidation},
		{"foreign account", func(in *CreateInput) { in.AccountID = other.ID }, apperr.ErrForbidden},
		{"foreign category", func(in *CreateInput) { in.CategoryID = privateCategory.ID }, apperr.ErrForbidden},
		{"unknown account", func(in *CreateInput) { in.AccountID = uuid.New() }, apperr.ErrNotFound},
		{"unknown category", func(in *CreateInput) { in.CategoryID = uuid.New() }, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input(models.TransactionTypeExpense, 100)
			tt.mutate(&in)
			_, err := f.svc.CreateTransaction(ctx, f.userID, in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if got := f.balance(t, f.account.ID); got != 1000 {
				t.Errorf("balance changed to %d", got)
			}
			if got := f.balance(t, other.ID); got != 500 {
				t.Errorf("foreign balance changed to %d", got)
			}
		})
	}

	list, err := f.svc.ListTransactions(ctx, f.userID, models.DateRange{}, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("expected no transactions, got %d", list.Total)
	}
}

func TestCreateTransactionIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	key := "client-42"
	in := f.input(models.TransactionTypeIncome, 250)
	in.IdempotencyKey = &key

	first, err := f.svc.CreateTransaction(ctx, f.userID, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := f.svc.CreateTransaction(ctx, f.userID, in)
	if err != nil {
		t.Fatalf("retried create: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("retry created a new transaction %s, want %s", second.ID, first.ID)
	}
	if got := f.balance(t, f.account.ID); got != 250 {
		t.Errorf("balance = %d, want a single adjustment of 250", got)
	}
}

func TestUpdateTransactionRecomputesDelta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	tx, err := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 200))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	amount := int64(350)
	if _, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{Amount: &amount}); err != nil {
		t.Fatalf("update amount: %v", err)
	}
	if got := f.balance(t, f.account.ID); got != 650 {
		t.Errorf("balance after amount change = %d, want 650", got)
	}

	income := models.TransactionTypeIncome
	if _, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{Type: &income}); err != nil {
		t.Fatalf("update type: %v", err)
	}
	if got := f.balance(t, f.account.ID); got != 1350 {
		t.Errorf("balance after type flip = %d, want 1350", got)
	}

	desc := "renamed"
	if _, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{Description: &desc}); err != nil {
		t.Fatalf("update description: %v", err)
	}
	if got := f.balance(t, f.account.ID); got != 1350 {
		t.Errorf("description change moved the balance to %d", got)
	}
}

func TestUpdateTransactionMovesBetweenAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	second := f.addAccount(t, f.userID, "COP", 0)
	tx, err := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeIncome, 400))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{AccountID: &second.ID})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if updated.AccountID != second.ID {
		t.Errorf("account = %s, want %s", updated.AccountID, second.ID)
	}
	if got := f.balance(t, f.account.ID); got != 1000 {
		t.Errorf("old account balance = %d, want 1000", got)
	}
	if got := f.balance(t, second.ID); got != 400 {
		t.Errorf("new account balance = %d, want 400", got)
	}
}

func TestUpdateTransactionRejectsCurrencyMismatchAtomically(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	usd := f.addAccount(t, f.userID, "USD", 0)
	tx, _ := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 100))

	cop := "COP"
	_, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{AccountID: &usd.ID, CurrencyCode: &cop})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	if got := f.balance(t, f.account.ID); got != 900 {
		t.Errorf("balance = %d, want 900", got)
	}
	if got := f.balance(t, usd.ID); got != 0 {
		t.Errorf("usd balance = %d, want 0", got)
	}
}

func TestUpdateAndDeleteForeignTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	tx, _ := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 100))
	stranger := uuid.New()

	amount := int64(1)
	if _, err := f.svc.UpdateTransaction(ctx, stranger, tx.ID, Patch{Amount: &amount}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update by stranger: got %v", err)
	}
	if err := f.svc.DeleteTransaction(ctx, stranger, tx.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete by stranger: got %v", err)
	}
	if _, err := f.svc.GetTransactionWithItems(ctx, stranger, tx.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get by stranger: got %v", err)
	}
	if got := f.balance(t, f.account.ID); got != 900 {
		t.Errorf("balance = %d, want 900", got)
	}
}

func TestDeleteTransactionReversesBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	tx, _ := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 100))

	if err := f.svc.DeleteTransaction(ctx, f.userID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.balance(t, f.account.ID); got != 1000 {
		t.Errorf("balance = %d, want 1000", got)
	}
	if err := f.svc.DeleteTransaction(ctx, f.userID, tx.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: got %v, want not found", err)
	}
}

// The cached balance always equals the starting balance plus the signed sum
// of the transactions that still exist.
func TestBalanceReconcilesAfterRandomOperations(t *testing.T) {
	ctx := context.Background()
	const start = 5000
	f := newFixture(t, start)
	second := f.addAccount(t, f.userID, "COP", start)
	accounts := []uuid.UUID{f.account.ID, second.ID}
	types := []models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}
	rng := rand.New(rand.NewSource(7))

	var live []uuid.UUID
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			in := f.input(types[rng.Intn(2)], int64(rng.Intn(900)+1))
			in.AccountID = accounts[rng.Intn(2)]
			tx, err := f.svc.CreateTransaction(ctx, f.userID, in)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			live = append(live, tx.ID)
		case op == 1:
			id := live[rng.Intn(len(live))]
			amount := int64(rng.Intn(900) + 1)
			typ := types[rng.Intn(2)]
			account := accounts[rng.Intn(2)]
			if _, err := f.svc.UpdateTransaction(ctx, f.userID, id, Patch{Amount: &amount, Type: &typ, AccountID: &account}); err != nil {
				t.Fatalf("update: %v", err)
			}
		default:
			idx := rng.Intn(len(live))
			if err := f.svc.DeleteTransaction(ctx, f.userID, live[idx]); err != nil {
				t.Fatalf("delete: %v", err)
			}
			live = append(live[:idx], live[idx+1:]...)
		}
	}

	sums := map[uuid.UUID]int64{}
	for _, id := range live {
		tx, err := f.store.GetTransaction(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		sums[tx.AccountID] += tx.SignedAmount()
	}
	for _, id := range accounts {
		if got, want := f.balance(t, id), start+sums[id]; got != want {
			t.Errorf("account %s balance = %d, want %d", id, got, want)
		}
	}
}

func TestListTransactionsPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		in := f.input(models.TransactionTypeIncome, int64(i+1))
		in.Date = base.AddDate(0, 0, i)
		if _, err := f.svc.CreateTransaction(ctx, f.userID, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name      string
		page      Page
		wantLen   int
		wantPage  int
		wantLimit int
		wantPages int
		firstAmt  int64
	}{
		{"defaults", Page{}, 20, 1, 20, 2, 25},
		{"second page", Page{Page: 2}, 5, 2, 20, 2, 5},
		{"small limit", Page{Page: 3, Limit: 10}, 5, 3, 10, 3, 5},
		{"limit capped", Page{Limit: 1000}, 25, 1, MaxLimit, 1, 25},
		{"past the end", Page{Page: 9}, 0, 9, 20, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.ListTransactions(ctx, f.userID, models.DateRange{}, tt.page)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(res.Transactions) != tt.wantLen || res.Page != tt.wantPage ||
				res.Limit != tt.wantLimit || res.TotalPages != tt.wantPages || res.Total != 25 {
				t.Errorf("got len=%d page=%d limit=%d pages=%d total=%d",
					len(res.Transactions), res.Page, res.Limit, res.TotalPages, res.Total)
			}
			if tt.wantLen > 0 && res.Transactions[0].Amount != tt.firstAmt {
				t.Errorf("first amount = %d, want %d", res.Transactions[0].Amount, tt.firstAmt)
			}
		})
	}

	start := base.AddDate(0, 0, 10)
	end := base.AddDate(0, 0, 12)
	res, err := f.svc.ListTransactions(ctx, f.userID, models.DateRange{Start: &start, End: &end}, Page{})
	if err != nil {
		t.Fatalf("ranged list: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("inclusive range total = %d, want 3", res.Total)
	}

	if _, err := f.svc.ListTransactions(ctx, f.userID, models.DateRange{Start: &end, End: &start}, Page{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("inverted range: got %v", err)
	}
}

func TestCreateTransactionWithItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10000)
	in := f.input(models.TransactionTypeExpense, 3000)
	items := []ItemInput{
		{ItemName: "Milk", Quantity: 2, UnitPrice: 500, TotalAmount: 1000},
		{ItemName: "Bread", Quantity: 1, UnitPrice: 2000, TotalAmount: 2000, CategoryID: ptr(memory.CategoryGroceriesID)},
	}

	created, err := f.svc.CreateTransactionWithItems(ctx, f.userID, in, items)
	if err != nil {
		t.Fatalf("create with items: %v", err)
	}
	if !created.HasLineItems {
		t.Error("has_line_items not set")
	}

	got, err := f.svc.GetTransactionWithItems(ctx, f.userID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ItemName != "Milk" || got.Items[1].SortOrder != 1 {
		t.Errorf("unexpected items: %+v", got.Items)
	}
	if bal := f.balance(t, f.account.ID); bal != 7000 {
		t.Errorf("balance = %d, want 7000", bal)
	}
}

func TestCreateTransactionWithItemsIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10000)
	items := []ItemInput{
		{ItemName: "Milk", Quantity: 1, UnitPrice: 500, TotalAmount: 500},
		{ItemName: "Ghost", Quantity: 1, UnitPrice: 500, TotalAmount: 500, CategoryID: ptr(uuid.New())},
	}

	if _, err := f.svc.CreateTransactionWithItems(ctx, f.userID, f.input(models.TransactionTypeExpense, 1000), items); err == nil {
		t.Fatal("expected failure for unknown item category")
	}
	if bal := f.balance(t, f.account.ID); bal != 10000 {
		t.Errorf("balance = %d, want 10000", bal)
	}
	res, _ := f.svc.ListTransactions(ctx, f.userID, models.DateRange{}, Page{})
	if res.Total != 0 {
		t.Errorf("transaction persisted despite failure")
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestWritesAreLoggedToContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))
	f := newFixture(t, 1000)

	tx, err := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	desc := "renamed"
	if _, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{Description: &desc}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := f.svc.DeleteTransaction(ctx, f.userID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	out := buf.String()
	for _, msg := range []string{"transaction created", "transaction updated", "transaction deleted"} {
		if !strings.Contains(out, msg) {
			t.Errorf("log output lacks %q: %s", msg, out)
		}
	}
	if !strings.Contains(out, tx.ID.String()) {
		t.Errorf("log output lacks the transaction id: %s", out)
	}
}

// Parallel creates, updates and deletes against one account must all land
// on the balance.
func TestConcurrentWritesOnOneAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)

	var seeded []uuid.UUID
	for i := 0; i < 20; i++ {
		tx, err := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 5))
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		seeded = append(seeded, tx.ID)
	}

	const creates = 50
	errs := make(chan error, creates+len(seeded))
	var wg sync.WaitGroup
	for i := 0; i < creates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeIncome, 10))
			errs <- err
		}()
	}
	for _, id := range seeded[:10] {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			errs <- f.svc.DeleteTransaction(ctx, f.userID, id)
		}(id)
	}
	for _, id := range seeded[10:] {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			amount := int64(7)
			_, err := f.svc.UpdateTransaction(ctx, f.userID, id, Patch{Amount: &amount})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent write: %v", err)
		}
	}

	// 1000 - 20*5 seeded, +50*10 created, +10*5 deleted, -10*2 updated.
	if got := f.balance(t, f.account.ID); got != 1430 {
		t.Errorf("balance = %d, want 1430", got)
	}
	list, err := f.svc.ListTransactions(ctx, f.userID, models.DateRange{}, Page{Limit: MaxLimit})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var sum int64
	for _, tx := range list.Transactions {
		sum += tx.SignedAmount()
	}
	if list.Total != 60 || 1000+sum != 1430 {
		t.Errorf("ledger total=%d sum=%d does not reconcile with the balance", list.Total, sum)
	}
}

func TestUpdateTransactionOnInactiveAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	second := f.addAccount(t, f.userID, "COP", 0)
	onMain, _ := f.svc.CreateTransaction(ctx, f.userID, f.input(models.TransactionTypeExpense, 100))
	in := f.input(models.TransactionTypeIncome, 300)
	in.AccountID = second.ID
	onSecond, _ := f.svc.CreateTransaction(ctx, f.userID, in)

	closed := *f.account
	closed.IsActive = false
	if err := f.store.UpdateAccount(ctx, &closed); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	desc := "corrected"
	updated, err := f.svc.UpdateTransaction(ctx, f.userID, onMain.ID, Patch{Description: &desc, CategoryID: ptr(memory.CategoryGeneralID)})
	if err != nil {
		t.Fatalf("edit on inactive account: %v", err)
	}
	if updated.Description != "corrected" || updated.CategoryID != memory.CategoryGeneralID {
		t.Errorf("edit not applied: %+v", updated)
	}

	if _, err := f.svc.UpdateTransaction(ctx, f.userID, onSecond.ID, Patch{AccountID: &f.account.ID}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("move onto inactive account: got %v, want validation error", err)
	}
	if got := f.balance(t, f.account.ID); got != 900 {
		t.Errorf("inactive account balance = %d, want 900", got)
	}
	if got := f.balance(t, second.ID); got != 300 {
		t.Errorf("second account balance = %d, want 300", got)
	}
}

func TestUpdateTransactionClearsGoalAndNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000)
	goal := &models.FinancialGoal{ID: uuid.New(), UserID: f.userID, Name: "Trip"}
	if err := f.store.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	in := f.input(models.TransactionTypeExpense, 100)
	notes := "split bill"
	in.Notes = &notes
	in.GoalID = &goal.ID
	tx, err := f.svc.CreateTransaction(ctx, f.userID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{GoalID: &goal.ID, ClearGoal: true}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("goal_id with clear_goal: got %v, want validation error", err)
	}

	updated, err := f.svc.UpdateTransaction(ctx, f.userID, tx.ID, Patch{ClearGoal: true, ClearNotes: true})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if updated.GoalID != nil || updated.Notes != nil {
		t.Errorf("goal=%v notes=%v, want both cleared", updated.GoalID, updated.Notes)
	}
	stored, err := f.store.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.GoalID != nil || stored.Notes != nil {
		t.Errorf("stored goal=%v notes=%v, want both cleared", stored.GoalID, stored.Notes)
	}
	if got := f.balance(t, f.account.ID); got != 900 {
		t.Errorf("balance = %d, want 900", got)
	}
}

type adjustRecorder struct {
	repository.Queries
	order []uuid.UUID
}

func (r *adjustRecorder) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	r.order = append(r.order, accountID)
	return r.Queries.AdjustBalance(ctx, accountID, delta)
}

func TestRebalanceAdjustsAccountsInIDOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	low, high := f.account.ID, f.addAccount(t, f.userID, "COP", 0).ID
	if bytes.Compare(high[:], low[:]) < 0 {
		low, high = high, low
	}

	tests := []struct {
		name     string
		from, to uuid.UUID
	}{
		{"low to high", low, high},
		{"high to low", high, low},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &adjustRecorder{Queries: f.store}
			old := &models.Transaction{AccountID: tt.from, Amount: 400, Type: models.TransactionTypeIncome}
			next := *old
			next.AccountID = tt.to
			if err := rebalance(ctx, rec, old, &next); err != nil {
				t.Fatalf("rebalance: %v", err)
			}
			if len(rec.order) != 2 || rec.order[0] != low || rec.order[1] != high {
				t.Errorf("adjusted %v, want [%s %s]", rec.order, low, high)
			}
		})
	}

	if got := f.balance(t, low); got != 0 {
		t.Errorf("low balance = %d, want 0 after moving back and forth", got)
	}
	if got := f.balance(t, high); got != 0 {
		t.Errorf("high balance = %d, want 0 after moving back and forth", got)
	}
}
