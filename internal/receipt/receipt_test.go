package receipt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/categories"
	"github.com/diego28e/backend-wealth-builder/internal/ledger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository/memory"
)

var fixedNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	cats    *categories.Service
	m       *Materializer
	userID  uuid.UUID
	account *models.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewSeededStore()
	cats := categories.NewService(store)
	f := &fixture{
		store:  store,
		cats:   cats,
		m:      NewMaterializer(ledger.NewService(store), cats),
		userID: uuid.New(),
	}
	f.m.now = func() time.Time { return fixedNow }
	f.account = &models.Account{
		ID: uuid.New(), UserID: f.userID, Name: "Wallet", Type: models.AccountTypeCash,
		CurrencyCode: "COP", CurrentBalance: 10_000_000, IsActive: true,
	}
	if err := store.CreateAccount(context.Background(), f.account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return f
}

func (f *fixture) balance(t *testing.T) int64 {
	t.Helper()
	a, err := f.store.GetAccount(context.Background(), f.account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return a.CurrentBalance
}

func TestMaterializeWritesExpenseWithItems(t *testing.T) {
	f := newFixture(t)
	r := ExtractedReceipt{
		MerchantName: "Exito",
		Date:         "2025-06-01T12:00:00Z",
		CurrencyCode: "COP",
		TotalAmount:  3_000_000,
		Items: []ExtractedItem{
			{ItemName: "Rice", Quantity: 2, UnitPrice: 750_000.5, TotalAmount: 1_500_001.4, SuggestedCategoryID: memory.CategoryGroceriesID.String()},
			{ItemName: "Lamp", Quantity: 1, UnitPrice: 1_499_998.6, TotalAmount: 1_499_998.6, SuggestedCategoryID: "null"},
		},
	}

	res, err := f.m.Materialize(context.Background(), f.userID, f.account.ID, "https://img/r.jpg", r, Options{})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	tx := res.Transaction
	if tx.Type != models.TransactionTypeExpense || !tx.HasLineItems || tx.Amount != 3_000_000 {
		t.Errorf("unexpected transaction: %+v", tx.Transaction)
	}
	if tx.ReceiptProcessedAt == nil || !tx.ReceiptProcessedAt.Equal(fixedNow) {
		t.Errorf("receipt_processed_at = %v", tx.ReceiptProcessedAt)
	}
	if tx.ReceiptImageURL == nil || *tx.ReceiptImageURL != "https://img/r.jpg" {
		t.Errorf("receipt_image_url = %v", tx.ReceiptImageURL)
	}
	if tx.Description != "Exito" || tx.MerchantName == nil || *tx.MerchantName != "Exito" {
		t.Errorf("merchant not carried: %+v", tx.Transaction)
	}
	if tx.CategoryID != memory.CategoryGroceriesID {
		t.Errorf("transaction category = %s, want Groceries", tx.CategoryID)
	}
	if res.DateCorrected {
		t.Error("date within range should not be corrected")
	}

	if len(tx.Items) != 2 {
		t.Fatalf("got %d items", len(tx.Items))
	}
	first, second := tx.Items[0], tx.Items[1]
	if first.ItemName != "Rice" || first.SortOrder != 0 || first.UnitPrice != 750_001 || first.TotalAmount != 1_500_001 {
		t.Errorf("first item: %+v", first)
	}
	if second.ItemName != "Lamp" || second.SortOrder != 1 || second.UnitPrice != 1_499_999 || second.TotalAmount != 1_499_999 {
		t.Errorf("second item: %+v", second)
	}
	if second.CategoryID == nil || *second.CategoryID != memory.CategoryShoppingID {
		t.Errorf("item with \"null\" suggestion should fall back to Shopping, got %v", second.CategoryID)
	}

	if got := f.balance(t); got != 7_000_000 {
		t.Errorf("balance = %d, want 7000000", got)
	}
	stored, err := ledger.NewService(f.store).GetTransactionWithItems(context.Background(), f.userID, tx.ID)
	if err != nil || len(stored.Items) != 2 {
		t.Fatalf("stored transaction: %v, %v", stored, err)
	}
}

func TestMaterializeDateCorrection(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		opts          Options
		want          time.Time
		wantCorrected bool
	}{
		{"two years back", "2023-03-14T10:30:00Z", Options{}, time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC), true},
		{"two years back allowed", "2023-03-14T10:30:00Z", Options{AllowOldDates: true}, time.Date(2023, 3, 14, 10, 30, 0, 0, time.UTC), false},
		{"last year kept", "2024-12-24", Options{}, time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC), false},
		{"future year", "2027-01-05T08:00:00Z", Options{AllowOldDates: true}, time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC), true},
		{"leap day two years back", "2020-02-29", Options{}, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), true},
		{"leap day in the future", "2028-02-29T18:00:00Z", Options{}, time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC), true},
		{"unparseable", "11 de febrero", Options{}, fixedNow, true},
		{"missing", "", Options{}, fixedNow, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := ExtractedReceipt{Date: tt.raw, TotalAmount: 1000, Items: []ExtractedItem{{ItemName: "x", Quantity: 1, UnitPrice: 1000, TotalAmount: 1000}}}
			res, err := f.m.Materialize(context.Background(), f.userID, f.account.ID, "", r, tt.opts)
			if err != nil {
				t.Fatalf("materialize: %v", err)
			}
			if !res.Transaction.Date.Equal(tt.want) {
				t.Errorf("date = %v, want %v", res.Transaction.Date, tt.want)
			}
			if res.DateCorrected != tt.wantCorrected {
				t.Errorf("DateCorrected = %v, want %v", res.DateCorrected, tt.wantCorrected)
			}
			if tt.wantCorrected && res.OriginalDate != tt.raw {
				t.Errorf("OriginalDate = %q", res.OriginalDate)
			}
		})
	}
}

func TestMaterializeRejectsForeignSuggestion(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()
	foreign := models.Category{ID: uuid.New(), UserID: &other, Name: "Private", IsActive: true}
	f.store.PutCategory(foreign)

	r := ExtractedReceipt{TotalAmount: 500, Items: []ExtractedItem{
		{ItemName: "a", Quantity: 1, UnitPrice: 500, TotalAmount: 500, SuggestedCategoryID: foreign.ID.String()},
	}}
	res, err := f.m.Materialize(context.Background(), f.userID, f.account.ID, "", r, Options{})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if res.Transaction.CategoryID != memory.CategoryShoppingID {
		t.Errorf("category = %s, want Shopping fallback", res.Transaction.CategoryID)
	}
	if res.Transaction.Description != defaultDescription || res.Transaction.MerchantName != nil {
		t.Errorf("expected default description without merchant: %+v", res.Transaction.Transaction)
	}
}

func TestMaterializeFailsWithoutCategories(t *testing.T) {
	store := memory.NewStore()
	cats := categories.NewService(store)
	m := NewMaterializer(ledger.NewService(store), cats)
	userID := uuid.New()

	_, err := m.Materialize(context.Background(), userID, uuid.New(), "", ExtractedReceipt{TotalAmount: 100}, Options{})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestMaterializeUsesItemSumWhenTotalMissing(t *testing.T) {
	f := newFixture(t)
	r := ExtractedReceipt{Items: []ExtractedItem{
		{ItemName: "a", UnitPrice: 250, TotalAmount: 250},
		{ItemName: "b", Quantity: 3, UnitPrice: 100, TotalAmount: 300},
	}}
	res, err := f.m.Materialize(context.Background(), f.userID, f.account.ID, "", r, Options{})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if res.Transaction.Amount != 550 {
		t.Errorf("amount = %d, want 550", res.Transaction.Amount)
	}
	if res.Transaction.Items[0].Quantity != 1 {
		t.Errorf("missing quantity should count as one, got %v", res.Transaction.Items[0].Quantity)
	}
}

func TestMaterializeWithoutItemsIsStillItemized(t *testing.T) {
	f := newFixture(t)
	r := ExtractedReceipt{MerchantName: "Taxi", Date: "2025-06-09", TotalAmount: 1_200_000}

	res, err := f.m.Materialize(context.Background(), f.userID, f.account.ID, "", r, Options{})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	tx := res.Transaction
	if len(tx.Items) != 0 {
		t.Errorf("got %d items, want none", len(tx.Items))
	}
	if !tx.HasLineItems {
		t.Error("receipt transaction must be flagged has_line_items")
	}
	if tx.CategoryID != memory.CategoryShoppingID {
		t.Errorf("category = %s, want Shopping fallback", tx.CategoryID)
	}

	stored, err := ledger.NewService(f.store).GetTransactionWithItems(context.Background(), f.userID, tx.ID)
	if err != nil {
		t.Fatalf("get stored transaction: %v", err)
	}
	if !stored.HasLineItems {
		t.Error("stored transaction lost has_line_items")
	}
	if got := f.balance(t); got != 8_800_000 {
		t.Errorf("balance = %d, want 8800000", got)
	}
}

func TestSanitizeCategory(t *testing.T) {
	id := uuid.New()
	visible := map[uuid.UUID]*models.Category{id: {ID: id}}
	tests := []struct {
		raw string
		ok  bool
	}{
		{id.String(), true},
		{strings.ToUpper(id.String()), true},
		{"null", false},
		{"NULL", false},
		{"", false},
		{"not-a-uuid", false},
		{"{" + id.String() + "}", false},
		{"urn:uuid:" + id.String(), false},
		{uuid.New().String(), false},
	}
	for _, tt := range tests {
		got, ok := sanitizeCategory(tt.raw, visible)
		if ok != tt.ok || (ok && got != id) {
			t.Errorf("sanitizeCategory(%q) = %s, %v; want ok=%v", tt.raw, got, ok, tt.ok)
		}
	}
}

func TestFallbackCategory(t *testing.T) {
	cat := func(name string) *models.Category { return &models.Category{ID: uuid.New(), Name: name} }
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"shopping wins", []string{"Bills", "General", "Online Shopping"}, "Online Shopping"},
		{"general next", []string{"Bills", "General Expenses", "Miscellaneous"}, "General Expenses"},
		{"misc next", []string{"Bills", "Misc"}, "Misc"},
		{"first otherwise", []string{"Bills", "Rent"}, "Bills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []*models.Category
			for _, n := range tt.names {
				list = append(list, cat(n))
			}
			if got := fallbackCategory(list); got.Name != tt.want {
				t.Errorf("got %q, want %q", got.Name, tt.want)
			}
		})
	}
	if fallbackCategory(nil) != nil {
		t.Error("empty list should have no fallback")
	}
}
