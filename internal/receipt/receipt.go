// Package receipt turns extracted receipt data into a ledger expense with
// line items.
package receipt

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/ledger"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/money"
)

const defaultDescription = "Receipt Upload"

// ExtractedItem is one line of a receipt as the extractor reported it.
// Amounts are minor units and may carry fractions.
type ExtractedItem struct {
	ItemName            string  `json:"item_name"`
	Quantity            float64 `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	TotalAmount         float64 `json:"total_amount"`
	SuggestedCategoryID string  `json:"suggested_category_id"`
}

type ExtractedReceipt struct {
	MerchantName string          `json:"merchant_name"`
	Date         string          `json:"date"`
	CurrencyCode string          `json:"currency_code"`
	TotalAmount  float64         `json:"total_amount"`
	Items        []ExtractedItem `json:"items"`
}

type Options struct {
	// AllowOldDates keeps a receipt date more than a year in the past
	// instead of moving it to the current year.
	AllowOldDates bool
}

type Result struct {
	Transaction   *models.TransactionWithItems `json:"transaction"`
	Receipt       ExtractedReceipt             `json:"receipt_data"`
	DateCorrected bool                         `json:"date_corrected"`
	OriginalDate  string                       `json:"original_date,omitempty"`
}

// TransactionWriter is the ledger write path.
type TransactionWriter interface {
	CreateTransactionWithItems(ctx context.Context, userID uuid.UUID, in ledger.CreateInput, items []ledger.ItemInput) (*models.TransactionWithItems, error)
}

// CategoryLister returns the user's categories together with the global ones.
type CategoryLister interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*models.Category, error)
}

type Materializer struct {
	ledger     TransactionWriter
	categories CategoryLister
	now        func() time.Time
}

func NewMaterializer(ledger TransactionWriter, categories CategoryLister) *Materializer {
	return &Materializer{ledger: ledger, categories: categories, now: time.Now}
}

// Materialize writes r as one Expense transaction on accountID with its
// items, in a single ledger write.
func (m *Materializer) Materialize(ctx context.Context, userID, accountID uuid.UUID, imageURL string, r ExtractedReceipt, opts Options) (*Result, error) {
	log := logger.FromContext(ctx).With().Str("user_id", userID.String()).Logger()
	now := m.now().UTC()

	date, corrected := normalizeDate(r.Date, now, opts.AllowOldDates)
	if corrected {
		log.Warn().Str("extracted", r.Date).Time("corrected", date).Msg("receipt date corrected")
	}

	visible, err := m.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	fallback := fallbackCategory(visible)
	if fallback == nil {
		return nil, apperr.Validation("no category available for the receipt")
	}
	byID := make(map[uuid.UUID]*models.Category, len(visible))
	for _, c := range visible {
		byID[c.ID] = c
	}

	categoryID := fallback.ID
	items := make([]ledger.ItemInput, len(r.Items))
	var itemsTotal int64
	for i, it := range r.Items {
		itemCategory := fallback.ID
		if id, ok := sanitizeCategory(it.SuggestedCategoryID, byID); ok {
			itemCategory = id
		}
		if i == 0 {
			categoryID = itemCategory
		}
		quantity := it.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items[i] = ledger.ItemInput{
			ItemName:    strings.TrimSpace(it.ItemName),
			Quantity:    quantity,
			UnitPrice:   money.RoundMinor(it.UnitPrice),
			TotalAmount: money.RoundMinor(it.TotalAmount),
			CategoryID:  &itemCategory,
		}
		itemsTotal += items[i].TotalAmount
	}

	amount := money.RoundMinor(r.TotalAmount)
	if amount <= 0 {
		amount = itemsTotal
	}

	in := ledger.CreateInput{
		AccountID:          accountID,
		CategoryID:         categoryID,
		Date:               date,
		Amount:             amount,
		Type:               models.TransactionTypeExpense,
		Description:        defaultDescription,
		CurrencyCode:       r.CurrencyCode,
		ReceiptProcessedAt: &now,
		HasLineItems:       true,
	}
	if merchant := strings.TrimSpace(r.MerchantName); merchant != "" {
		in.Description = merchant
		in.MerchantName = &merchant
	}
	if imageURL != "" {
		in.ReceiptImageURL = &imageURL
	}

	tx, err := m.ledger.CreateTransactionWithItems(ctx, userID, in, items)
	if err != nil {
		return nil, err
	}
	log.Info().Str("transaction_id", tx.ID.String()).Int("items", len(tx.Items)).Msg("receipt materialized")

	result := &Result{Transaction: tx, Receipt: r, DateCorrected: corrected}
	if corrected {
		result.OriginalDate = r.Date
	}
	return result, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeDate parses the extracted date. An empty date becomes now. An
// unparseable one becomes now and counts as corrected. A year in the future,
// or more than one year back unless allowOld, is replaced by the current
// year with month and day kept.
func normalizeDate(raw string, now time.Time, allowOld bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, false
	}
	var (
		t      time.Time
		parsed bool
	)
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, raw); err == nil {
			t, parsed = v.UTC(), true
			break
		}
	}
	if !parsed {
		return now, true
	}

	year := now.Year()
	tooOld := t.Year() < year-1 && !allowOld
	if t.Year() > year || tooOld {
		return withYear(t, year), true
	}
	return t, false
}

// withYear moves t to year keeping its month. A day the month does not
// have in that year (Feb 29) is clamped to the month's last day.
func withYear(t time.Time, year int) time.Time {
	day := t.Day()
	if last := time.Date(year, t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		day = last
	}
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// sanitizeCategory accepts a suggestion only in canonical UUID form and
// only when the category is visible to the user.
func sanitizeCategory(raw string, visible map[uuid.UUID]*models.Category) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 36 || strings.EqualFold(raw, "null") {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	if _, ok := visible[id]; !ok {
		return uuid.Nil, false
	}
	return id, true
}

// fallbackCategory picks "Shopping", then "General" or "Misc", then the
// first category. Names match as case-insensitive substrings.
func fallbackCategory(categories []*models.Category) *models.Category {
	if len(categories) == 0 {
		return nil
	}
	match := func(needles ...string) *models.Category {
		for _, c := range categories {
			name := strings.ToLower(c.Name)
			for _, n := range needles {
				if strings.Contains(name, n) {
					return c
				}
			}
		}
		return nil
	}
	if c := match("shopping"); c != nil {
		return c
	}
	if c := match("general", "misc"); c != nil {
		return c
	}
	return categories[0]
}
