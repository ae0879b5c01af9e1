package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "Income"
	TransactionTypeExpense TransactionType = "Expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Signed returns the effect of amount on an account balance for this type.
func (t TransactionType) Signed(amount int64) int64 {
	if t == TransactionTypeExpense {
		return -amount
	}
	return amount
}

type Transaction struct {
	ID                           uuid.UUID       `json:"id"`
	UserID                       uuid.UUID       `json:"user_id"`
	AccountID                    uuid.UUID       `json:"account_id"`
	CategoryID                   uuid.UUID       `json:"category_id"`
	GoalID                       *uuid.UUID      `json:"goal_id,omitempty"`
	TransferDestinationAccountID *uuid.UUID      `json:"transfer_destination_account_id,omitempty"`
	Date                         time.Time       `json:"date"`
	Amount                       int64           `json:"amount"` // minor units, never negative
	Type                         TransactionType `json:"type"`
	Description                  string          `json:"description"`
	Notes                        *string         `json:"notes,omitempty"`
	CurrencyCode                 string          `json:"currency_code"`
	ReceiptImageURL              *string         `json:"receipt_image_url,omitempty"`
	ReceiptProcessedAt           *time.Time      `json:"receipt_processed_at,omitempty"`
	MerchantName                 *string         `json:"merchant_name,omitempty"`
	HasLineItems                 bool            `json:"has_line_items"`
	IdempotencyKey               *string         `json:"idempotency_key,omitempty"`
	CreatedAt                    time.Time       `json:"created_at"`
	UpdatedAt                    time.Time       `json:"updated_at"`
}

// SignedAmount is the transaction's contribution to its account balance.
func (t *Transaction) SignedAmount() int64 {
	return t.Type.Signed(t.Amount)
}

type TransactionItem struct {
	ID            uuid.UUID  `json:"id"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	ItemName      string     `json:"item_name"`
	Quantity      float64    `json:"quantity"`
	UnitPrice     int64      `json:"unit_price"`
	TotalAmount   int64      `json:"total_amount"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	SortOrder     int        `json:"sort_order"`
	CreatedAt     time.Time  `json:"created_at"`
}

type TransactionWithItems struct {
	Transaction
	Items []*TransactionItem `json:"items"`
}

// DateRange is inclusive on both ends. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

type TransactionFilter struct {
	UserID uuid.UUID
	Range  DateRange
	Limit  int
	Offset int
}
