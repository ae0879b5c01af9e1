package models

import (
	"time"

	"github.com/google/uuid"
)

type FinancialProfile string

const (
	ProfileLowIncome     FinancialProfile = "Low-Income"
	ProfileHighIncome    FinancialProfile = "High-Income/High-Expense"
	ProfileWealthBuilder FinancialProfile = "Wealth-Builder"
)

type User struct {
	ID        uuid.UUID        `json:"id"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Profile   FinancialProfile `json:"profile"`
	CreatedAt time.Time        `json:"created_at"`
}

type Currency struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalDigits int    `json:"decimal_digits"`
}
