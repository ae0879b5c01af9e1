package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "Checking"
	AccountTypeSavings    AccountType = "Savings"
	AccountTypeCreditCard AccountType = "Credit Card"
	AccountTypeCash       AccountType = "Cash"
	AccountTypeInvestment AccountType = "Investment"
	AccountTypeLoan       AccountType = "Loan"
	AccountTypeOther      AccountType = "Other"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard, AccountTypeCash,
		AccountTypeInvestment, AccountTypeLoan, AccountTypeOther:
		return true
	}
	return false
}

type Account struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	CurrencyCode   string      `json:"currency_code"`
	CurrentBalance int64       `json:"current_balance"`
	IsActive       bool        `json:"is_active"`
	Color          *string     `json:"color,omitempty"`
	IsTaxExempt    bool        `json:"is_tax_exempt"`
	InterestRate   float64     `json:"interest_rate"` // annual effective rate, percent
	Version        int64       `json:"version"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	Configurations []*AccountConfiguration `json:"configurations,omitempty"`
}

type ConfigurationType string

const (
	ConfigurationPercentage ConfigurationType = "PERCENTAGE"
	ConfigurationFixed      ConfigurationType = "FIXED"
)

type ConfigurationFrequency string

const (
	FrequencyPerTransaction ConfigurationFrequency = "PER_TRANSACTION"
	FrequencyMonthly        ConfigurationFrequency = "MONTHLY"
	FrequencyAnnual         ConfigurationFrequency = "ANNUAL"
	FrequencyOneTime        ConfigurationFrequency = "ONE_TIME"
)

type ConfigurationScope string

const (
	AppliesToAll     ConfigurationScope = "ALL"
	AppliesToIncome  ConfigurationScope = "INCOME"
	AppliesToExpense ConfigurationScope = "EXPENSE"
	AppliesToBalance ConfigurationScope = "BALANCE"
)

type AccountConfiguration struct {
	ID           uuid.UUID              `json:"id"`
	AccountID    uuid.UUID              `json:"account_id"`
	Name         string                 `json:"name"`
	Type         ConfigurationType      `json:"type"`
	Value        float64                `json:"value"`
	CurrencyCode *string                `json:"currency_code,omitempty"`
	Frequency    ConfigurationFrequency `json:"frequency"`
	AppliesTo    ConfigurationScope     `json:"applies_to"`
	IsActive     bool                   `json:"is_active"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Validate checks the enum fields. It returns the name of the first invalid field.
func (c *AccountConfiguration) Validate() (field string, ok bool) {
	switch {
	case c.Name == "":
		return "name", false
	case c.Type != ConfigurationPercentage && c.Type != ConfigurationFixed:
		return "type", false
	}
	switch c.Frequency {
	case FrequencyPerTransaction, FrequencyMonthly, FrequencyAnnual, FrequencyOneTime:
	default:
		return "frequency", false
	}
	switch c.AppliesTo {
	case AppliesToAll, AppliesToIncome, AppliesToExpense, AppliesToBalance:
	default:
		return "applies_to", false
	}
	return "", true
}

// YieldAccrual marks that an account already received its yield for a day.
type YieldAccrual struct {
	AccountID     uuid.UUID `json:"account_id"`
	AccrualDate   time.Time `json:"accrual_date"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Amount        int64     `json:"amount"`
}
