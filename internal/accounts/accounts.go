// Package accounts manages accounts and their fee/interest configurations.
// Balances are never written here except through ResetBalance.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

// ErrConfigurationsNotSaved is returned together with a created account
// whose configuration rows could not be written. The account is usable and
// the configurations can be supplied again with UpdateAccount.
var ErrConfigurationsNotSaved = errors.New("account created without configurations")

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	CurrencyCode   string             `json:"currency_code"`
	CurrentBalance int64              `json:"current_balance"`
	Color          *string            `json:"color,omitempty"`
	IsTaxExempt    bool               `json:"is_tax_exempt"`
	InterestRate   float64            `json:"interest_rate"`
}

// Patch holds the scalar fields UpdateAccount may change. The balance is
// deliberately absent.
type Patch struct {
	Name         *string             `json:"name,omitempty"`
	Type         *models.AccountType `json:"type,omitempty"`
	CurrencyCode *string             `json:"currency_code,omitempty"`
	IsActive     *bool               `json:"is_active,omitempty"`
	Color        *string             `json:"color,omitempty"`
	IsTaxExempt  *bool               `json:"is_tax_exempt,omitempty"`
	InterestRate *float64            `json:"interest_rate,omitempty"`
}

type ConfigurationInput struct {
	Name         string                        `json:"name"`
	Type         models.ConfigurationType      `json:"type"`
	Value        float64                       `json:"value"`
	CurrencyCode *string                       `json:"currency_code,omitempty"`
	Frequency    models.ConfigurationFrequency `json:"frequency"`
	AppliesTo    models.ConfigurationScope     `json:"applies_to"`
	IsActive     *bool                         `json:"is_active,omitempty"`
}

// CreateAccount writes the account and then, in a second store transaction,
// its configurations. When only the second step fails the created account
// is returned along with an error wrapping ErrConfigurationsNotSaved.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, in CreateInput, configs []ConfigurationInput) (*models.Account, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if err := s.checkCurrency(ctx, currency); err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		CurrencyCode:   currency,
		CurrentBalance: in.CurrentBalance,
		IsActive:       true,
		Color:          in.Color,
		IsTaxExempt:    in.IsTaxExempt,
		InterestRate:   in.InterestRate,
	}
	rows, err := buildConfigurations(account.ID, configs)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.CreateAccount(ctx, account)
	})
	if err != nil {
		return nil, apperr.Store("create account", err)
	}

	log := logger.FromContext(ctx).With().Str("account_id", account.ID.String()).Logger()
	log.Info().Str("type", string(account.Type)).Msg("account created")

	account.Configurations = []*models.AccountConfiguration{}
	if len(rows) == 0 {
		return account, nil
	}

	err = s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.InsertConfigurations(ctx, rows)
	})
	if err != nil {
		log.Warn().Err(err).Int("configurations", len(rows)).Msg("account saved without configurations")
		return account, fmt.Errorf("%w: %w", ErrConfigurationsNotSaved, apperr.Store("insert configurations", err))
	}
	account.Configurations = rows
	return account, nil
}

// UpdateAccount applies the scalar patch. A nil configs leaves the
// configuration set untouched; a non-nil one replaces it entirely (an empty
// slice clears it), in the same store transaction as the scalar update.
func (s *Service) UpdateAccount(ctx context.Context, userID, id uuid.UUID, patch Patch, configs *[]ConfigurationInput) (*models.Account, error) {
	var rows []*models.AccountConfiguration
	if configs != nil {
		var err error
		if rows, err = buildConfigurations(id, *configs); err != nil {
			return nil, err
		}
	}
	if patch.CurrencyCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*patch.CurrencyCode))
		if err := s.checkCurrency(ctx, code); err != nil {
			return nil, err
		}
		patch.CurrencyCode = &code
	}

	var account *models.Account
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		if account, err = owned(ctx, q, userID, id); err != nil {
			return err
		}
		if err := applyPatch(account, patch); err != nil {
			return err
		}
		if err := q.UpdateAccount(ctx, account); err != nil {
			return err
		}
		if configs == nil {
			return nil
		}
		if err := q.DeleteConfigurations(ctx, id); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return q.InsertConfigurations(ctx, rows)
	})
	if err != nil {
		return nil, apperr.Store("update account", err)
	}

	if configs != nil {
		account.Configurations = rows
	} else if err := s.attachConfigurations(ctx, []*models.Account{account}); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("account_id", id.String()).
		Bool("configurations_replaced", configs != nil).
		Msg("account updated")
	return account, nil
}

// ListAccounts returns the user's active accounts with their
// configurations, oldest first.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	accounts, err := s.store.ListActiveAccounts(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list accounts", err)
	}
	if accounts == nil {
		return []*models.Account{}, nil
	}
	if err := s.attachConfigurations(ctx, accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Service) GetAccount(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	account, err := owned(ctx, s.store, userID, id)
	if err != nil {
		return nil, apperr.Store("get account", err)
	}
	if err := s.attachConfigurations(ctx, []*models.Account{account}); err != nil {
		return nil, err
	}
	return account, nil
}

// GetActiveInterestBearingAccounts is the working set of the yield run.
func (s *Service) GetActiveInterestBearingAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.store.ListInterestBearingAccounts(ctx)
	if err != nil {
		return nil, apperr.Store("list interest-bearing accounts", err)
	}
	return accounts, nil
}

// ResetBalance overwrites the cached balance with an explicit starting
// value. It is the only balance write outside the ledger.
func (s *Service) ResetBalance(ctx context.Context, userID, id uuid.UUID, balance int64) (*models.Account, error) {
	var account *models.Account
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := owned(ctx, q, userID, id); err != nil {
			return err
		}
		if err := q.SetBalance(ctx, id, balance); err != nil {
			return err
		}
		var err error
		account, err = q.GetAccount(ctx, id)
		return err
	})
	if err != nil {
		return nil, apperr.Store("reset balance", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("account_id", id.String()).
		Int64("balance", balance).
		Msg("account balance reset")
	return account, nil
}

func (s *Service) attachConfigurations(ctx context.Context, accounts []*models.Account) error {
	ids := make([]uuid.UUID, len(accounts))
	byID := make(map[uuid.UUID]*models.Account, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
		byID[a.ID] = a
		a.Configurations = []*models.AccountConfiguration{}
	}
	configs, err := s.store.ListConfigurations(ctx, ids)
	if err != nil {
		return apperr.Store("list configurations", err)
	}
	for _, c := range configs {
		if a, ok := byID[c.AccountID]; ok {
			a.Configurations = append(a.Configurations, c)
		}
	}
	return nil
}

func (s *Service) checkCurrency(ctx context.Context, code string) error {
	if len(code) != 3 {
		return apperr.Validation("currency_code must be a 3-letter code, got %q", code)
	}
	if _, err := s.store.GetCurrency(ctx, code); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("unknown currency %s", code)
		}
		return apperr.Store("get currency", err)
	}
	return nil
}

func owned(ctx context.Context, q repository.AccountQueries, userID, id uuid.UUID) (*models.Account, error) {
	account, err := q.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, apperr.NotFound("account", id)
	}
	return account, nil
}
