package accounts

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/models"
)

func validateCreate(in CreateInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.Validation("name is required")
	case !in.Type.Valid():
		return apperr.Validation("invalid account type %q", in.Type)
	}
	return validateRate(in.InterestRate)
}

func validateRate(rate float64) error {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return apperr.Validation("interest_rate must be a non-negative number, got %v", rate)
	}
	return nil
}

func applyPatch(a *models.Account, p Patch) error {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return apperr.Validation("name must not be empty")
		}
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		if !p.Type.Valid() {
			return apperr.Validation("invalid account type %q", *p.Type)
		}
		a.Type = *p.Type
	}
	if p.CurrencyCode != nil {
		a.CurrencyCode = *p.CurrencyCode
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	if p.Color != nil {
		a.Color = p.Color
	}
	if p.IsTaxExempt != nil {
		a.IsTaxExempt = *p.IsTaxExempt
	}
	if p.InterestRate != nil {
		if err := validateRate(*p.InterestRate); err != nil {
			return err
		}
		a.InterestRate = *p.InterestRate
	}
	return nil
}

// buildConfigurations validates the inputs and assigns fresh ids bound to
// accountID, whatever the caller sent.
func buildConfigurations(accountID uuid.UUID, in []ConfigurationInput) ([]*models.AccountConfiguration, error) {
	rows := make([]*models.AccountConfiguration, 0, len(in))
	for i, c := range in {
		row := &models.AccountConfiguration{
			ID:           uuid.New(),
			AccountID:    accountID,
			Name:         strings.TrimSpace(c.Name),
			Type:         c.Type,
			Value:        c.Value,
			CurrencyCode: c.CurrencyCode,
			Frequency:    c.Frequency,
			AppliesTo:    c.AppliesTo,
			IsActive:     c.IsActive == nil || *c.IsActive,
		}
		if field, ok := row.Validate(); !ok {
			return nil, apperr.Validation("configuration %d: invalid %s", i, field)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
