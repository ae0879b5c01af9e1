package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

func validateCreate(in CreateInput) error {
	switch {
	case in.AccountID == uuid.Nil:
		return apperr.Validation("account_id is required")
	case in.CategoryID == uuid.Nil:
		return apperr.Validation("category_id is required")
	case !in.Type.Valid():
		return apperr.Validation("type must be Income or Expense, got %q", in.Type)
	case strings.TrimSpace(in.Description) == "":
		return apperr.Validation("description is required")
	case in.Date.IsZero():
		return apperr.Validation("date is required")
	case in.Amount <= 0:
		return apperr.Validation("amount must be positive, got %d", in.Amount)
	}
	return nil
}

func validateItem(i int, item ItemInput) error {
	switch {
	case strings.TrimSpace(item.ItemName) == "":
		return apperr.Validation("item %d: item_name is required", i)
	case item.Quantity <= 0:
		return apperr.Validation("item %d: quantity must be positive", i)
	case item.UnitPrice < 0 || item.TotalAmount < 0:
		return apperr.Validation("item %d: amounts must not be negative", i)
	}
	return nil
}

func applyPatch(tx *models.Transaction, p Patch) error {
	if p.AccountID != nil {
		tx.AccountID = *p.AccountID
	}
	if p.CategoryID != nil {
		tx.CategoryID = *p.CategoryID
	}
	if p.ClearGoal && p.GoalID != nil {
		return apperr.Validation("goal_id and clear_goal are mutually exclusive")
	}
	if p.ClearNotes && p.Notes != nil {
		return apperr.Validation("notes and clear_notes are mutually exclusive")
	}
	if p.GoalID != nil {
		tx.GoalID = p.GoalID
	}
	if p.ClearGoal {
		tx.GoalID = nil
	}
	if p.Date != nil {
		if p.Date.IsZero() {
			return apperr.Validation("date must not be empty")
		}
		tx.Date = *p.Date
	}
	if p.Amount != nil {
		if *p.Amount <= 0 {
			return apperr.Validation("amount must be positive, got %d", *p.Amount)
		}
		tx.Amount = *p.Amount
	}
	if p.Type != nil {
		if !p.Type.Valid() {
			return apperr.Validation("type must be Income or Expense, got %q", *p.Type)
		}
		tx.Type = *p.Type
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return apperr.Validation("description must not be empty")
		}
		tx.Description = strings.TrimSpace(*p.Description)
	}
	if p.Notes != nil {
		tx.Notes = p.Notes
	}
	if p.ClearNotes {
		tx.Notes = nil
	}
	if p.MerchantName != nil {
		tx.MerchantName = p.MerchantName
	}
	return nil
}

// userAccount loads the account and checks it belongs to userID.
func userAccount(ctx context.Context, q repository.Queries, userID, accountID uuid.UUID) (*models.Account, error) {
	account, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, apperr.Forbidden("account %s does not belong to the caller", accountID)
	}
	return account, nil
}

// ownedAccount is userAccount restricted to active accounts.
func ownedAccount(ctx context.Context, q repository.Queries, userID, accountID uuid.UUID) (*models.Account, error) {
	account, err := userAccount(ctx, q, userID, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperr.Validation("account %s is inactive", accountID)
	}
	return account, nil
}

// matchCurrency returns the account currency when requested is empty and
// rejects a different one.
func matchCurrency(account *models.Account, requested string) (string, error) {
	requested = strings.ToUpper(strings.TrimSpace(requested))
	if requested == "" {
		return account.CurrencyCode, nil
	}
	if requested != account.CurrencyCode {
		return "", apperr.Validation("currency %s does not match account currency %s", requested, account.CurrencyCode)
	}
	return requested, nil
}

func visibleCategory(ctx context.Context, q repository.Queries, userID, categoryID uuid.UUID) error {
	category, err := q.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if !category.VisibleTo(userID) {
		return apperr.Forbidden("category %s does not belong to the caller", categoryID)
	}
	return nil
}

func checkReferences(ctx context.Context, q repository.Queries, userID uuid.UUID, goalID, destinationID *uuid.UUID) error {
	if goalID != nil {
		if _, err := q.GetGoal(ctx, *goalID, userID); err != nil {
			return err
		}
	}
	if destinationID != nil {
		destination, err := q.GetAccount(ctx, *destinationID)
		if err != nil {
			return err
		}
		if destination.UserID != userID {
			return apperr.Forbidden("account %s does not belong to the caller", *destinationID)
		}
	}
	return nil
}
