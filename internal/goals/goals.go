// Package goals tracks savings goals. Deleting a goal archives it.
package goals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	TargetAmount  *int64     `json:"target_amount,omitempty"`
	CurrentAmount int64      `json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	CurrencyCode  string     `json:"currency_code"`
}

type Patch struct {
	Name          *string            `json:"name,omitempty"`
	Description   *string            `json:"description,omitempty"`
	TargetAmount  *int64             `json:"target_amount,omitempty"`
	CurrentAmount *int64             `json:"current_amount,omitempty"`
	TargetDate    *time.Time         `json:"target_date,omitempty"`
	CategoryID    *uuid.UUID         `json:"category_id,omitempty"`
	CurrencyCode  *string            `json:"currency_code,omitempty"`
	Status        *models.GoalStatus `json:"status,omitempty"`
}

// CreateGoal always starts the goal as ACTIVE.
func (s *Service) CreateGoal(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.FinancialGoal, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := validateAmounts(in.TargetAmount, &in.CurrentAmount); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if len(currency) != 3 {
		return nil, apperr.Validation("currency_code must be a 3-letter code, got %q", in.CurrencyCode)
	}
	if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}

	goal := &models.FinancialGoal{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		TargetDate:    in.TargetDate,
		CategoryID:    in.CategoryID,
		CurrencyCode:  currency,
	}
	goal.SetStatus(models.GoalStatusActive)

	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, apperr.Store("create goal", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("goal_id", goal.ID.String()).Msg("goal created")
	return goal, nil
}

// GetGoal returns the goal whatever its status, archived included.
func (s *Service) GetGoal(ctx context.Context, userID, id uuid.UUID) (*models.FinancialGoal, error) {
	goal, err := s.store.GetGoal(ctx, id, userID)
	if err != nil {
		return nil, apperr.Store("get goal", err)
	}
	return goal, nil
}

// ListGoals returns the user's goals, newest first. Archived goals are
// left out unless includeArchived is set.
func (s *Service) ListGoals(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.FinancialGoal, error) {
	goals, err := s.store.ListGoals(ctx, userID, includeArchived)
	if err != nil {
		return nil, apperr.Store("list goals", err)
	}
	if goals == nil {
		goals = []*models.FinancialGoal{}
	}
	return goals, nil
}

// UpdateGoal applies patch. Any status may be set; IsActive follows it.
func (s *Service) UpdateGoal(ctx context.Context, userID, id uuid.UUID, patch Patch) (*models.FinancialGoal, error) {
	goal, err := s.store.GetGoal(ctx, id, userID)
	if err != nil {
		return nil, apperr.Store("get goal", err)
	}
	if err := s.applyPatch(ctx, userID, goal, patch); err != nil {
		return nil, err
	}
	if err := s.store.UpdateGoal(ctx, goal); err != nil {
		return nil, apperr.Store("update goal", err)
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("goal_id", id.String()).
		Str("status", string(goal.Status)).
		Msg("goal updated")
	return goal, nil
}

// DeleteGoal archives the goal. The row is kept.
func (s *Service) DeleteGoal(ctx context.Context, userID, id uuid.UUID) (*models.FinancialGoal, error) {
	archived := models.GoalStatusArchived
	return s.UpdateGoal(ctx, userID, id, Patch{Status: &archived})
}

func (s *Service) applyPatch(ctx context.Context, userID uuid.UUID, g *models.FinancialGoal, p Patch) error {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return apperr.Validation("name must not be empty")
		}
		g.Name = strings.TrimSpace(*p.Name)
	}
	if err := validateAmounts(p.TargetAmount, p.CurrentAmount); err != nil {
		return err
	}
	if p.Description != nil {
		g.Description = p.Description
	}
	if p.TargetAmount != nil {
		g.TargetAmount = p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.TargetDate != nil {
		g.TargetDate = p.TargetDate
	}
	if p.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, p.CategoryID); err != nil {
			return err
		}
		g.CategoryID = p.CategoryID
	}
	if p.CurrencyCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*p.CurrencyCode))
		if len(code) != 3 {
			return apperr.Validation("currency_code must be a 3-letter code, got %q", *p.CurrencyCode)
		}
		g.CurrencyCode = code
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return apperr.Validation("invalid goal status %q", *p.Status)
		}
		g.SetStatus(*p.Status)
	}
	return nil
}

func (s *Service) checkCategory(ctx context.Context, userID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.store.GetCategory(ctx, *id)
	if err != nil {
		return apperr.Store("get category", err)
	}
	if !category.VisibleTo(userID) {
		return apperr.Forbidden("category %s does not belong to the caller", *id)
	}
	return nil
}

func validateAmounts(target, current *int64) error {
	if target != nil && *target < 0 {
		return apperr.Validation("target_amount must not be negative")
	}
	if current != nil && *current < 0 {
		return apperr.Validation("current_amount must not be negative")
	}
	return nil
}
