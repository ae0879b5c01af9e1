// Package categories exposes the category taxonomy and the currency list.
package categories

import (
	"context"
	"strings"

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
	Name            string     `json:"name"`
	ParentID        *uuid.UUID `json:"parent_id,omitempty"`
	CategoryGroupID *uuid.UUID `json:"category_group_id,omitempty"`
	SortOrder       int        `json:"sort_order"`
}

// CreateCategory adds a category owned by userID. The parent, when set,
// must be visible to the user.
func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.ParentID != nil {
		parent, err := s.store.GetCategory(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.VisibleTo(userID) {
			return nil, apperr.Forbidden("category %s does not belong to the caller", *in.ParentID)
		}
	}
	if in.CategoryGroupID != nil {
		if err := s.checkGroup(ctx, *in.CategoryGroupID); err != nil {
			return nil, err
		}
	}

	owner := userID
	category := &models.Category{
		ID:              uuid.New(),
		UserID:          &owner,
		ParentID:        in.ParentID,
		CategoryGroupID: in.CategoryGroupID,
		Name:            name,
		IsActive:        true,
		SortOrder:       in.SortOrder,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, apperr.Store("create category", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("category_id", category.ID.String()).Msg("category created")
	return category, nil
}

// ListCategories returns the user's categories and the global ones, by name.
func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	categories, err := s.store.ListVisibleCategories(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list categories", err)
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

func (s *Service) ListCategoryGroups(ctx context.Context) ([]*models.CategoryGroup, error) {
	groups, err := s.store.ListCategoryGroups(ctx)
	if err != nil {
		return nil, apperr.Store("list category groups", err)
	}
	return groups, nil
}

func (s *Service) ListCurrencies(ctx context.Context) ([]*models.Currency, error) {
	currencies, err := s.store.ListCurrencies(ctx)
	if err != nil {
		return nil, apperr.Store("list currencies", err)
	}
	return currencies, nil
}

func (s *Service) checkGroup(ctx context.Context, id uuid.UUID) error {
	groups, err := s.ListCategoryGroups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.ID == id {
			return nil
		}
	}
	return apperr.NotFound("category group", id)
}
