package memory

import (
	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/models"
)

// Ids of the reference rows, identical to the ones the SQL migration seeds.
var (
	GroupIncomeID  = uuid.MustParse("5f1d7c2e-0a61-4c1b-9a55-2d0c6c1e0001")
	GroupNeedsID   = uuid.MustParse("5f1d7c2e-0a61-4c1b-9a55-2d0c6c1e0002")
	GroupWantsID   = uuid.MustParse("5f1d7c2e-0a61-4c1b-9a55-2d0c6c1e0003")
	GroupSavingsID = uuid.MustParse("5f1d7c2e-0a61-4c1b-9a55-2d0c6c1e0004")

	CategorySalaryID      = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0001")
	CategoryInterestID    = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0002")
	CategoryGroceriesID   = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0003")
	CategoryRentID        = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0004")
	CategoryShoppingID    = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0005")
	CategoryDiningID      = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0006")
	CategoryInvestmentsID = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0007")
	CategoryGeneralID     = uuid.MustParse("8a0e1b9c-3f4d-4e2a-8b7c-1d2e3f4a0008")
)

// NewSeededStore returns a store holding the same reference data as a
// freshly migrated database: currencies, category groups and the global
// categories.
func NewSeededStore() *Store {
	s := NewStore()
	for _, c := range []models.Currency{
		{Code: "COP", Name: "Colombian Peso", Symbol: "$", DecimalDigits: 2},
		{Code: "USD", Name: "US Dollar", Symbol: "$", DecimalDigits: 2},
		{Code: "EUR", Name: "Euro", Symbol: "€", DecimalDigits: 2},
		{Code: "MXN", Name: "Mexican Peso", Symbol: "$", DecimalDigits: 2},
		{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", DecimalDigits: 0},
	} {
		s.PutCurrency(c)
	}
	for _, g := range []models.CategoryGroup{
		{ID: GroupIncomeID, Name: models.CategoryGroupIncome, Description: "Money coming in", SortOrder: 1},
		{ID: GroupNeedsID, Name: models.CategoryGroupNeeds, Description: "Essential expenses", SortOrder: 2},
		{ID: GroupWantsID, Name: models.CategoryGroupWants, Description: "Discretionary expenses", SortOrder: 3},
		{ID: GroupSavingsID, Name: models.CategoryGroupSavings, Description: "Savings and investments", SortOrder: 4},
	} {
		s.PutCategoryGroup(g)
	}

	global := func(id uuid.UUID, group *uuid.UUID, name string, order int) models.Category {
		return models.Category{ID: id, CategoryGroupID: group, Name: name, IsActive: true, IsSystem: true, SortOrder: order}
	}
	for _, c := range []models.Category{
		global(CategorySalaryID, &GroupIncomeID, "Salary", 1),
		global(CategoryInterestID, &GroupIncomeID, "Interest", 2),
		global(CategoryGroceriesID, &GroupNeedsID, "Groceries", 3),
		global(CategoryRentID, &GroupNeedsID, "Rent", 4),
		global(CategoryShoppingID, &GroupWantsID, "Shopping", 5),
		global(CategoryDiningID, &GroupWantsID, "Dining", 6),
		global(CategoryInvestmentsID, &GroupSavingsID, "Investments", 7),
		global(CategoryGeneralID, nil, "General", 8),
	} {
		s.PutCategory(c)
	}
	return s
}

func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.data.stamp(s.now())
	}
	s.data.users[u.ID] = u
}

func (s *Store) PutCurrency(c models.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.currencies[c.Code] = c
}

func (s *Store) PutCategoryGroup(g models.CategoryGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.groups[g.ID] = g
}

// PutCategory stores c as is, bypassing validation.
func (s *Store) PutCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.data.stamp(s.now())
	}
	s.data.categories[c.ID] = c
}
