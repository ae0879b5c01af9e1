package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is global when UserID is nil.
type Category struct {
	ID              uuid.UUID  `json:"id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	ParentID        *uuid.UUID `json:"parent_id,omitempty"`
	CategoryGroupID *uuid.UUID `json:"category_group_id,omitempty"`
	Name            string     `json:"name"`
	IsActive        bool       `json:"is_active"`
	SortOrder       int        `json:"sort_order"`
	IsSystem        bool       `json:"is_system"`
	CreatedAt       time.Time  `json:"created_at"`
}

// VisibleTo reports whether the category is global or owned by userID.
func (c *Category) VisibleTo(userID uuid.UUID) bool {
	return c.UserID == nil || *c.UserID == userID
}

type CategoryGroupName string

const (
	CategoryGroupIncome  CategoryGroupName = "Income"
	CategoryGroupNeeds   CategoryGroupName = "Needs"
	CategoryGroupWants   CategoryGroupName = "Wants"
	CategoryGroupSavings CategoryGroupName = "Savings"
)

type CategoryGroup struct {
	ID          uuid.UUID         `json:"id"`
	Name        CategoryGroupName `json:"name"`
	Description string            `json:"description"`
	SortOrder   int               `json:"sort_order"`
}

type CategoryGroupSummary struct {
	CategoryGroupID   uuid.UUID         `json:"category_group_id"`
	CategoryGroupName CategoryGroupName `json:"category_group_name"`
	SortOrder         int               `json:"-"`
	NetAmount         int64             `json:"net_amount"`
	TransactionCount  int               `json:"transaction_count"`
}
