package models

import (
	"time"

	"github.com/google/uuid"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "ACTIVE"
	GoalStatusCompleted GoalStatus = "COMPLETED"
	GoalStatusArchived  GoalStatus = "ARCHIVED"
	GoalStatusCancelled GoalStatus = "CANCELLED"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusArchived, GoalStatusCancelled:
		return true
	}
	return false
}

type FinancialGoal struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	TargetAmount  *int64     `json:"target_amount,omitempty"`
	CurrentAmount int64      `json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	CurrencyCode  string     `json:"currency_code"`
	Status        GoalStatus `json:"status"`
	IsActive      bool       `json:"is_active"` // legacy mirror of Status == ACTIVE
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SetStatus keeps the legacy IsActive flag in sync.
func (g *FinancialGoal) SetStatus(s GoalStatus) {
	g.Status = s
	g.IsActive = s == GoalStatusActive
}
