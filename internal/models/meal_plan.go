package models

import (
	"time"

	"github.com/google/uuid"
)

var DaysOfWeek = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type MealPlan struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	FamilyID  uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_meal_plans_family_week" json:"family_id"`
	WeekStart time.Time       `gorm:"not null;uniqueIndex:idx_meal_plans_family_week" json:"week_start"`
	Entries   []MealPlanEntry `gorm:"foreignKey:MealPlanID" json:"entries"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MealPlanEntry assigns one meal to one day of a plan.
type MealPlanEntry struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	MealPlanID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_meal_plan_entries_plan_day" json:"meal_plan_id"`
	DayOfWeek  string    `gorm:"size:10;not null;uniqueIndex:idx_meal_plan_entries_plan_day" json:"day_of_week"`
	MealID     uuid.UUID `gorm:"type:char(36);not null;index" json:"meal_id"`
	Meal       *Meal     `gorm:"foreignKey:MealID" json:"meal,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
