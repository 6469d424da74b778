package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ShoppingListDraft     = "draft"
	ShoppingListActive    = "active"
	ShoppingListCompleted = "completed"
)

var ShoppingListStatuses = []string{ShoppingListDraft, ShoppingListActive, ShoppingListCompleted}

type ShoppingList struct {
	ID         uuid.UUID          `gorm:"type:char(36);primaryKey" json:"id"`
	FamilyID   uuid.UUID          `gorm:"type:char(36);not null;index" json:"family_id"`
	MealPlanID uuid.UUID          `gorm:"type:char(36);not null;uniqueIndex" json:"meal_plan_id"`
	Status     string             `gorm:"size:20;not null" json:"status"`
	Items      []ShoppingListItem `gorm:"foreignKey:ShoppingListID" json:"items"`
	MealPlan   *MealPlan          `gorm:"foreignKey:MealPlanID" json:"meal_plan,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type ShoppingListItem struct {
	ID             uuid.UUID   `gorm:"type:char(36);primaryKey" json:"id"`
	ShoppingListID uuid.UUID   `gorm:"type:char(36);not null;uniqueIndex:idx_shopping_list_items_list_ingredient" json:"shopping_list_id"`
	IngredientID   uuid.UUID   `gorm:"type:char(36);not null;uniqueIndex:idx_shopping_list_items_list_ingredient;index" json:"ingredient_id"`
	Quantity       float64     `gorm:"not null" json:"quantity"`
	Checked        bool        `gorm:"not null" json:"checked"`
	Ingredient     *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
