package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	SortOrder int       `gorm:"not null" json:"sort_order"`
}

// Ingredient belongs to a family, or to every family when FamilyID is nil.
// NameKey is the lower-cased name and backs case-insensitive uniqueness.
type Ingredient struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	FamilyID   *uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_ingredients_family_name" json:"family_id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	NameKey    string     `gorm:"size:100;not null;uniqueIndex:idx_ingredients_family_name" json:"-"`
	Unit       string     `gorm:"size:30;not null" json:"unit"`
	CategoryID uuid.UUID  `gorm:"type:char(36);not null;index" json:"category_id"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Meal struct {
	ID          uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	FamilyID    uuid.UUID        `gorm:"type:char(36);not null;index" json:"family_id"`
	Name        string           `gorm:"size:100;not null" json:"name"`
	Description *string          `gorm:"type:text" json:"description,omitempty"`
	Ingredients []MealIngredient `gorm:"foreignKey:MealID" json:"ingredients"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type MealIngredient struct {
	MealID       uuid.UUID   `gorm:"type:char(36);primaryKey" json:"-"`
	IngredientID uuid.UUID   `gorm:"type:char(36);primaryKey;index" json:"ingredient_id"`
	Quantity     float64     `gorm:"not null" json:"quantity"`
	Position     int         `gorm:"not null" json:"position"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
