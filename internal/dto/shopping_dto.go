package dto

import "github.com/ahmetcoskunkizilkaya/family-meals/internal/models"

type GenerateShoppingListRequest struct {
	MealPlanID string `json:"meal_plan_id" form:"meal_plan_id"`
}

type UpdateShoppingListStatusRequest struct {
	Status string `json:"status" form:"status"`
}

// ShoppingSection groups list items under one grocery category.
type ShoppingSection struct {
	Category string                    `json:"category"`
	Items    []models.ShoppingListItem `json:"items"`
}

type ShoppingListResponse struct {
	*models.ShoppingList
	Sections []ShoppingSection `json:"sections"`
}

type GenerateShoppingListResponse struct {
	Message      string               `json:"message,omitempty"`
	ShoppingList *models.ShoppingList `json:"shopping_list"`
}
