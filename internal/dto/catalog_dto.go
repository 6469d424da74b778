package dto

type CreateIngredientRequest struct {
	FamilyID   string `json:"family_id" form:"family_id"`
	Name       string `json:"name" form:"name"`
	Unit       string `json:"unit" form:"unit"`
	CategoryID string `json:"category_id" form:"category_id"`
}

type MealIngredientInput struct {
	IngredientID string  `json:"ingredient_id" form:"ingredient_id"`
	Quantity     float64 `json:"quantity" form:"quantity"`
}

// MealRequest is used for both create and update. FamilyID is ignored on update.
type MealRequest struct {
	FamilyID    string                `json:"family_id" form:"family_id"`
	Name        string                `json:"name" form:"name"`
	Description *string               `json:"description" form:"description"`
	Ingredients []MealIngredientInput `json:"ingredients" form:"ingredients"`
}
