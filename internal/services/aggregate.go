package services

import (
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/google/uuid"
)

// AggregatedLine is the total quantity of one ingredient across a meal plan.
type AggregatedLine struct {
	IngredientID uuid.UUID
	Quantity     float64
}

// AggregateIngredients sums ingredient quantities over every entry of a plan.
// Entries without a loaded meal contribute nothing. Lines come out in the
// order each ingredient is first seen.
func AggregateIngredients(entries []models.MealPlanEntry) []AggregatedLine {
	var lines []AggregatedLine
	index := make(map[uuid.UUID]int)

	for _, entry := range entries {
		if entry.Meal == nil {
			continue
		}
		for _, mi := range entry.Meal.Ingredients {
			if i, ok := index[mi.IngredientID]; ok {
				lines[i].Quantity += mi.Quantity
				continue
			}
			index[mi.IngredientID] = len(lines)
			lines = append(lines, AggregatedLine{IngredientID: mi.IngredientID, Quantity: mi.Quantity})
		}
	}
	return lines
}
