package dto

type CreateMealPlanRequest struct {
	FamilyID  string `json:"family_id" form:"family_id"`
	WeekStart string `json:"week_start" form:"week_start"`
}

type UpdateMealPlanRequest struct {
	WeekStart string `json:"week_start" form:"week_start"`
}

type AssignEntryRequest struct {
	MealID    string `json:"meal_id" form:"meal_id"`
	DayOfWeek string `json:"day_of_week" form:"day_of_week"`
}
