package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MealPlanHandler struct {
	plans    *services.MealPlanService
	shopping *services.ShoppingService
}

func NewMealPlanHandler(plans *services.MealPlanService, shopping *services.ShoppingService) *MealPlanHandler {
	return &MealPlanHandler{plans: plans, shopping: shopping}
}

func (h *MealPlanHandler) List(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	familyID, err := familyFromQuery(c, identity, errNoFamily)
	if err != nil {
		return respondError(c, err)
	}

	plans, err := h.plans.List(c.UserContext(), identity.ID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"meal_plans": plans})
}

func (h *MealPlanHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CreateMealPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.FamilyID == "" {
		id, ok := identity.FirstFamily()
		if !ok {
			return respondError(c, errNoFamily)
		}
		req.FamilyID = id.String()
	}

	plan, err := h.plans.Create(c.UserContext(), identity.ID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusCreated, "/meal-plans/"+plan.ID.String(), fiber.Map{
		"message":   "Meal plan created successfully",
		"meal_plan": plan,
	})
}

func (h *MealPlanHandler) Get(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	planID, err := pathID(c, "id", "meal plan")
	if err != nil {
		return respondError(c, err)
	}

	plan, err := h.plans.Get(c.UserContext(), identity.ID, planID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"meal_plan": plan})
}

func (h *MealPlanHandler) Update(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	planID, err := pathID(c, "id", "meal plan")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateMealPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	plan, err := h.plans.Update(c.UserContext(), identity.ID, planID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusOK, "/meal-plans/"+plan.ID.String(), fiber.Map{
		"message":   "Meal plan updated successfully",
		"meal_plan": plan,
	})
}

func (h *MealPlanHandler) Delete(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	planID, err := pathID(c, "id", "meal plan")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.plans.Delete(c.UserContext(), identity.ID, planID); err != nil {
		return respondError(c, err)
	}
	return reply(c, fiber.StatusOK, "/meal-plans", dto.MessageResponse{Message: "Meal plan deleted successfully"})
}

// AssignEntry puts a meal on a day of the plan, replacing whatever was there.
func (h *MealPlanHandler) AssignEntry(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	planID, err := pathID(c, "id", "meal plan")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.AssignEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.plans.AssignEntry(c.UserContext(), identity.ID, planID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusOK, "/meal-plans/"+planID.String(), fiber.Map{
		"message": "Meal assigned successfully",
		"entry":   entry,
	})
}

func (h *MealPlanHandler) RemoveEntry(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	planID, err := pathID(c, "id", "meal plan")
	if err != nil {
		return respondError(c, err)
	}
	entryID, err := pathID(c, "entryId", "entry")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.plans.RemoveEntry(c.UserContext(), identity.ID, planID, entryID); err != nil {
		return respondError(c, err)
	}
	return reply(c, fiber.StatusOK, "/meal-plans/"+planID.String(), dto.MessageResponse{Message: "Meal removed from plan"})
}

func (h *MealPlanHandler) GenerateShoppingList(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	planID, err := pathID(c, "id", "meal plan")
	if err != nil {
		return respondError(c, err)
	}
	return generate(c, h.shopping, identity.ID, planID)
}
