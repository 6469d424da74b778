package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CatalogHandler serves categories, ingredients and meals.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *CatalogHandler) ListIngredients(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	familyID, err := familyFromQuery(c, identity, errNoFamily)
	if err != nil {
		return respondError(c, err)
	}

	ingredients, err := h.catalog.ListIngredients(c.UserContext(), identity.ID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ingredients": ingredients})
}

func (h *CatalogHandler) CreateIngredient(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CreateIngredientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	// family_id is optional here; the first family is the default.
	var familyID uuid.UUID
	if req.FamilyID != "" {
		if familyID, err = uuid.Parse(req.FamilyID); err != nil {
			return badRequest(c, "Invalid family ID")
		}
	} else {
		var ok bool
		if familyID, ok = identity.FirstFamily(); !ok {
			return respondError(c, errNoFamily)
		}
	}

	ingredient, err := h.catalog.CreateIngredient(c.UserContext(), identity.ID, familyID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusCreated, "/ingredients", fiber.Map{
		"message":    "Ingredient created successfully",
		"ingredient": ingredient,
	})
}

func (h *CatalogHandler) DeleteIngredient(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	ingredientID, err := pathID(c, "id", "ingredient")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.catalog.DeleteIngredient(c.UserContext(), identity.ID, ingredientID); err != nil {
		return respondError(c, err)
	}
	return reply(c, fiber.StatusOK, "/ingredients", dto.MessageResponse{Message: "Ingredient deleted successfully"})
}

func (h *CatalogHandler) ListMeals(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	familyID, err := familyFromQuery(c, identity, errNoFamily)
	if err != nil {
		return respondError(c, err)
	}

	meals, err := h.catalog.ListMeals(c.UserContext(), identity.ID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"meals": meals})
}

func (h *CatalogHandler) GetMeal(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	mealID, err := pathID(c, "id", "meal")
	if err != nil {
		return respondError(c, err)
	}

	meal, err := h.catalog.GetMeal(c.UserContext(), identity.ID, mealID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"meal": meal})
}

func (h *CatalogHandler) CreateMeal(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.MealRequest
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

	meal, err := h.catalog.CreateMeal(c.UserContext(), identity.ID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusCreated, "/meals/"+meal.ID.String(), fiber.Map{
		"message": "Meal created successfully",
		"meal":    meal,
	})
}

func (h *CatalogHandler) UpdateMeal(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	mealID, err := pathID(c, "id", "meal")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.MealRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	meal, err := h.catalog.UpdateMeal(c.UserContext(), identity.ID, mealID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusOK, "/meals/"+meal.ID.String(), fiber.Map{
		"message": "Meal updated successfully",
		"meal":    meal,
	})
}

func (h *CatalogHandler) DeleteMeal(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	mealID, err := pathID(c, "id", "meal")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.catalog.DeleteMeal(c.UserContext(), identity.ID, mealID); err != nil {
		return respondError(c, err)
	}
	return reply(c, fiber.StatusOK, "/meals", dto.MessageResponse{Message: "Meal deleted successfully"})
}
