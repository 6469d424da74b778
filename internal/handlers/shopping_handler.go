package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ShoppingHandler struct {
	shopping *services.ShoppingService
}

func NewShoppingHandler(shopping *services.ShoppingService) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping}
}

func (h *ShoppingHandler) List(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	familyID, err := familyFromQuery(c, identity, errNoFamilyAccess)
	if err != nil {
		return respondError(c, err)
	}

	lists, err := h.shopping.List(c.UserContext(), identity.ID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"shopping_lists": lists})
}

// Create generates the list for the meal plan named in the body.
func (h *ShoppingHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.GenerateShoppingListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	planID, err := uuid.Parse(req.MealPlanID)
	if err != nil {
		return badRequest(c, "Invalid meal plan ID")
	}

	return generate(c, h.shopping, identity.ID, planID)
}

func (h *ShoppingHandler) Get(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	listID, err := pathID(c, "id", "shopping list")
	if err != nil {
		return respondError(c, err)
	}

	list, err := h.shopping.Get(c.UserContext(), identity.ID, listID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"shopping_list": list})
}

func (h *ShoppingHandler) ToggleItem(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	listID, err := pathID(c, "id", "shopping list")
	if err != nil {
		return respondError(c, err)
	}
	itemID, err := pathID(c, "itemId", "item")
	if err != nil {
		return respondError(c, err)
	}

	item, err := h.shopping.ToggleItem(c.UserContext(), identity.ID, listID, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, fiber.StatusOK, "/shopping-lists/"+listID.String(), fiber.Map{"item": item})
}

func (h *ShoppingHandler) ToggleStatus(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	listID, err := pathID(c, "id", "shopping list")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateShoppingListStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	list, err := h.shopping.SetStatus(c.UserContext(), identity.ID, listID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, fiber.StatusOK, "/shopping-lists/"+listID.String(), fiber.Map{
		"message":       "Status updated",
		"shopping_list": list,
	})
}

// generate is shared by both generation routes: 201 when the list was
// created, 200 with the existing list otherwise.
func generate(c *fiber.Ctx, shopping *services.ShoppingService, userID, planID uuid.UUID) error {
	list, created, err := shopping.Generate(c.UserContext(), userID, planID)
	if err != nil {
		return respondError(c, err)
	}

	location := "/shopping-lists/" + list.ID.String()
	if !created {
		return reply(c, fiber.StatusOK, location, dto.GenerateShoppingListResponse{
			Message:      "Shopping list already exists for this meal plan",
			ShoppingList: list,
		})
	}
	return reply(c, fiber.StatusCreated, location, dto.GenerateShoppingListResponse{
		Message:      "Shopping list generated successfully",
		ShoppingList: list,
	})
}
