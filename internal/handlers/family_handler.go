package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FamilyHandler struct {
	families *services.FamilyService
}

func NewFamilyHandler(families *services.FamilyService) *FamilyHandler {
	return &FamilyHandler{families: families}
}

func (h *FamilyHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CreateFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	family, err := h.families.Create(c.UserContext(), identity.ID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusCreated, "/dashboard", fiber.Map{
		"message": "Family created successfully",
		"family":  family,
	})
}

func (h *FamilyHandler) List(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	families, err := h.families.List(c.UserContext(), identity.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"families": families})
}

func (h *FamilyHandler) Get(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	familyID, err := pathID(c, "id", "family")
	if err != nil {
		return respondError(c, err)
	}

	family, err := h.families.Get(c.UserContext(), identity.ID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"family": family})
}

func (h *FamilyHandler) Delete(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	familyID, err := pathID(c, "id", "family")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.families.Delete(c.UserContext(), identity.ID, familyID); err != nil {
		return respondError(c, err)
	}
	return reply(c, fiber.StatusOK, "/dashboard", dto.MessageResponse{Message: "Family deleted successfully"})
}

func (h *FamilyHandler) Invite(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	familyID, err := pathID(c, "id", "family")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	member, err := h.families.Invite(c.UserContext(), identity.ID, familyID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return reply(c, fiber.StatusCreated, "/families/"+familyID.String(), fiber.Map{
		"message": "Member added successfully",
		"member":  member,
	})
}
