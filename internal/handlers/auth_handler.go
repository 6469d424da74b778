package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return h.startSession(c, user, fiber.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return h.startSession(c, user, fiber.StatusOK, "Logged in successfully")
}

// ClearToken ends the browser session. Bearer clients just drop the token.
func (h *AuthHandler) ClearToken(c *fiber.Ctx) error {
	session.ClearCookie(c, h.cfg)
	return reply(c, fiber.StatusOK, "/login", dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MeResponse{User: identity})
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *models.User, status int, msg string) error {
	token, err := h.authService.IssueToken(user)
	if err != nil {
		return respondError(c, err)
	}
	identity, err := h.authService.ResolveIdentity(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	session.SetCookie(c, h.cfg, token)
	return reply(c, status, "/dashboard", dto.AuthResponse{
		Message: msg,
		Token:   token,
		User:    identity,
	})
}
