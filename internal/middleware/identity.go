package middleware

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/session"
	"github.com/gofiber/fiber/v2"
)

// LoadIdentity resolves the token subject into a session.Identity. Must run
// after JWTProtected. A token for a user that no longer exists counts as no
// session at all.
func LoadIdentity(authService *services.AuthService, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			session.ClearCookie(c, cfg)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		identity, err := authService.ResolveIdentity(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				session.ClearCookie(c, cfg)
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: err.Error(),
				})
			}
			slog.Error("failed to resolve identity", "user_id", userID.String(), "request_id", c.Locals("requestid"), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}

		session.SetIdentity(c, identity)
		return c.Next()
	}
}
