package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/session"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errNoSession = &services.Error{Kind: services.ErrUnauthenticated, Msg: "Unauthorized"}

// ErrorHandler is the Fiber app error handler. Server error details are
// never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled error", "error", err, "path", c.Path(), "request_id", c.Locals("requestid"))
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

// respondError maps service errors to status codes. Unknown errors are
// logged, reported to Sentry and answered with a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return c.Status(statusFor(svcErr.Kind)).JSON(dto.ErrorResponse{
			Error: true, Message: svcErr.Msg,
		})
	}

	slog.Error("request failed", "error", err, "method", c.Method(), "path", c.Path(), "request_id", c.Locals("requestid"))
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func statusFor(kind error) int {
	switch kind {
	case services.ErrValidation:
		return fiber.StatusBadRequest
	case services.ErrUnauthenticated:
		return fiber.StatusUnauthorized
	case services.ErrForbidden:
		return fiber.StatusForbidden
	case services.ErrNotFound:
		return fiber.StatusNotFound
	case services.ErrConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

// isFormSubmission reports whether the request came from an HTML form, in
// which case mutations answer with a redirect instead of JSON.
func isFormSubmission(c *fiber.Ctx) bool {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		return true
	}
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMETextHTML)
}

// reply sends body as JSON, or a 303 to location for form submissions.
func reply(c *fiber.Ctx, status int, location string, body any) error {
	if isFormSubmission(c) {
		return c.Redirect(location, fiber.StatusSeeOther)
	}
	return c.Status(status).JSON(body)
}

func currentIdentity(c *fiber.Ctx) (*session.Identity, error) {
	identity := session.GetIdentity(c)
	if identity == nil {
		return nil, errNoSession
	}
	return identity, nil
}

func pathID(c *fiber.Ctx, param, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, &services.Error{Kind: services.ErrValidation, Msg: "Invalid " + what + " ID"}
	}
	return id, nil
}

// familyFromQuery reads ?family_id= and falls back to the caller's first
// family. missing is returned when neither is available.
func familyFromQuery(c *fiber.Ctx, identity *session.Identity, missing error) (uuid.UUID, error) {
	if raw := c.Query("family_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, &services.Error{Kind: services.ErrValidation, Msg: "Invalid family ID"}
		}
		return id, nil
	}
	if id, ok := identity.FirstFamily(); ok {
		return id, nil
	}
	return uuid.Nil, missing
}

var (
	errNoFamily       = &services.Error{Kind: services.ErrNotFound, Msg: "No family found"}
	errNoFamilyAccess = &services.Error{Kind: services.ErrForbidden, Msg: "You are not a member of any family"}
)
