package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const identityKey = "identity"

// FamilyRef is a family the current user belongs to.
type FamilyRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	IsAdmin bool      `json:"is_admin"`
}

// Identity is the resolved session record attached to every authenticated request.
type Identity struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Families []FamilyRef `json:"families"`
}

// FirstFamily returns the family used when a request does not name one.
func (i *Identity) FirstFamily() (uuid.UUID, bool) {
	if i == nil || len(i.Families) == 0 {
		return uuid.Nil, false
	}
	return i.Families[0].ID, true
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

func SetIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(identityKey, id)
}

// GetIdentity returns the identity loaded by the session middleware, or nil.
func GetIdentity(c *fiber.Ctx) *Identity {
	if id, ok := c.Locals(identityKey).(*Identity); ok {
		return id
	}
	return nil
}
