package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role int

const (
	RoleMember Role = iota
	RoleAdmin
)

// AccessGuard answers membership questions against family_members. It keeps
// no cache so a revoked membership takes effect on the next request.
type AccessGuard struct {
	db *gorm.DB
}

func NewAccessGuard(db *gorm.DB) *AccessGuard {
	return &AccessGuard{db: db}
}

// Require returns nil when userID holds role in familyID and an ErrForbidden
// error otherwise.
func (g *AccessGuard) Require(ctx context.Context, userID, familyID uuid.UUID, role Role) error {
	var member models.FamilyMember
	err := g.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AccessDenied.Inc()
		return forbidden("You are not a member of this family")
	}
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}

	if role == RoleAdmin && !member.IsAdmin {
		metrics.AccessDenied.Inc()
		return forbidden("Only family admins can do this")
	}
	return nil
}
