package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FamilyService struct {
	db     *gorm.DB
	cfg    *config.Config
	guard  *AccessGuard
	events notify.Publisher
}

func NewFamilyService(db *gorm.DB, cfg *config.Config, guard *AccessGuard, events notify.Publisher) *FamilyService {
	return &FamilyService{db: db, cfg: cfg, guard: guard, events: events}
}

// Create makes the family, the caller's admin membership and, when enabled,
// a meal plan for the current week in one transaction.
func (s *FamilyService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateFamilyRequest) (*models.Family, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return nil, validation("Family name is required (max 100 characters)")
	}

	family := models.Family{ID: uuid.New(), Name: name}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&family).Error; err != nil {
			return err
		}

		member := models.FamilyMember{FamilyID: family.ID, UserID: userID, IsAdmin: true}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		if s.cfg.FamilyAutoMealPlan {
			plan := models.MealPlan{
				ID:        uuid.New(),
				FamilyID:  family.ID,
				WeekStart: WeekStartOf(time.Now()),
			}
			if err := tx.Create(&plan).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return &family, nil
}

// List returns the caller's families in join order.
func (s *FamilyService) List(ctx context.Context, userID uuid.UUID) ([]models.Family, error) {
	var families []models.Family
	err := s.db.WithContext(ctx).
		Joins("JOIN family_members ON family_members.family_id = families.id").
		Where("family_members.user_id = ?", userID).
		Order("family_members.created_at ASC").
		Find(&families).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	return families, nil
}

// Get returns the family with its members. Membership is checked first.
func (s *FamilyService) Get(ctx context.Context, userID, familyID uuid.UUID) (*models.Family, error) {
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}

	var family models.Family
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Members.User").
		First(&family, "id = ?", familyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Family")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load family: %w", err)
	}
	return &family, nil
}

// Delete removes the family and everything scoped to it. Admins only.
func (s *FamilyService) Delete(ctx context.Context, userID, familyID uuid.UUID) error {
	if err := s.guard.Require(ctx, userID, familyID, RoleAdmin); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listIDs := tx.Model(&models.ShoppingList{}).Select("id").Where("family_id = ?", familyID)
		if err := tx.Where("shopping_list_id IN (?)", listIDs).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("family_id = ?", familyID).Delete(&models.ShoppingList{}).Error; err != nil {
			return err
		}

		planIDs := tx.Model(&models.MealPlan{}).Select("id").Where("family_id = ?", familyID)
		if err := tx.Where("meal_plan_id IN (?)", planIDs).Delete(&models.MealPlanEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("family_id = ?", familyID).Delete(&models.MealPlan{}).Error; err != nil {
			return err
		}

		mealIDs := tx.Model(&models.Meal{}).Select("id").Where("family_id = ?", familyID)
		if err := tx.Where("meal_id IN (?)", mealIDs).Delete(&models.MealIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("family_id = ?", familyID).Delete(&models.Meal{}).Error; err != nil {
			return err
		}

		// Family ingredients are only visible to this family's meals and lists,
		// all of which are gone by now.
		if err := tx.Where("family_id = ?", familyID).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}

		if err := tx.Where("family_id = ?", familyID).Delete(&models.FamilyMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Family{}, "id = ?", familyID).Error
	})
}

// Invite adds an existing user as a non-admin member.
func (s *FamilyService) Invite(ctx context.Context, userID, familyID uuid.UUID, req *dto.InviteRequest) (*models.FamilyMember, error) {
	if err := s.guard.Require(ctx, userID, familyID, RoleAdmin); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if !validEmail(email) {
		return nil, validation("A valid email address is required")
	}

	db := s.db.WithContext(ctx)

	var invited models.User
	if err := db.Where("email = ?", email).First(&invited).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: ErrNotFound, Msg: "User with this email not found"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	member := models.FamilyMember{FamilyID: familyID, UserID: invited.ID}
	if err := db.Create(&member).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflict("User is already a member of this family")
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.events.Publish(ctx, notify.Event{
		Type:     notify.EventMemberInvited,
		FamilyID: familyID,
		ActorID:  userID,
		EntityID: invited.ID,
		Detail:   invited.Username,
	})
	return &member, nil
}
