package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDuplicateWeek = &Error{Kind: ErrConflict, Msg: "A meal plan for this week already exists"}

type MealPlanService struct {
	db    *gorm.DB
	guard *AccessGuard
}

func NewMealPlanService(db *gorm.DB, guard *AccessGuard) *MealPlanService {
	return &MealPlanService{db: db, guard: guard}
}

// WeekStartOf returns Monday 00:00 UTC of the week containing t.
func WeekStartOf(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseWeekStart accepts a calendar date or an RFC 3339 timestamp and
// normalizes it to the start of its week.
func ParseWeekStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return WeekStartOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return WeekStartOf(t), nil
	}
	return time.Time{}, validation("Invalid date format for week_start")
}

// NormalizeDay lower-cases day and checks it names a weekday.
func NormalizeDay(day string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(day))
	if !slices.Contains(models.DaysOfWeek, d) {
		return "", validation("Day of week must be a valid day (monday, tuesday, etc.)")
	}
	return d, nil
}

func (s *MealPlanService) List(ctx context.Context, userID, familyID uuid.UUID) ([]models.MealPlan, error) {
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}

	var plans []models.MealPlan
	err := s.db.WithContext(ctx).
		Scopes(session.ForFamily(familyID)).
		Preload("Entries.Meal").
		Order("week_start DESC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	for i := range plans {
		sortEntries(plans[i].Entries)
	}
	return plans, nil
}

func (s *MealPlanService) Get(ctx context.Context, userID, planID uuid.UUID) (*models.MealPlan, error) {
	plan, err := s.load(ctx, planID, "Entries.Meal")
	if err != nil {
		return nil, err
	}
	if err := s.guard.Require(ctx, userID, plan.FamilyID, RoleMember); err != nil {
		return nil, err
	}
	sortEntries(plan.Entries)
	return plan, nil
}

func (s *MealPlanService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateMealPlanRequest) (*models.MealPlan, error) {
	familyID, err := uuid.Parse(req.FamilyID)
	if err != nil {
		return nil, validation("Invalid family id")
	}
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}
	weekStart, err := ParseWeekStart(req.WeekStart)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.MealPlan{}).
		Where("family_id = ? AND week_start = ?", familyID, weekStart).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check meal plan week: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateWeek
	}

	plan := models.MealPlan{ID: uuid.New(), FamilyID: familyID, WeekStart: weekStart}
	if err := db.Omit("Entries").Create(&plan).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateWeek
		}
		return nil, fmt.Errorf("failed to create meal plan: %w", err)
	}
	plan.Entries = []models.MealPlanEntry{}
	return &plan, nil
}

// Update moves the plan to another week. An empty week_start changes nothing.
func (s *MealPlanService) Update(ctx context.Context, userID, planID uuid.UUID, req *dto.UpdateMealPlanRequest) (*models.MealPlan, error) {
	plan, err := s.load(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Require(ctx, userID, plan.FamilyID, RoleMember); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.WeekStart) != "" {
		weekStart, err := ParseWeekStart(req.WeekStart)
		if err != nil {
			return nil, err
		}
		if !weekStart.Equal(plan.WeekStart) {
			err := s.db.WithContext(ctx).Model(&models.MealPlan{}).
				Where("id = ?", planID).
				Update("week_start", weekStart).Error
			if err != nil {
				if database.IsUniqueViolation(err) {
					return nil, ErrDuplicateWeek
				}
				return nil, fmt.Errorf("failed to update meal plan: %w", err)
			}
		}
	}

	return s.Get(ctx, userID, planID)
}

// Delete removes the plan with its entries and its shopping list.
func (s *MealPlanService) Delete(ctx context.Context, userID, planID uuid.UUID) error {
	plan, err := s.load(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.guard.Require(ctx, userID, plan.FamilyID, RoleMember); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listIDs := tx.Model(&models.ShoppingList{}).Select("id").Where("meal_plan_id = ?", planID)
		if err := tx.Where("shopping_list_id IN (?)", listIDs).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_plan_id = ?", planID).Delete(&models.ShoppingList{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_plan_id = ?", planID).Delete(&models.MealPlanEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MealPlan{}, "id = ?", planID).Error
	})
}

// AssignEntry sets the meal for one day of the plan, replacing any meal
// already on that day.
func (s *MealPlanService) AssignEntry(ctx context.Context, userID, planID uuid.UUID, req *dto.AssignEntryRequest) (*models.MealPlanEntry, error) {
	day, err := NormalizeDay(req.DayOfWeek)
	if err != nil {
		return nil, err
	}
	mealID, err := uuid.Parse(req.MealID)
	if err != nil {
		return nil, validation("Invalid meal id")
	}

	plan, err := s.load(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Require(ctx, userID, plan.FamilyID, RoleMember); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var meal models.Meal
	if err := db.Scopes(session.ForFamily(plan.FamilyID)).First(&meal, "id = ?", mealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: ErrNotFound, Msg: "Meal not found or does not belong to your family"}
		}
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}

	entry, err := s.upsertEntry(db, planID, day, mealID)
	if err != nil && database.IsUniqueViolation(err) {
		// Another request created the day first; ours becomes an update.
		entry, err = s.upsertEntry(db, planID, day, mealID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save meal plan entry: %w", err)
	}

	entry.Meal = &meal
	return entry, nil
}

func (s *MealPlanService) upsertEntry(db *gorm.DB, planID uuid.UUID, day string, mealID uuid.UUID) (*models.MealPlanEntry, error) {
	var entry models.MealPlanEntry
	err := db.Where("meal_plan_id = ? AND day_of_week = ?", planID, day).Take(&entry).Error
	switch {
	case err == nil:
		if err := db.Model(&entry).Update("meal_id", mealID).Error; err != nil {
			return nil, err
		}
		entry.MealID = mealID
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = models.MealPlanEntry{ID: uuid.New(), MealPlanID: planID, DayOfWeek: day, MealID: mealID}
		if err := db.Omit("Meal").Create(&entry).Error; err != nil {
			return nil, err
		}
		return &entry, nil
	default:
		return nil, err
	}
}

// RemoveEntry deletes one entry. The entry must belong to the plan in the path.
func (s *MealPlanService) RemoveEntry(ctx context.Context, userID, planID, entryID uuid.UUID) error {
	plan, err := s.load(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.guard.Require(ctx, userID, plan.FamilyID, RoleMember); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	var entry models.MealPlanEntry
	if err := db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Meal plan entry")
		}
		return fmt.Errorf("failed to load meal plan entry: %w", err)
	}
	if entry.MealPlanID != planID {
		return validation("Entry does not belong to this meal plan")
	}

	return db.Delete(&models.MealPlanEntry{}, "id = ?", entryID).Error
}

func (s *MealPlanService) load(ctx context.Context, planID uuid.UUID, preloads ...string) (*models.MealPlan, error) {
	q := s.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}

	var plan models.MealPlan
	if err := q.First(&plan, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Meal plan")
		}
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}
	return &plan, nil
}

func sortEntries(entries []models.MealPlanEntry) {
	slices.SortFunc(entries, func(a, b models.MealPlanEntry) int {
		return slices.Index(models.DaysOfWeek, a.DayOfWeek) - slices.Index(models.DaysOfWeek, b.DayOfWeek)
	})
}
