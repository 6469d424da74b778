package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService owns categories, ingredients and meals.
type CatalogService struct {
	db    *gorm.DB
	guard *AccessGuard
}

func NewCatalogService(db *gorm.DB, guard *AccessGuard) *CatalogService {
	return &CatalogService{db: db, guard: guard}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListIngredients returns the family's ingredients plus the global ones, by name.
func (s *CatalogService) ListIngredients(ctx context.Context, userID, familyID uuid.UUID) ([]models.Ingredient, error) {
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}

	var ingredients []models.Ingredient
	err := s.db.WithContext(ctx).
		Scopes(session.VisibleToFamily(familyID)).
		Preload("Category").
		Order("name_key ASC").
		Find(&ingredients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, userID, familyID uuid.UUID, req *dto.CreateIngredientRequest) (*models.Ingredient, error) {
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	unit := strings.TrimSpace(req.Unit)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return nil, validation("Name is required (max 100 characters)")
	}
	if unit == "" || utf8.RuneCountInString(unit) > 30 {
		return nil, validation("Unit is required (max 30 characters)")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, validation("Invalid category id")
	}

	db := s.db.WithContext(ctx)

	var category models.Category
	if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Category")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	ingredient := models.Ingredient{
		ID:         uuid.New(),
		FamilyID:   &familyID,
		Name:       name,
		NameKey:    strings.ToLower(name),
		Unit:       unit,
		CategoryID: categoryID,
	}

	var count int64
	if err := db.Model(&models.Ingredient{}).
		Where("family_id = ? AND name_key = ?", familyID, ingredient.NameKey).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check ingredient name: %w", err)
	}
	if count > 0 {
		return nil, conflict("An ingredient with this name already exists in your family")
	}

	if err := db.Create(&ingredient).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflict("An ingredient with this name already exists in your family")
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}

	ingredient.Category = &category
	return &ingredient, nil
}

// DeleteIngredient removes a family ingredient and the meal lines using it.
// Ingredients already on a shopping list are kept.
func (s *CatalogService) DeleteIngredient(ctx context.Context, userID, ingredientID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var ingredient models.Ingredient
	if err := db.First(&ingredient, "id = ?", ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Ingredient")
		}
		return fmt.Errorf("failed to load ingredient: %w", err)
	}
	if ingredient.FamilyID == nil {
		return forbidden("Shared ingredients cannot be deleted")
	}
	if err := s.guard.Require(ctx, userID, *ingredient.FamilyID, RoleMember); err != nil {
		return err
	}

	var used int64
	if err := db.Model(&models.ShoppingListItem{}).Where("ingredient_id = ?", ingredientID).Count(&used).Error; err != nil {
		return fmt.Errorf("failed to check ingredient usage: %w", err)
	}
	if used > 0 {
		return conflict("Ingredient is used on a shopping list")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", ingredientID).Delete(&models.MealIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Ingredient{}, "id = ?", ingredientID).Error
	})
}

func (s *CatalogService) ListMeals(ctx context.Context, userID, familyID uuid.UUID) ([]models.Meal, error) {
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}

	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Scopes(session.ForFamily(familyID)).
		Preload("Ingredients", orderByPosition).
		Preload("Ingredients.Ingredient").
		Order("name ASC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

func (s *CatalogService) GetMeal(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error) {
	meal, err := s.loadMeal(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Require(ctx, userID, meal.FamilyID, RoleMember); err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *CatalogService) CreateMeal(ctx context.Context, userID uuid.UUID, req *dto.MealRequest) (*models.Meal, error) {
	familyID, err := uuid.Parse(req.FamilyID)
	if err != nil {
		return nil, validation("Invalid family id")
	}
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}

	name, description, err := mealFields(req)
	if err != nil {
		return nil, err
	}

	meal := models.Meal{
		ID:          uuid.New(),
		FamilyID:    familyID,
		Name:        name,
		Description: description,
	}

	lines, err := s.buildLines(ctx, familyID, meal.ID, req.Ingredients)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients").Create(&meal).Error; err != nil {
			return err
		}
		return tx.Omit("Ingredient").Create(&lines).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	return s.loadMeal(ctx, meal.ID)
}

// UpdateMeal replaces the meal's fields and ingredient lines.
func (s *CatalogService) UpdateMeal(ctx context.Context, userID, mealID uuid.UUID, req *dto.MealRequest) (*models.Meal, error) {
	meal, err := s.loadMeal(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Require(ctx, userID, meal.FamilyID, RoleMember); err != nil {
		return nil, err
	}

	name, description, err := mealFields(req)
	if err != nil {
		return nil, err
	}
	lines, err := s.buildLines(ctx, meal.FamilyID, meal.ID, req.Ingredients)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Meal{}).Where("id = ?", mealID).Updates(map[string]any{
			"name":        name,
			"description": description,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_id = ?", mealID).Delete(&models.MealIngredient{}).Error; err != nil {
			return err
		}
		return tx.Omit("Ingredient").Create(&lines).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}

	return s.loadMeal(ctx, mealID)
}

// DeleteMeal removes the meal, its ingredient lines and the plan entries using it.
func (s *CatalogService) DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var meal models.Meal
	if err := db.First(&meal, "id = ?", mealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Meal")
		}
		return fmt.Errorf("failed to load meal: %w", err)
	}
	if err := s.guard.Require(ctx, userID, meal.FamilyID, RoleMember); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_id = ?", mealID).Delete(&models.MealPlanEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_id = ?", mealID).Delete(&models.MealIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Meal{}, "id = ?", mealID).Error
	})
}

func (s *CatalogService) loadMeal(ctx context.Context, mealID uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Preload("Ingredients", orderByPosition).
		Preload("Ingredients.Ingredient").
		First(&meal, "id = ?", mealID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Meal")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}
	return &meal, nil
}

// buildLines validates ingredient lines: at least one, positive quantities,
// no ingredient twice, each visible to the family.
func (s *CatalogService) buildLines(ctx context.Context, familyID, mealID uuid.UUID, inputs []dto.MealIngredientInput) ([]models.MealIngredient, error) {
	if len(inputs) == 0 {
		return nil, validation("At least one ingredient is required")
	}

	lines := make([]models.MealIngredient, 0, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))

	for i, in := range inputs {
		id, err := uuid.Parse(in.IngredientID)
		if err != nil {
			return nil, validation("Invalid ingredient id at position %d", i+1)
		}
		if in.Quantity <= 0 {
			return nil, validation("Quantity must be positive at position %d", i+1)
		}
		if seen[id] {
			return nil, validation("Ingredient listed twice at position %d", i+1)
		}
		seen[id] = true
		ids = append(ids, id)
		lines = append(lines, models.MealIngredient{
			MealID:       mealID,
			IngredientID: id,
			Quantity:     in.Quantity,
			Position:     i,
		})
	}

	var visible int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Scopes(session.VisibleToFamily(familyID)).
		Where("id IN ?", ids).
		Count(&visible).Error; err != nil {
		return nil, fmt.Errorf("failed to check ingredients: %w", err)
	}
	if int(visible) != len(ids) {
		return nil, notFound("Ingredient")
	}
	return lines, nil
}

func mealFields(req *dto.MealRequest) (string, *string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return "", nil, validation("Name is required (max 100 characters)")
	}

	var description *string
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			description = &d
		}
	}
	return name, description, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
