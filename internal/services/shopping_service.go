package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/notify"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const UncategorizedSection = "Uncategorized"

type ShoppingService struct {
	db     *gorm.DB
	guard  *AccessGuard
	events notify.Publisher
}

func NewShoppingService(db *gorm.DB, guard *AccessGuard, events notify.Publisher) *ShoppingService {
	return &ShoppingService{db: db, guard: guard, events: events}
}

// Generate builds the shopping list for a meal plan. A plan gets at most one
// list: when it already has one, that list is returned with created=false.
func (s *ShoppingService) Generate(ctx context.Context, userID, planID uuid.UUID) (*models.ShoppingList, bool, error) {
	db := s.db.WithContext(ctx)

	var plan models.MealPlan
	err := db.Preload("Entries.Meal.Ingredients", orderByPosition).First(&plan, "id = ?", planID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, notFound("Meal plan")
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load meal plan: %w", err)
	}

	if err := s.guard.Require(ctx, userID, plan.FamilyID, RoleMember); err != nil {
		return nil, false, err
	}

	existing, err := s.findByPlan(ctx, planID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		metrics.ShoppingListsGenerated.WithLabelValues("existing").Inc()
		return existing, false, nil
	}

	sortEntries(plan.Entries)
	lines := AggregateIngredients(plan.Entries)

	list := models.ShoppingList{
		ID:         uuid.New(),
		FamilyID:   plan.FamilyID,
		MealPlanID: plan.ID,
		Status:     models.ShoppingListDraft,
	}
	items := make([]models.ShoppingListItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.ShoppingListItem{
			ID:             uuid.New(),
			ShoppingListID: list.ID,
			IngredientID:   line.IngredientID,
			Quantity:       line.Quantity,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "MealPlan").Create(&list).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Omit("Ingredient").Create(&items).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			// A concurrent request created the list first.
			existing, findErr := s.findByPlan(ctx, planID)
			if findErr != nil {
				return nil, false, findErr
			}
			if existing != nil {
				metrics.ShoppingListsGenerated.WithLabelValues("race_lost").Inc()
				slog.Info("shopping list generation lost race", "meal_plan_id", planID, "shopping_list_id", existing.ID)
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create shopping list: %w", err)
	}

	metrics.ShoppingListsGenerated.WithLabelValues("created").Inc()
	metrics.ShoppingListItems.Observe(float64(len(items)))

	s.events.Publish(ctx, notify.Event{
		Type:     notify.EventShoppingListGenerated,
		FamilyID: list.FamilyID,
		ActorID:  userID,
		EntityID: list.ID,
		Detail:   fmt.Sprintf("%d items", len(items)),
	})

	created, err := s.findByPlan(ctx, planID)
	if err != nil {
		return nil, false, err
	}
	if created == nil {
		return nil, false, fmt.Errorf("shopping list %s vanished after create", list.ID)
	}
	return created, true, nil
}

// List returns the family's shopping lists, newest first.
func (s *ShoppingService) List(ctx context.Context, userID, familyID uuid.UUID) ([]models.ShoppingList, error) {
	if err := s.guard.Require(ctx, userID, familyID, RoleMember); err != nil {
		return nil, err
	}

	var lists []models.ShoppingList
	err := s.db.WithContext(ctx).
		Scopes(session.ForFamily(familyID)).
		Preload("MealPlan").
		Preload("Items.Ingredient").
		Order("created_at DESC").
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	for i := range lists {
		sortItems(lists[i].Items)
	}
	return lists, nil
}

// Get returns one list with its items sorted by ingredient name and grouped
// into category sections.
func (s *ShoppingService) Get(ctx context.Context, userID, listID uuid.UUID) (*dto.ShoppingListResponse, error) {
	var list models.ShoppingList
	err := s.db.WithContext(ctx).
		Preload("MealPlan").
		Preload("Items.Ingredient.Category").
		First(&list, "id = ?", listID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Shopping list")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}

	if err := s.guard.Require(ctx, userID, list.FamilyID, RoleMember); err != nil {
		return nil, err
	}

	sortItems(list.Items)
	return &dto.ShoppingListResponse{
		ShoppingList: &list,
		Sections:     GroupByCategory(list.Items),
	}, nil
}

// ToggleItem flips the checked flag of one item in a single UPDATE so that
// concurrent toggles never lose a write.
func (s *ShoppingService) ToggleItem(ctx context.Context, userID, listID, itemID uuid.UUID) (*models.ShoppingListItem, error) {
	db := s.db.WithContext(ctx)

	var list models.ShoppingList
	if err := db.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Shopping list")
		}
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	if err := s.guard.Require(ctx, userID, list.FamilyID, RoleMember); err != nil {
		return nil, err
	}

	res := db.Model(&models.ShoppingListItem{}).
		Where("id = ? AND shopping_list_id = ?", itemID, listID).
		Update("checked", gorm.Expr("CASE WHEN checked = ? THEN ? ELSE ? END", true, false, true))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to toggle item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("Shopping list item")
	}

	var item models.ShoppingListItem
	if err := db.Preload("Ingredient").First(&item, "id = ?", itemID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload item: %w", err)
	}

	metrics.ItemToggles.Inc()
	state := "unchecked"
	if item.Checked {
		state = "checked"
	}
	s.events.Publish(ctx, notify.Event{
		Type:     notify.EventItemToggled,
		FamilyID: list.FamilyID,
		ActorID:  userID,
		EntityID: item.ID,
		Detail:   state,
	})
	return &item, nil
}

// SetStatus moves the list to any of draft, active or completed.
func (s *ShoppingService) SetStatus(ctx context.Context, userID, listID uuid.UUID, req *dto.UpdateShoppingListStatusRequest) (*models.ShoppingList, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !slices.Contains(models.ShoppingListStatuses, status) {
		return nil, validation("Invalid status")
	}

	db := s.db.WithContext(ctx)

	var list models.ShoppingList
	if err := db.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Shopping list")
		}
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	if err := s.guard.Require(ctx, userID, list.FamilyID, RoleMember); err != nil {
		return nil, err
	}

	if err := db.Model(&list).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	list.Status = status

	s.events.Publish(ctx, notify.Event{
		Type:     notify.EventListStatusChanged,
		FamilyID: list.FamilyID,
		ActorID:  userID,
		EntityID: list.ID,
		Detail:   status,
	})
	return &list, nil
}

func (s *ShoppingService) findByPlan(ctx context.Context, planID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := s.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Where("meal_plan_id = ?", planID).
		Take(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	sortItems(list.Items)
	return &list, nil
}

// GroupByCategory splits sorted items into sections ordered by category sort
// order. Items without a category go to a trailing "Uncategorized" section.
func GroupByCategory(items []models.ShoppingListItem) []dto.ShoppingSection {
	type bucket struct {
		order   int
		section dto.ShoppingSection
	}
	buckets := make(map[string]*bucket)

	for _, item := range items {
		name, order := UncategorizedSection, math.MaxInt
		if item.Ingredient != nil && item.Ingredient.Category != nil {
			name, order = item.Ingredient.Category.Name, item.Ingredient.Category.SortOrder
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{order: order, section: dto.ShoppingSection{Category: name}}
			buckets[name] = b
		}
		b.section.Items = append(b.section.Items, item)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	slices.SortFunc(ordered, func(a, b *bucket) int {
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		return strings.Compare(a.section.Category, b.section.Category)
	})

	sections := make([]dto.ShoppingSection, 0, len(ordered))
	for _, b := range ordered {
		sections = append(sections, b.section)
	}
	return sections
}

func sortItems(items []models.ShoppingListItem) {
	slices.SortStableFunc(items, func(a, b models.ShoppingListItem) int {
		return strings.Compare(itemName(a), itemName(b))
	})
}

func itemName(item models.ShoppingListItem) string {
	if item.Ingredient == nil {
		return ""
	}
	return strings.ToLower(item.Ingredient.Name)
}
