package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/notify"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) ofType(typ string) []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notify.Event
	for _, e := range p.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	cfg      *config.Config
	events   *recordingPublisher
	guard    *AccessGuard
	auth     *AuthService
	families *FamilyService
	catalog  *CatalogService
	plans    *MealPlanService
	shopping *ShoppingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureOn(testutil.NewDB(t))
}

// fixtureOn wires every service over db with auto meal plans off.
func fixtureOn(db *gorm.DB) *fixture {
	cfg := testutil.TestConfig()
	cfg.FamilyAutoMealPlan = false

	events := &recordingPublisher{}
	guard := NewAccessGuard(db)
	return &fixture{
		db:       db,
		cfg:      cfg,
		events:   events,
		guard:    guard,
		auth:     NewAuthService(db, cfg),
		families: NewFamilyService(db, cfg, guard, events),
		catalog:  NewCatalogService(db, guard),
		plans:    NewMealPlanService(db, guard),
		shopping: NewShoppingService(db, guard, events),
	}
}

var testCtx = context.Background()

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.auth.Register(testCtx, &dto.RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Failed to register %s: %v", name, err)
	}
	return u
}

func (f *fixture) family(t *testing.T, owner *models.User) *models.Family {
	t.Helper()
	fam, err := f.families.Create(testCtx, owner.ID, &dto.CreateFamilyRequest{Name: owner.Username + " family"})
	if err != nil {
		t.Fatalf("Failed to create family: %v", err)
	}
	return fam
}

func (f *fixture) category(t *testing.T, name string) models.Category {
	t.Helper()
	var c models.Category
	if err := f.db.Where("name = ?", name).First(&c).Error; err != nil {
		t.Fatalf("Category %q not seeded: %v", name, err)
	}
	return c
}

func (f *fixture) ingredient(t *testing.T, user *models.User, fam *models.Family, name, unit, category string) *models.Ingredient {
	t.Helper()
	ing, err := f.catalog.CreateIngredient(testCtx, user.ID, fam.ID, &dto.CreateIngredientRequest{
		Name:       name,
		Unit:       unit,
		CategoryID: f.category(t, category).ID.String(),
	})
	if err != nil {
		t.Fatalf("Failed to create ingredient %s: %v", name, err)
	}
	return ing
}

type line struct {
	ing *models.Ingredient
	qty float64
}

func (f *fixture) meal(t *testing.T, user *models.User, fam *models.Family, name string, lines ...line) *models.Meal {
	t.Helper()
	req := &dto.MealRequest{FamilyID: fam.ID.String(), Name: name}
	for _, l := range lines {
		req.Ingredients = append(req.Ingredients, dto.MealIngredientInput{IngredientID: l.ing.ID.String(), Quantity: l.qty})
	}
	m, err := f.catalog.CreateMeal(testCtx, user.ID, req)
	if err != nil {
		t.Fatalf("Failed to create meal %s: %v", name, err)
	}
	return m
}

func (f *fixture) plan(t *testing.T, user *models.User, fam *models.Family, week string) *models.MealPlan {
	t.Helper()
	p, err := f.plans.Create(testCtx, user.ID, &dto.CreateMealPlanRequest{FamilyID: fam.ID.String(), WeekStart: week})
	if err != nil {
		t.Fatalf("Failed to create meal plan: %v", err)
	}
	return p
}

func (f *fixture) assign(t *testing.T, user *models.User, plan *models.MealPlan, day string, meal *models.Meal) *models.MealPlanEntry {
	t.Helper()
	e, err := f.plans.AssignEntry(testCtx, user.ID, plan.ID, &dto.AssignEntryRequest{MealID: meal.ID.String(), DayOfWeek: day})
	if err != nil {
		t.Fatalf("Failed to assign %s: %v", day, err)
	}
	return e
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("Expected error kind %v, got %v", kind, err)
	}
}

func quantities(list *models.ShoppingList) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(list.Items))
	for _, item := range list.Items {
		out[item.IngredientID] = item.Quantity
	}
	return out
}
