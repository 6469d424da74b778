package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/google/uuid"
)

func TestCreateIngredient(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	mallory := f.user(t, "mallory")
	fam := f.family(t, alice)
	dairy := f.category(t, "Dairy & Eggs")

	f.ingredient(t, alice, fam, "Milk", "l", "Dairy & Eggs")

	_, err := f.catalog.CreateIngredient(testCtx, alice.ID, fam.ID, &dto.CreateIngredientRequest{Name: "MILK", Unit: "ml", CategoryID: dairy.ID.String()})
	assertKind(t, err, ErrConflict)

	_, err = f.catalog.CreateIngredient(testCtx, alice.ID, fam.ID, &dto.CreateIngredientRequest{Name: "Cream", Unit: "ml", CategoryID: uuid.NewString()})
	assertKind(t, err, ErrNotFound)

	_, err = f.catalog.CreateIngredient(testCtx, alice.ID, fam.ID, &dto.CreateIngredientRequest{Name: "Cream", Unit: "", CategoryID: dairy.ID.String()})
	assertKind(t, err, ErrValidation)

	_, err = f.catalog.CreateIngredient(testCtx, mallory.ID, fam.ID, &dto.CreateIngredientRequest{Name: "Cream", Unit: "ml", CategoryID: dairy.ID.String()})
	assertKind(t, err, ErrForbidden)
}

func TestListIngredientsIncludesGlobal(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	fam := f.family(t, alice)
	other := f.family(t, bob)
	pantry := f.category(t, "Pantry Items")

	global := models.Ingredient{ID: uuid.New(), Name: "Salt", NameKey: "salt", Unit: "g", CategoryID: pantry.ID}
	if err := f.db.Create(&global).Error; err != nil {
		t.Fatalf("Failed to create global ingredient: %v", err)
	}
	f.ingredient(t, alice, fam, "Flour", "g", "Pantry Items")
	f.ingredient(t, bob, other, "Sugar", "g", "Pantry Items")

	list, err := f.catalog.ListIngredients(testCtx, alice.ID, fam.ID)
	if err != nil {
		t.Fatalf("ListIngredients failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Flour" || list[1].Name != "Salt" {
		t.Errorf("Expected [Flour Salt], got %+v", list)
	}
	if list[0].Category == nil || list[0].Category.Name != "Pantry Items" {
		t.Error("Expected category to be loaded")
	}

	// Global ingredients can be used in meals but not deleted.
	f.meal(t, alice, fam, "Bread", line{&list[0], 500}, line{&global, 5})
	err = f.catalog.DeleteIngredient(testCtx, alice.ID, global.ID)
	assertKind(t, err, ErrForbidden)
}

func TestMealValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	fam := f.family(t, alice)
	other := f.family(t, bob)
	eggs := f.ingredient(t, alice, fam, "Eggs", "pcs", "Dairy & Eggs")
	foreign := f.ingredient(t, bob, other, "Truffle", "g", "Pantry Items")

	cases := []struct {
		name string
		req  dto.MealRequest
		kind error
	}{
		{"no lines", dto.MealRequest{FamilyID: fam.ID.String(), Name: "Air"}, ErrValidation},
		{"no name", dto.MealRequest{FamilyID: fam.ID.String(), Ingredients: []dto.MealIngredientInput{{IngredientID: eggs.ID.String(), Quantity: 1}}}, ErrValidation},
		{"zero quantity", dto.MealRequest{FamilyID: fam.ID.String(), Name: "Eggs", Ingredients: []dto.MealIngredientInput{{IngredientID: eggs.ID.String(), Quantity: 0}}}, ErrValidation},
		{"duplicate line", dto.MealRequest{FamilyID: fam.ID.String(), Name: "Eggs", Ingredients: []dto.MealIngredientInput{
			{IngredientID: eggs.ID.String(), Quantity: 1}, {IngredientID: eggs.ID.String(), Quantity: 2},
		}}, ErrValidation},
		{"foreign ingredient", dto.MealRequest{FamilyID: fam.ID.String(), Name: "Fancy", Ingredients: []dto.MealIngredientInput{{IngredientID: foreign.ID.String(), Quantity: 1}}}, ErrNotFound},
		{"other family", dto.MealRequest{FamilyID: other.ID.String(), Name: "Eggs", Ingredients: []dto.MealIngredientInput{{IngredientID: eggs.ID.String(), Quantity: 1}}}, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.CreateMeal(testCtx, alice.ID, &tc.req)
			assertKind(t, err, tc.kind)
		})
	}
}

func TestUpdateMealReplacesLines(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	fam := f.family(t, alice)
	eggs := f.ingredient(t, alice, fam, "Eggs", "pcs", "Dairy & Eggs")
	ham := f.ingredient(t, alice, fam, "Ham", "g", "Meat & Seafood")
	meal := f.meal(t, alice, fam, "Omelette", line{eggs, 2})

	desc := "with ham"
	updated, err := f.catalog.UpdateMeal(testCtx, alice.ID, meal.ID, &dto.MealRequest{
		Name:        "Ham omelette",
		Description: &desc,
		Ingredients: []dto.MealIngredientInput{
			{IngredientID: ham.ID.String(), Quantity: 50},
			{IngredientID: eggs.ID.String(), Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("UpdateMeal failed: %v", err)
	}
	if updated.Name != "Ham omelette" || updated.Description == nil || *updated.Description != desc {
		t.Errorf("Fields not updated: %+v", updated)
	}
	if len(updated.Ingredients) != 2 || updated.Ingredients[0].IngredientID != ham.ID || updated.Ingredients[1].Quantity != 3 {
		t.Errorf("Lines not replaced in order: %+v", updated.Ingredients)
	}
}

func TestDeleteMealRemovesPlanEntries(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	mallory := f.user(t, "mallory")
	fam := f.family(t, alice)
	eggs := f.ingredient(t, alice, fam, "Eggs", "pcs", "Dairy & Eggs")
	meal := f.meal(t, alice, fam, "Omelette", line{eggs, 2})
	plan := f.plan(t, alice, fam, "2024-05-13")
	f.assign(t, alice, plan, "monday", meal)

	err := f.catalog.DeleteMeal(testCtx, mallory.ID, meal.ID)
	assertKind(t, err, ErrForbidden)

	if err := f.catalog.DeleteMeal(testCtx, alice.ID, meal.ID); err != nil {
		t.Fatalf("DeleteMeal failed: %v", err)
	}

	var entries, lines int64
	f.db.Model(&models.MealPlanEntry{}).Count(&entries)
	f.db.Model(&models.MealIngredient{}).Count(&lines)
	if entries != 0 || lines != 0 {
		t.Errorf("Expected entries and lines removed, got %d and %d", entries, lines)
	}

	_, err = f.catalog.GetMeal(testCtx, alice.ID, meal.ID)
	assertKind(t, err, ErrNotFound)
}

func TestDeleteIngredientInUse(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	fam := f.family(t, alice)
	eggs := f.ingredient(t, alice, fam, "Eggs", "pcs", "Dairy & Eggs")
	chives := f.ingredient(t, alice, fam, "Chives", "g", "Fruits & Vegetables")
	meal := f.meal(t, alice, fam, "Omelette", line{eggs, 2}, line{chives, 5})
	plan := f.plan(t, alice, fam, "2024-05-13")
	f.assign(t, alice, plan, "monday", meal)
	if _, _, err := f.shopping.Generate(testCtx, alice.ID, plan.ID); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	err := f.catalog.DeleteIngredient(testCtx, alice.ID, eggs.ID)
	assertKind(t, err, ErrConflict)

	f.db.Where("ingredient_id = ?", chives.ID).Delete(&models.ShoppingListItem{})
	if err := f.catalog.DeleteIngredient(testCtx, alice.ID, chives.ID); err != nil {
		t.Fatalf("DeleteIngredient failed: %v", err)
	}

	got, err := f.catalog.GetMeal(testCtx, alice.ID, meal.ID)
	if err != nil {
		t.Fatalf("GetMeal failed: %v", err)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].IngredientID != eggs.ID {
		t.Errorf("Expected only eggs left on the meal, got %+v", got.Ingredients)
	}
}

func TestNonMemberForbiddenOnFamilyScopedReads(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	mallory := f.user(t, "mallory")
	fam := f.family(t, alice)

	_, err := f.catalog.ListIngredients(testCtx, mallory.ID, fam.ID)
	assertKind(t, err, ErrForbidden)
	_, err = f.catalog.ListMeals(testCtx, mallory.ID, fam.ID)
	assertKind(t, err, ErrForbidden)
	_, err = f.plans.List(testCtx, mallory.ID, fam.ID)
	assertKind(t, err, ErrForbidden)
	_, err = f.plans.Create(testCtx, mallory.ID, &dto.CreateMealPlanRequest{FamilyID: fam.ID.String(), WeekStart: "2024-05-13"})
	assertKind(t, err, ErrForbidden)

	categories, err := f.catalog.ListCategories(testCtx)
	if err != nil || len(categories) == 0 {
		t.Errorf("Expected seeded categories, got %d (%v)", len(categories), err)
	}
}

func TestListCategoriesInSortOrder(t *testing.T) {
	f := newFixture(t)

	categories, err := f.catalog.ListCategories(testCtx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != len(database.DefaultCategories) {
		t.Fatalf("Expected %d categories, got %d", len(database.DefaultCategories), len(categories))
	}
	for i, c := range categories {
		if c.Name != database.DefaultCategories[i] {
			t.Errorf("Position %d: expected %q, got %q", i, database.DefaultCategories[i], c.Name)
		}
	}
}
