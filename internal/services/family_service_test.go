package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/notify"
)

func TestCreateFamilyMakesCreatorAdmin(t *testing.T) {
	f := newFixture(t)
	f.cfg.FamilyAutoMealPlan = true
	alice := f.user(t, "alice")

	fam := f.family(t, alice)

	if err := f.guard.Require(testCtx, alice.ID, fam.ID, RoleAdmin); err != nil {
		t.Errorf("Expected creator to be admin: %v", err)
	}

	var plans []models.MealPlan
	f.db.Where("family_id = ?", fam.ID).Find(&plans)
	if len(plans) != 1 {
		t.Fatalf("Expected current-week plan to be created, got %d plans", len(plans))
	}
	if plans[0].WeekStart.Weekday() != time.Monday {
		t.Errorf("Expected plan to start on Monday, got %s", plans[0].WeekStart.Weekday())
	}

	_, err := f.families.Create(testCtx, alice.ID, &dto.CreateFamilyRequest{Name: "   "})
	assertKind(t, err, ErrValidation)
}

func TestInviteMember(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	fam := f.family(t, alice)

	// Admin check comes before anything about the invitee.
	_, err := f.families.Invite(testCtx, bob.ID, fam.ID, &dto.InviteRequest{Email: "nobody@example.com"})
	assertKind(t, err, ErrForbidden)

	_, err = f.families.Invite(testCtx, alice.ID, fam.ID, &dto.InviteRequest{Email: "not-an-email"})
	assertKind(t, err, ErrValidation)

	_, err = f.families.Invite(testCtx, alice.ID, fam.ID, &dto.InviteRequest{Email: "nobody@example.com"})
	assertKind(t, err, ErrNotFound)

	member, err := f.families.Invite(testCtx, alice.ID, fam.ID, &dto.InviteRequest{Email: bob.Email})
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if member.IsAdmin {
		t.Error("Invited members must not be admins")
	}

	_, err = f.families.Invite(testCtx, alice.ID, fam.ID, &dto.InviteRequest{Email: bob.Email})
	assertKind(t, err, ErrConflict)

	// Members can read but not invite.
	if _, err := f.families.Get(testCtx, bob.ID, fam.ID); err != nil {
		t.Errorf("Expected member to read family: %v", err)
	}
	_, err = f.families.Invite(testCtx, bob.ID, fam.ID, &dto.InviteRequest{Email: carol.Email})
	assertKind(t, err, ErrForbidden)

	if n := len(f.events.ofType(notify.EventMemberInvited)); n != 1 {
		t.Errorf("Expected 1 invite event, got %d", n)
	}
}

func TestListAndGetFamilies(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	first := f.family(t, alice)
	f.family(t, bob)

	families, err := f.families.List(testCtx, alice.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(families) != 1 || families[0].ID != first.ID {
		t.Errorf("Expected only alice's family, got %+v", families)
	}

	got, err := f.families.Get(testCtx, alice.ID, first.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].User == nil || got.Members[0].User.Username != "alice" {
		t.Errorf("Expected alice as the only member, got %+v", got.Members)
	}

	_, err = f.families.Get(testCtx, bob.ID, first.ID)
	assertKind(t, err, ErrForbidden)
}

func TestDeleteFamilyCascades(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	fam := f.family(t, alice)
	if _, err := f.families.Invite(testCtx, alice.ID, fam.ID, &dto.InviteRequest{Email: bob.Email}); err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	eggs := f.ingredient(t, alice, fam, "Eggs", "pcs", "Dairy & Eggs")
	meal := f.meal(t, alice, fam, "Eggs", line{eggs, 2})
	plan := f.plan(t, alice, fam, "2024-05-13")
	f.assign(t, alice, plan, "monday", meal)
	if _, _, err := f.shopping.Generate(testCtx, alice.ID, plan.ID); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	err := f.families.Delete(testCtx, bob.ID, fam.ID)
	assertKind(t, err, ErrForbidden)

	if err := f.families.Delete(testCtx, alice.ID, fam.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for name, model := range map[string]any{
		"families":            &models.Family{},
		"family_members":      &models.FamilyMember{},
		"ingredients":         &models.Ingredient{},
		"meals":               &models.Meal{},
		"meal_ingredients":    &models.MealIngredient{},
		"meal_plans":          &models.MealPlan{},
		"meal_plan_entries":   &models.MealPlanEntry{},
		"shopping_lists":      &models.ShoppingList{},
		"shopping_list_items": &models.ShoppingListItem{},
	} {
		var count int64
		f.db.Model(model).Count(&count)
		if count != 0 {
			t.Errorf("Expected %s to be empty, got %d rows", name, count)
		}
	}
}
