package database_test

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestConnectRejectsUnknownType(t *testing.T) {
	_, err := database.Connect(&config.Config{DBType: "oracle"})
	if err == nil {
		t.Fatal("Expected error for unsupported database type")
	}
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	var before []models.Category
	if err := db.Order("sort_order").Find(&before).Error; err != nil {
		t.Fatalf("Failed to load categories: %v", err)
	}

	// A restart seeds again on the same database.
	for i := 0; i < 2; i++ {
		if err := database.SeedCategories(db); err != nil {
			t.Fatalf("Reseed %d failed: %v", i+1, err)
		}
	}

	var categories []models.Category
	if err := db.Order("sort_order").Find(&categories).Error; err != nil {
		t.Fatalf("Failed to load categories: %v", err)
	}
	if len(categories) != len(database.DefaultCategories) {
		t.Fatalf("Expected %d categories, got %d", len(database.DefaultCategories), len(categories))
	}
	for i := range categories {
		if categories[i].ID != before[i].ID {
			t.Errorf("Category %q changed id on reseed", categories[i].Name)
		}
	}
	if categories[0].Name != "Fruits & Vegetables" {
		t.Errorf("Expected first category 'Fruits & Vegetables', got %q", categories[0].Name)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := testutil.NewDB(t)

	first := models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	dup := models.User{ID: uuid.New(), Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err := db.Create(&dup).Error
	if err == nil {
		t.Fatal("Expected duplicate username to fail")
	}
	if !database.IsUniqueViolation(err) {
		t.Errorf("Expected unique violation, got %v", err)
	}

	if database.IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
	if database.IsUniqueViolation(errors.New("connection refused")) {
		t.Error("Unrelated error reported as unique violation")
	}
}

func TestPing(t *testing.T) {
	db := testutil.NewDB(t)
	if err := database.Ping(db); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestMissingRowIsNotLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	db, err := database.Connect(&config.Config{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "quiet.db"),
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	buf.Reset()
	var user models.User
	err = db.First(&user, "id = ?", uuid.New()).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no log output for a missing row, got %s", buf.String())
	}
}
