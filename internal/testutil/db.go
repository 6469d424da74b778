// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"gorm.io/gorm"
)

// NewDB returns a migrated and seeded SQLite database in t.TempDir().
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := database.SeedCategories(db); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}
	return db
}

// TestConfig returns a config suitable for services and handlers under test.
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		CORSOrigins:        "*",
		JWTSecret:          "test-secret",
		JWTExpiry:          24 * time.Hour,
		CookieName:         "token",
		FamilyAutoMealPlan: true,
	}
}
