package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultCategories is the grocery category list seeded on startup.
var DefaultCategories = []string{
	"Fruits & Vegetables",
	"Dairy & Eggs",
	"Meat & Seafood",
	"Bakery",
	"Pantry Items",
	"Frozen Food",
	"Beverages",
	"Snacks",
	"Household",
	"Personal Care",
}

// Connect opens the database selected by cfg.DBType and configures the pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	maxOpen := cfg.DBMaxOpenConns

	switch cfg.DBType {
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN())

	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		dialector = gormmysql.Open(dsn)

	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.DBPath))
		// SQLite allows one writer; a single connection avoids "database is locked".
		maxOpen = 1

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		dialector = sqlserver.Open(dsn)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(max(maxOpen/2, 1))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected", "type", cfg.DBType)
	return db, nil
}

// SQLiteDSN adds the pragmas the service relies on to a SQLite file path.
func SQLiteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Migrate runs AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Family{},
		&models.FamilyMember{},
		&models.Category{},
		&models.Ingredient{},
		&models.Meal{},
		&models.MealIngredient{},
		&models.MealPlan{},
		&models.MealPlanEntry{},
		&models.ShoppingList{},
		&models.ShoppingListItem{},
		&models.SystemLog{},
	)
}

// SeedCategories inserts any missing default category. Existing rows are left alone.
func SeedCategories(db *gorm.DB) error {
	for i, name := range DefaultCategories {
		var category models.Category
		err := db.Where(models.Category{Name: name}).
			Attrs(models.Category{ID: uuid.New(), SortOrder: i}).
			FirstOrCreate(&category).Error
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}
	return nil
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsUniqueViolation reports whether err was caused by a unique or primary key
// constraint, whichever dialect produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Cannot insert duplicate key") ||
		strings.Contains(msg, "duplicate key value")
}

// newGormLogger routes GORM warnings through the default slog handler. Missing
// rows are normal control flow here and are not logged.
func newGormLogger() logger.Interface {
	return logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
