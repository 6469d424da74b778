//go:build integration

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		t.Fatalf("Failed to create DB port: %v", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{string(port)},
			Env: map[string]string{
				"POSTGRES_USER":     "meals",
				"POSTGRES_PASSWORD": "meals",
				"POSTGRES_DB":       "family_meals",
			},
			// Postgres restarts once after initdb; wait for the second ready line.
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort(port),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to read container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("Failed to read mapped port: %v", err)
	}

	db, err := database.Connect(&config.Config{
		DBType:         "postgres",
		DBHost:         host,
		DBPort:         mapped.Port(),
		DBUser:         "meals",
		DBPassword:     "meals",
		DBName:         "family_meals",
		DBSSLMode:      "disable",
		DBMaxOpenConns: 16,
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := database.SeedCategories(db); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}
	return db
}

func TestPostgresConcurrentGenerationCreatesOneList(t *testing.T) {
	f := fixtureOn(startPostgres(t))

	alice := f.user(t, "alice")
	fam := f.family(t, alice)
	eggs := f.ingredient(t, alice, fam, "Eggs", "pcs", "Dairy & Eggs")
	milk := f.ingredient(t, alice, fam, "Milk", "l", "Dairy & Eggs")
	omelette := f.meal(t, alice, fam, "Omelette", line{eggs, 2}, line{milk, 1})
	boiled := f.meal(t, alice, fam, "Boiled egg", line{eggs, 1})
	plan := f.plan(t, alice, fam, "2024-05-13")
	f.assign(t, alice, plan, "monday", omelette)
	f.assign(t, alice, plan, "wednesday", boiled)

	const workers = 16
	start := make(chan struct{})
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[uuid.UUID]bool{}
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			list, c, err := f.shopping.Generate(testCtx, alice.ID, plan.ID)
			if err != nil {
				t.Errorf("Generate failed: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[list.ID] = true
			if c {
				created++
			}
			if got := quantities(list); got[eggs.ID] != 3 || got[milk.ID] != 1 {
				t.Errorf("Expected eggs 3 and milk 1, got %v", got)
			}
		}()
	}
	close(start)
	wg.Wait()

	if len(ids) != 1 || created != 1 {
		t.Errorf("Expected one list with one creator, got %d ids and %d creators", len(ids), created)
	}
}
