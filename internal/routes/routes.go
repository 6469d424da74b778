package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles the HTTP handlers mounted under /api.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Family   *handlers.FamilyHandler
	Catalog  *handlers.CatalogHandler
	MealPlan *handlers.MealPlanHandler
	Shopping *handlers.ShoppingHandler
}

func Setup(app *fiber.App, cfg *config.Config, authService *services.AuthService, h Handlers) {
	api := app.Group("/api")

	// General API rate limit per IP
	if cfg.RateLimitPerMinute > 0 {
		api.Use(perIPLimiter(cfg.RateLimitPerMinute))
	}

	api.Get("/health", h.Health.Check)

	// Auth: stricter limit on credential endpoints, one budget per route
	auth := api.Group("/auth")
	auth.Post("/register", credentialLimited(cfg, h.Auth.Register)...)
	auth.Post("/login", credentialLimited(cfg, h.Auth.Login)...)
	auth.Post("/clear-token", h.Auth.ClearToken)

	// Everything below needs a session; each group carries its own
	// middleware so public routes stay untouched.
	jwt := middleware.JWTProtected(cfg)
	identity := middleware.LoadIdentity(authService, cfg)

	auth.Get("/me", jwt, identity, h.Auth.Me)

	families := api.Group("/families", jwt, identity)
	families.Get("/", h.Family.List)
	families.Post("/", h.Family.Create)
	families.Get("/:id", h.Family.Get)
	families.Delete("/:id", h.Family.Delete)
	families.Post("/:id/invite", h.Family.Invite)

	categories := api.Group("/categories", jwt, identity)
	categories.Get("/", h.Catalog.ListCategories)

	ingredients := api.Group("/ingredients", jwt, identity)
	ingredients.Get("/", h.Catalog.ListIngredients)
	ingredients.Post("/", h.Catalog.CreateIngredient)
	ingredients.Delete("/:id", h.Catalog.DeleteIngredient)

	meals := api.Group("/meals", jwt, identity)
	meals.Get("/", h.Catalog.ListMeals)
	meals.Post("/", h.Catalog.CreateMeal)
	meals.Get("/:id", h.Catalog.GetMeal)
	meals.Put("/:id", h.Catalog.UpdateMeal)
	meals.Delete("/:id", h.Catalog.DeleteMeal)

	plans := api.Group("/meal-plans", jwt, identity)
	plans.Get("/", h.MealPlan.List)
	plans.Post("/", h.MealPlan.Create)
	plans.Get("/:id", h.MealPlan.Get)
	plans.Put("/:id", h.MealPlan.Update)
	plans.Delete("/:id", h.MealPlan.Delete)
	plans.Post("/:id/entries", h.MealPlan.AssignEntry)
	plans.Delete("/:id/entries/:entryId", h.MealPlan.RemoveEntry)
	plans.Post("/:id/generate-shopping-list", h.MealPlan.GenerateShoppingList)

	lists := api.Group("/shopping-lists", jwt, identity)
	lists.Get("/", h.Shopping.List)
	lists.Post("/", h.Shopping.Create)
	lists.Get("/:id", h.Shopping.Get)
	lists.Post("/:id/items/:itemId/toggle", h.Shopping.ToggleItem)
	lists.Post("/:id/toggle-status", h.Shopping.ToggleStatus)
}

func credentialLimited(cfg *config.Config, handler fiber.Handler) []fiber.Handler {
	if cfg.AuthRateLimitPerMinute <= 0 {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{perIPLimiter(cfg.AuthRateLimitPerMinute), handler}
}

func perIPLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
