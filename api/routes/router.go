package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/despensa-app/despensa-backend/api/controllers"
	"github.com/despensa-app/despensa-backend/api/middleware"
	"github.com/despensa-app/despensa-backend/internal/catalog"
	"github.com/despensa-app/despensa-backend/internal/prices"
	"github.com/despensa-app/despensa-backend/internal/recipes"
	"github.com/despensa-app/despensa-backend/internal/shoppinglist"
	"github.com/despensa-app/despensa-backend/internal/stores"
	"github.com/despensa-app/despensa-backend/internal/weeklyplan"
	"github.com/despensa-app/despensa-backend/pkg/config"
	"github.com/despensa-app/despensa-backend/pkg/db"
	"github.com/despensa-app/despensa-backend/pkg/logger"
	"github.com/despensa-app/despensa-backend/pkg/redis"
)

// Services bundles the wired domain services handed to the router.
type Services struct {
	Stores       stores.Service
	Catalog      catalog.Service
	Prices       prices.Service
	ShoppingList shoppinglist.Service
	Recipes      recipes.Service
	WeeklyPlan   weeklyplan.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger redis.Pinger
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbPinger, redisPinger, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreList(svcs.Stores, logg))
			r.Post("/", controllers.StoreCreate(svcs.Stores, logg))
			r.Get("/{storeId}", controllers.StoreGet(svcs.Stores, logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/ingredients", controllers.IngredientList(svcs.Catalog, logg))
			r.Post("/ingredients", controllers.IngredientCreate(svcs.Catalog, logg))
			r.Post("/ingredients/quick-add", controllers.IngredientQuickAdd(svcs.Catalog, logg))
			r.Get("/ingredients/{ingredientId}", controllers.IngredientGet(svcs.Catalog, logg))
			r.Put("/ingredients/{ingredientId}", controllers.IngredientUpdate(svcs.Catalog, logg))
			r.Delete("/ingredients/{ingredientId}", controllers.IngredientDelete(svcs.Catalog, logg))

			r.Get("/ingredients/{ingredientId}/prices", controllers.PriceList(svcs.Prices, logg))
			r.Put("/ingredients/{ingredientId}/prices", controllers.PriceSet(svcs.Prices, logg))
			r.Post("/ingredients/{ingredientId}/prices/unavailable", controllers.PriceMarkUnavailable(svcs.Prices, logg))

			r.Get("/brands", controllers.BrandList(svcs.Catalog, logg))
			r.Get("/tags", controllers.TagList(svcs.Catalog, logg))
		})

		r.Route("/shopping-list", func(r chi.Router) {
			r.Get("/{storeId}", controllers.ShoppingListByStore(svcs.ShoppingList, logg))
			r.Post("/items", controllers.ShoppingListAddItem(svcs.ShoppingList, logg))
			r.Post("/cascade", controllers.ShoppingListCascade(svcs.ShoppingList, logg))
			r.Patch("/items/amount", controllers.ShoppingListAdjustAmount(svcs.ShoppingList, logg))
			r.Delete("/items", controllers.ShoppingListRemoveItem(svcs.ShoppingList, logg))
			r.Post("/{storeId}/complete", controllers.ShoppingListCompletePurchase(svcs.ShoppingList, logg))
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", controllers.RecipeList(svcs.Recipes, logg))
			r.Post("/", controllers.RecipeCreate(svcs.Recipes, logg))
			r.Get("/{recipeId}", controllers.RecipeGet(svcs.Recipes, logg))
			r.Put("/{recipeId}", controllers.RecipeUpdate(svcs.Recipes, logg))
			r.Delete("/{recipeId}", controllers.RecipeDelete(svcs.Recipes, logg))
		})

		r.Route("/weekly-plan", func(r chi.Router) {
			r.Get("/", controllers.WeeklyPlanList(svcs.WeeklyPlan, logg))
			r.Post("/assign", controllers.WeeklyPlanAssign(svcs.WeeklyPlan, logg))
			r.Delete("/{itemId}", controllers.WeeklyPlanUnassign(svcs.WeeklyPlan, logg))
		})
	})

	return r
}
