package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/despensa-app/despensa-backend/api/routes"
	"github.com/despensa-app/despensa-backend/internal/catalog"
	"github.com/despensa-app/despensa-backend/internal/prices"
	"github.com/despensa-app/despensa-backend/internal/recipes"
	"github.com/despensa-app/despensa-backend/internal/shoppinglist"
	"github.com/despensa-app/despensa-backend/internal/stores"
	"github.com/despensa-app/despensa-backend/internal/weeklyplan"
	"github.com/despensa-app/despensa-backend/pkg/config"
	"github.com/despensa-app/despensa-backend/pkg/db"
	"github.com/despensa-app/despensa-backend/pkg/logger"
	"github.com/despensa-app/despensa-backend/pkg/metrics"
	"github.com/despensa-app/despensa-backend/pkg/migrate"
	"github.com/despensa-app/despensa-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	storeRepo := stores.NewRepository(gormDB)
	priceRepo := prices.NewRepository(gormDB)
	listRepo := shoppinglist.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	brandRepo := catalog.NewBrandRepository(gormDB)
	recipeRepo := recipes.NewRepository(gormDB)
	planRepo := weeklyplan.NewRepository(gormDB)

	reconcileMetrics := metrics.NewReconcileMetrics(prometheus.DefaultRegisterer)

	storeService, err := stores.NewService(stores.ServiceParams{StoreRepo: storeRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	priceService, err := prices.NewService(prices.ServiceParams{
		PriceRepo:   priceRepo,
		ListRemover: listRepo,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create price service", err)
		os.Exit(1)
	}

	listService, err := shoppinglist.NewService(shoppinglist.ServiceParams{
		ListRepo:     listRepo,
		PriceRepo:    priceRepo,
		StoreRepo:    storeRepo,
		StatusSetter: catalogRepo,
		Metrics:      reconcileMetrics,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shopping list service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		CatalogRepo: catalogRepo,
		BrandRepo:   brandRepo,
		PriceRepo:   priceRepo,
		StoreRepo:   storeRepo,
		ListStore:   listRepo,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	recipeService, err := recipes.NewService(recipes.ServiceParams{
		RecipeRepo:  recipeRepo,
		Ingredients: catalogRepo,
		Tags:        brandRepo,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recipe service", err)
		os.Exit(1)
	}

	planService, err := weeklyplan.NewService(weeklyplan.ServiceParams{
		PlanRepo: planRepo,
		Recipes:  recipeRepo,
		Cascader: listService,
		Snapshot: listRepo,
		Metrics:  reconcileMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create weekly plan service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Stores:       storeService,
			Catalog:      catalogService,
			Prices:       priceService,
			ShoppingList: listService,
			Recipes:      recipeService,
			WeeklyPlan:   planService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
