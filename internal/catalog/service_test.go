package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/internal/prices"
	"github.com/despensa-app/despensa-backend/internal/shoppinglist"
	"github.com/despensa-app/despensa-backend/internal/stores"
	"github.com/despensa-app/despensa-backend/pkg/enums"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS brands (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS brands_lower_name_key ON brands (lower(name));`,
		`CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS ingredients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  type TEXT,
  rating INTEGER NOT NULL DEFAULT 0,
  status TEXT,
  brand_id TEXT,
  favorite_store_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS ingredient_prices (
  id TEXT PRIMARY KEY,
  ingredient_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  price NUMERIC,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (ingredient_id, store_id)
);`,
		`CREATE TABLE IF NOT EXISTS shopping_lists (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  ingredient_id TEXT NOT NULL,
  amount INTEGER NOT NULL DEFAULT 1,
  price NUMERIC,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, store_id, ingredient_id)
);`,
		`CREATE TABLE IF NOT EXISTS recipe_ingredients (
  id TEXT PRIMARY KEY,
  recipe_id TEXT NOT NULL,
  ingredient_id TEXT NOT NULL,
  quantity NUMERIC,
  unit TEXT,
  UNIQUE (recipe_id, ingredient_id)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newCatalogService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		CatalogRepo: NewRepository(db),
		BrandRepo:   NewBrandRepository(db),
		PriceRepo:   prices.NewRepository(db),
		StoreRepo:   stores.NewRepository(db),
		ListStore:   shoppinglist.NewRepository(db),
	})
	require.NoError(t, err)
	return svc
}

func seedCatalogStore(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(`INSERT INTO stores (id, name) VALUES (?, ?)`, id, name).Error)
	return id
}

func TestBrandFindOrCreateIsCaseInsensitive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewBrandRepository(db)
	ctx := context.Background()

	first, err := repo.UpsertBrandByName(ctx, "Hacendado")
	require.NoError(t, err)

	second, err := repo.UpsertBrandByName(ctx, "HACENDADO")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Hacendado", second.Name, "original casing wins")

	var count int64
	require.NoError(t, db.Table("brands").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTagFindOrCreateIsCaseSensitive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewBrandRepository(db)
	ctx := context.Background()

	first, err := repo.UpsertTagByName(ctx, "Vegano")
	require.NoError(t, err)

	second, err := repo.UpsertTagByName(ctx, "vegano")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "different casing mints a new tag")
}

func TestCreateIngredientWithBrandAndPrices(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	storeA := seedCatalogStore(t, db, "StoreA")
	storeB := seedCatalogStore(t, db, "StoreB")

	brand := "Hacendado"
	status := string(enums.IngredientStatusUrgent)
	price := decimal.RequireFromString("2.50")
	dto, err := svc.CreateIngredient(ctx, IngredientInput{
		Name:            "Tomate",
		Type:            "Verdura",
		Rating:          3.5,
		Status:          &status,
		BrandName:       &brand,
		Prices:          []StorePriceInput{{StoreID: storeA, Price: &price}},
		RemovedStoreIDs: []uuid.UUID{storeB},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tomate", dto.Name)
	assert.Equal(t, 3.5, dto.Rating)
	require.NotNil(t, dto.Status)
	assert.Equal(t, status, *dto.Status)
	require.NotNil(t, dto.Brand)
	assert.Equal(t, "Hacendado", dto.Brand.Name)
	require.NotNil(t, dto.MinPrice)
	assert.True(t, dto.MinPrice.Equal(price))

	require.Len(t, dto.Prices, 2)
	byStore := map[uuid.UUID]PriceEntryDTO{}
	for _, entry := range dto.Prices {
		byStore[entry.StoreID] = entry
	}
	assert.True(t, byStore[storeA].Available)
	assert.False(t, byStore[storeB].Available)
}

func TestCreateIngredientRejectsBadRating(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	_, err := svc.CreateIngredient(ctx, IngredientInput{Name: "Pan", Rating: 3.3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "half steps")

	_, err = svc.CreateIngredient(ctx, IngredientInput{Name: "Pan", Rating: 5.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 5")
}

func TestCreateIngredientDuplicateName(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	_, err := svc.CreateIngredient(ctx, IngredientInput{Name: "Leche"})
	require.NoError(t, err)

	_, err = svc.CreateIngredient(ctx, IngredientInput{Name: "Leche"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestQuickAddSeedsUnavailableEverywhere(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	seedCatalogStore(t, db, "StoreA")
	seedCatalogStore(t, db, "StoreB")
	userID := uuid.New()

	result, err := svc.QuickAdd(ctx, userID, "Levadura")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ListRows)
	require.NotNil(t, result.Ingredient.Status)
	assert.Equal(t, string(enums.IngredientStatusMissing), *result.Ingredient.Status)

	// the ledger says unavailable everywhere, so the fan-out cascade must skip it
	priceRepo := prices.NewRepository(db)
	ids, err := priceRepo.UnavailableStoreIDs(ctx, result.Ingredient.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	listSvc, err := shoppinglist.NewService(shoppinglist.ServiceParams{
		ListRepo:     shoppinglist.NewRepository(db),
		PriceRepo:    priceRepo,
		StoreRepo:    stores.NewRepository(db),
		StatusSetter: NewRepository(db),
	})
	require.NoError(t, err)

	created, err := listSvc.AddToAllStores(ctx, uuid.New(), result.Ingredient.ID)
	require.NoError(t, err)
	assert.Empty(t, created, "quick-added ingredients are never auto-added")
}

func TestQuickAddIsIdempotentForExistingName(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	seedCatalogStore(t, db, "StoreA")
	userID := uuid.New()

	first, err := svc.QuickAdd(ctx, userID, "Sal")
	require.NoError(t, err)

	second, err := svc.QuickAdd(ctx, userID, "Sal")
	require.NoError(t, err)
	assert.Equal(t, first.Ingredient.ID, second.Ingredient.ID)
	assert.Zero(t, second.ListRows, "membership rows already in place")
}

func TestDeleteIngredientRefusedWhileRecipeReferencesIt(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	dto, err := svc.CreateIngredient(ctx, IngredientInput{Name: "Huevos"})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		`INSERT INTO recipe_ingredients (id, recipe_id, ingredient_id) VALUES (?, ?, ?)`,
		uuid.New(), uuid.New(), dto.ID).Error)

	err = svc.DeleteIngredient(ctx, dto.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "referenced by recipes")
}

func TestDeleteIngredientClearsListMembership(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	seedCatalogStore(t, db, "StoreA")
	userID := uuid.New()

	result, err := svc.QuickAdd(ctx, userID, "Harina")
	require.NoError(t, err)
	require.Equal(t, 1, result.ListRows)

	require.NoError(t, svc.DeleteIngredient(ctx, result.Ingredient.ID))

	var count int64
	require.NoError(t, db.Table("shopping_lists").Where("ingredient_id = ?", result.Ingredient.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateIngredientReplacesBrandAndStatus(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	brand := "Hacendado"
	dto, err := svc.CreateIngredient(ctx, IngredientInput{Name: "Yogur", BrandName: &brand, Rating: 4})
	require.NoError(t, err)
	require.NotNil(t, dto.Brand)

	status := string(enums.IngredientStatusMissing)
	updated, err := svc.UpdateIngredient(ctx, dto.ID, IngredientInput{
		Name:   "Yogur natural",
		Rating: 4.5,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "Yogur natural", updated.Name)
	assert.Equal(t, 4.5, updated.Rating)
	require.NotNil(t, updated.Status)
	assert.Equal(t, status, *updated.Status)
	assert.Nil(t, updated.Brand, "brand cleared when input omits it")
}
