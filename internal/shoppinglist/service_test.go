package shoppinglist

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
	"github.com/despensa-app/despensa-backend/internal/stores"
	"github.com/despensa-app/despensa-backend/pkg/enums"
)

func setupListTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
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
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type tableStatusSetter struct {
	db *gorm.DB
}

func (s tableStatusSetter) SetStatus(ctx context.Context, ingredientID uuid.UUID, status enums.IngredientStatus) error {
	return s.db.WithContext(ctx).
		Exec(`UPDATE ingredients SET status = ? WHERE id = ?`, string(status), ingredientID).
		Error
}

func newListService(t *testing.T, db *gorm.DB) (Service, *Repository, *prices.Repository, *stores.Repository) {
	t.Helper()

	listRepo := NewRepository(db)
	priceRepo := prices.NewRepository(db)
	storeRepo := stores.NewRepository(db)
	svc, err := NewService(ServiceParams{
		ListRepo:     listRepo,
		PriceRepo:    priceRepo,
		StoreRepo:    storeRepo,
		StatusSetter: tableStatusSetter{db: db},
	})
	require.NoError(t, err)
	return svc, listRepo, priceRepo, storeRepo
}

func seedStore(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(`INSERT INTO stores (id, name) VALUES (?, ?)`, id, name).Error)
	return id
}

func seedIngredient(t *testing.T, db *gorm.DB, name string, status *enums.IngredientStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	var raw *string
	if status != nil {
		s := string(*status)
		raw = &s
	}
	require.NoError(t, db.Exec(`INSERT INTO ingredients (id, name, status) VALUES (?, ?, ?)`, id, name, raw).Error)
	return id
}

func TestAddToAllStoresSkipsUnavailableStores(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, priceRepo, _ := newListService(t, db)
	ctx := context.Background()

	storeA := seedStore(t, db, "StoreA")
	storeB := seedStore(t, db, "StoreB")
	storeC := seedStore(t, db, "StoreC")
	tomate := seedIngredient(t, db, "Tomate", nil)
	userID := uuid.New()

	require.NoError(t, priceRepo.MarkUnavailable(ctx, tomate, storeA))

	created, err := svc.AddToAllStores(ctx, userID, tomate)
	require.NoError(t, err)
	require.Len(t, created, 2)

	got := map[uuid.UUID]bool{}
	for _, item := range created {
		got[item.StoreID] = true
		assert.Equal(t, 1, item.Amount)
	}
	assert.True(t, got[storeB])
	assert.True(t, got[storeC])
	assert.False(t, got[storeA])
}

func TestAddToAllStoresIsIdempotent(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, _, _ := newListService(t, db)
	ctx := context.Background()

	seedStore(t, db, "StoreA")
	seedStore(t, db, "StoreB")
	huevos := seedIngredient(t, db, "Huevos", nil)
	userID := uuid.New()

	first, err := svc.AddToAllStores(ctx, userID, huevos)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.AddToAllStores(ctx, userID, huevos)
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Table("shopping_lists").Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestAddToStoreRefusesUnavailablePair(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, priceRepo, _ := newListService(t, db)
	ctx := context.Background()

	store := seedStore(t, db, "StoreA")
	leche := seedIngredient(t, db, "Leche", nil)
	userID := uuid.New()

	require.NoError(t, priceRepo.MarkUnavailable(ctx, leche, store))

	item, err := svc.AddToStore(ctx, userID, leche, store, 2, nil)
	require.NoError(t, err)
	assert.Nil(t, item)

	var count int64
	require.NoError(t, db.Table("shopping_lists").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddToStoreUpsertsAndSnapshotsPrice(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, _, _ := newListService(t, db)
	ctx := context.Background()

	store := seedStore(t, db, "StoreA")
	pan := seedIngredient(t, db, "Pan", nil)
	userID := uuid.New()
	price := decimal.RequireFromString("1.20")

	item, err := svc.AddToStore(ctx, userID, pan, store, 0, &price)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 1, item.Amount, "amount below 1 clamps to 1")
	require.True(t, item.Price.Valid)
	assert.True(t, item.Price.Decimal.Equal(price))

	again, err := svc.AddToStore(ctx, userID, pan, store, 3, nil)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, item.ID, again.ID, "upsert keeps the same row")
	assert.Equal(t, 3, again.Amount)
}

func TestAdjustAmountFloorsAtOne(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, _, _ := newListService(t, db)
	ctx := context.Background()

	store := seedStore(t, db, "StoreA")
	arroz := seedIngredient(t, db, "Arroz", nil)
	userID := uuid.New()

	_, err := svc.AddToStore(ctx, userID, arroz, store, 2, nil)
	require.NoError(t, err)

	item, err := svc.AdjustAmount(ctx, userID, store, arroz, -100)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Amount)

	item, err = svc.AdjustAmount(ctx, userID, store, arroz, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Amount)

	item, err = svc.AdjustAmount(ctx, userID, store, arroz, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Amount)
}

func TestAdjustAmountMissingRow(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, _, _ := newListService(t, db)

	_, err := svc.AdjustAmount(context.Background(), uuid.New(), uuid.New(), uuid.New(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list row not found")
}

func TestRemoveAcrossAllStores(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, _, _ := newListService(t, db)
	ctx := context.Background()

	seedStore(t, db, "StoreA")
	seedStore(t, db, "StoreB")
	cafe := seedIngredient(t, db, "Cafe", nil)
	userID := uuid.New()

	_, err := svc.AddToAllStores(ctx, userID, cafe)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, userID, cafe, nil))

	var count int64
	require.NoError(t, db.Table("shopping_lists").Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCompletePurchaseClosesOutAcrossStores(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, priceRepo, _ := newListService(t, db)
	ctx := context.Background()

	storeA := seedStore(t, db, "StoreA")
	storeB := seedStore(t, db, "StoreB")
	urgente := enums.IngredientStatusUrgent
	atun := seedIngredient(t, db, "Atun", &urgente)
	userID := uuid.New()

	created, err := svc.AddToAllStores(ctx, userID, atun)
	require.NoError(t, err)
	require.Len(t, created, 2, "expected rows at %s and %s", storeA, storeB)

	paid := decimal.RequireFromString("2.35")
	result, err := svc.CompletePurchase(ctx, userID, storeA, []PurchaseItem{{IngredientID: atun, Price: &paid}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Failed)

	record, err := priceRepo.FindForPair(ctx, atun, storeA)
	require.NoError(t, err)
	assert.True(t, record.Available)
	require.True(t, record.Price.Valid)
	assert.True(t, record.Price.Decimal.Equal(paid))

	var status string
	require.NoError(t, db.Table("ingredients").Where("id = ?", atun).Pluck("status", &status).Error)
	assert.Equal(t, string(enums.IngredientStatusAvailable), status)

	// removed from every store list, not just the purchased one
	var count int64
	require.NoError(t, db.Table("shopping_lists").Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCompletePurchaseItemFailuresAreIsolated(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, _, _ := newListService(t, db)
	ctx := context.Background()

	store := seedStore(t, db, "StoreA")
	queso := seedIngredient(t, db, "Queso", nil)
	userID := uuid.New()

	_, err := svc.AddToStore(ctx, userID, queso, store, 1, nil)
	require.NoError(t, err)

	items := []PurchaseItem{
		{IngredientID: queso},
		{IngredientID: uuid.Nil}, // invalid entry fails alone
	}
	result, err := svc.CompletePurchase(ctx, userID, store, items)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Outcomes, 2)
	assert.True(t, result.Outcomes[0].OK)
	assert.False(t, result.Outcomes[1].OK)
}

func TestListByStoreProjection(t *testing.T) {
	db := setupListTestDB(t)
	svc, _, priceRepo, _ := newListService(t, db)
	ctx := context.Background()

	store := seedStore(t, db, "StoreA")
	urgente := enums.IngredientStatusUrgent
	pollo := seedIngredient(t, db, "Pollo", &urgente)
	userID := uuid.New()

	current := decimal.RequireFromString("5.50")
	require.NoError(t, priceRepo.Upsert(ctx, pollo, store, decimal.NullDecimal{Decimal: current, Valid: true}, true))

	snapshot := decimal.RequireFromString("5.00")
	_, err := svc.AddToStore(ctx, userID, pollo, store, 2, &snapshot)
	require.NoError(t, err)

	rows, err := svc.ListByStore(ctx, userID, store)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, pollo, row.IngredientID)
	assert.Equal(t, "Pollo", row.IngredientName)
	require.NotNil(t, row.IngredientStatus)
	assert.Equal(t, string(enums.IngredientStatusUrgent), *row.IngredientStatus)
	assert.Equal(t, 2, row.Amount)
	require.NotNil(t, row.PriceSnapshot)
	assert.True(t, row.PriceSnapshot.Equal(snapshot))
	require.NotNil(t, row.CurrentPrice)
	assert.True(t, row.CurrentPrice.Equal(current))
	require.NotNil(t, row.Available)
	assert.True(t, *row.Available)
}
