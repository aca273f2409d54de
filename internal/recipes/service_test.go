package recipes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/internal/catalog"
)

func setupRecipeTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
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
		`CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS recipes (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  type TEXT,
  rating INTEGER NOT NULL DEFAULT 0,
  instructions TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS recipe_ingredients (
  id TEXT PRIMARY KEY,
  recipe_id TEXT NOT NULL,
  ingredient_id TEXT NOT NULL,
  quantity NUMERIC,
  unit TEXT,
  UNIQUE (recipe_id, ingredient_id)
);`,
		`CREATE TABLE IF NOT EXISTS recipe_tags (
  id TEXT PRIMARY KEY,
  recipe_id TEXT NOT NULL,
  tag_id TEXT NOT NULL,
  UNIQUE (recipe_id, tag_id)
);`,
		`CREATE TABLE IF NOT EXISTS recipe_steps (
  id TEXT PRIMARY KEY,
  recipe_id TEXT NOT NULL,
  num INTEGER NOT NULL,
  text TEXT NOT NULL,
  UNIQUE (recipe_id, num)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newRecipeService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		RecipeRepo:  NewRepository(db),
		Ingredients: catalog.NewRepository(db),
		Tags:        catalog.NewBrandRepository(db),
	})
	require.NoError(t, err)
	return svc
}

func TestCreateRecipeResolvesIngredientsByName(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	quantity := decimal.RequireFromString("4")
	unit := "ud"
	dto, err := svc.CreateRecipe(ctx, userID, RecipeInput{
		Name:   "Tortilla de patatas",
		Type:   "Comida",
		Rating: 4.5,
		Ingredients: []RecipeIngredientInput{
			{Name: "Huevos", Quantity: &quantity, Unit: &unit},
			{Name: "Patata"},
		},
		Tags:  []string{"Clasico", "Huevo"},
		Steps: []string{"Pelar las patatas", "Batir los huevos", "Cuajar la tortilla"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tortilla de patatas", dto.Name)
	assert.Equal(t, 4.5, dto.Rating)
	require.Len(t, dto.Ingredients, 2)
	assert.Equal(t, []string{"Clasico", "Huevo"}, dto.Tags)
	assert.Equal(t, []string{"Pelar las patatas", "Batir los huevos", "Cuajar la tortilla"}, dto.Steps)

	// names minted catalog rows
	var count int64
	require.NoError(t, db.Table("ingredients").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateRecipeReusesExistingIngredient(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	existing, err := catalog.NewRepository(db).FindOrCreateIngredientByName(ctx, "Huevos")
	require.NoError(t, err)

	dto, err := svc.CreateRecipe(ctx, userID, RecipeInput{
		Name:        "Huevos rotos",
		Ingredients: []RecipeIngredientInput{{Name: "Huevos"}},
	})
	require.NoError(t, err)
	require.Len(t, dto.Ingredients, 1)
	assert.Equal(t, existing.ID, dto.Ingredients[0].IngredientID)
}

func TestUpdateRecipeRenumbersStepsDensely(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	dto, err := svc.CreateRecipe(ctx, userID, RecipeInput{
		Name:  "Gazpacho",
		Steps: []string{"Trocear", "Triturar", "Colar", "Enfriar"},
	})
	require.NoError(t, err)

	// drop the middle step; the rest close ranks
	updated, err := svc.UpdateRecipe(ctx, userID, dto.ID, RecipeInput{
		Name:  "Gazpacho",
		Steps: []string{"Trocear", "Colar", "Enfriar"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Trocear", "Colar", "Enfriar"}, updated.Steps)

	var nums []int
	require.NoError(t, db.Table("recipe_steps").
		Where("recipe_id = ?", dto.ID).
		Order("num ASC").
		Pluck("num", &nums).Error)
	assert.Equal(t, []int{1, 2, 3}, nums)
}

func TestUpdateRecipeReplacesCompositionWholesale(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	dto, err := svc.CreateRecipe(ctx, userID, RecipeInput{
		Name:        "Ensalada",
		Ingredients: []RecipeIngredientInput{{Name: "Lechuga"}, {Name: "Tomate"}},
		Tags:        []string{"Verde"},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRecipe(ctx, userID, dto.ID, RecipeInput{
		Name:        "Ensalada mixta",
		Ingredients: []RecipeIngredientInput{{Name: "Tomate"}, {Name: "Atun"}},
		Tags:        []string{"Verde", "Proteina"},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(updated.Ingredients))
	for _, entry := range updated.Ingredients {
		names = append(names, entry.Name)
	}
	assert.ElementsMatch(t, []string{"Tomate", "Atun"}, names)
	assert.ElementsMatch(t, []string{"Verde", "Proteina"}, updated.Tags)

	// dropped links are gone but the catalog row survives
	var count int64
	require.NoError(t, db.Table("ingredients").Where("name = ?", "Lechuga").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteRecipeKeepsCatalogIngredients(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	dto, err := svc.CreateRecipe(ctx, userID, RecipeInput{
		Name:        "Sopa",
		Ingredients: []RecipeIngredientInput{{Name: "Cebolla"}},
		Steps:       []string{"Hervir"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecipe(ctx, userID, dto.ID))

	var joins, steps, ingredients int64
	require.NoError(t, db.Table("recipe_ingredients").Where("recipe_id = ?", dto.ID).Count(&joins).Error)
	require.NoError(t, db.Table("recipe_steps").Where("recipe_id = ?", dto.ID).Count(&steps).Error)
	require.NoError(t, db.Table("ingredients").Count(&ingredients).Error)
	assert.Zero(t, joins)
	assert.Zero(t, steps)
	assert.EqualValues(t, 1, ingredients)
}

func TestRecipeOwnershipIsEnforced(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()

	dto, err := svc.CreateRecipe(ctx, uuid.New(), RecipeInput{Name: "Paella"})
	require.NoError(t, err)

	_, err = svc.GetRecipe(ctx, uuid.New(), dto.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRecipesPages(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.CreateRecipe(ctx, userID, RecipeInput{Name: name})
		require.NoError(t, err)
	}

	page, err := svc.ListRecipes(ctx, userID, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListRecipes(ctx, userID, page.NextCursor, 2)
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := setupRecipeTestDB(t)
	svc := newRecipeService(t, db)
	ctx := context.Background()

	_, err := svc.CreateRecipe(ctx, uuid.New(), RecipeInput{Name: ""})
	require.Error(t, err)

	_, err = svc.CreateRecipe(ctx, uuid.New(), RecipeInput{Name: "Pan", Rating: 3.3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "half steps")

	_, err = svc.CreateRecipe(ctx, uuid.New(), RecipeInput{Name: "Pan", Steps: []string{""}})
	require.Error(t, err)
}
