package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
	"github.com/despensa-app/despensa-backend/pkg/enums"
	"github.com/despensa-app/despensa-backend/pkg/pagination"
)

// Repository encapsulates catalog persistence for ingredients.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateIngredient inserts a catalog entry.
func (r *Repository) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	if ingredient == nil {
		return gorm.ErrInvalidValue
	}
	if ingredient.ID == uuid.Nil {
		ingredient.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(ingredient).Error
}

// FindIngredientByID loads an ingredient by primary key.
func (r *Repository) FindIngredientByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// FindIngredientByName matches the exact catalog name.
func (r *Repository) FindIngredientByName(ctx context.Context, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// FindOrCreateIngredientByName resolves an ingredient by exact name, minting
// it when absent. Implemented as a conflict-resolving upsert so two recipes
// referencing the same new name cannot race into duplicates.
func (r *Repository) FindOrCreateIngredientByName(ctx context.Context, name string) (*models.Ingredient, error) {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO ingredients (id, name, rating, created_at, updated_at)
VALUES (?, ?, 0, ?, ?)
ON CONFLICT (name) DO NOTHING`, uuid.New(), name, now, now).
		Error
	if err != nil {
		return nil, err
	}
	return r.FindIngredientByName(ctx, name)
}

// UpdateIngredient persists the full mutable field set.
func (r *Repository) UpdateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	if ingredient == nil || ingredient.ID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ?", ingredient.ID).
		Updates(map[string]any{
			"name":              ingredient.Name,
			"type":              ingredient.Type,
			"rating":            ingredient.Rating,
			"status":            ingredient.Status,
			"brand_id":          ingredient.BrandID,
			"favorite_store_id": ingredient.FavoriteStoreID,
			"updated_at":        time.Now().UTC(),
		}).
		Error
}

// SetStatus updates only the status flag. Global: visible to all users and
// every store view.
func (r *Repository) SetStatus(ctx context.Context, ingredientID uuid.UUID, status enums.IngredientStatus) error {
	if ingredientID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ?", ingredientID).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).
		Error
}

// DeleteIngredient removes the catalog row. Price rows cascade via FK.
func (r *Repository) DeleteIngredient(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Ingredient{}, "id = ?", id).Error
}

// CountRecipeReferences reports how many recipes use the ingredient.
func (r *Repository) CountRecipeReferences(ctx context.Context, ingredientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Where("ingredient_id = ?", ingredientID).
		Count(&count).
		Error
	return count, err
}

// ListIngredients returns a cursor page ordered by creation time descending.
func (r *Repository) ListIngredients(ctx context.Context, cursor string, limit int) ([]models.Ingredient, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.Ingredient{})
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.Ingredient
	if err := query.Find(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return records, nextCursor, nil
}
