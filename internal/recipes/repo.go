package recipes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
	"github.com/despensa-app/despensa-backend/pkg/pagination"
)

// Repository persists recipes and their composition tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a recipe repository over the given gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *Repository) Update(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(map[string]any{
			"name":         recipe.Name,
			"type":         recipe.Type,
			"rating":       recipe.Rating,
			"instructions": recipe.Instructions,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// FindForUser loads a recipe scoped to its owner.
func (r *Repository) FindForUser(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recipeID, userID).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Delete removes the recipe and its composition rows. Catalog ingredients
// referenced by the recipe are untouched.
func (r *Repository) Delete(ctx context.Context, recipeID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeStep{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", recipeID).Delete(&models.Recipe{}).Error
	})
}

// ReplaceIngredients swaps the recipe's ingredient rows for the given set.
func (r *Repository) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, rows []models.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].ID = uuid.New()
			rows[i].RecipeID = recipeID
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// ReplaceTags swaps the recipe's tag links for the given tag ids.
func (r *Repository) ReplaceTags(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		rows := make([]models.RecipeTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			rows = append(rows, models.RecipeTag{ID: uuid.New(), RecipeID: recipeID, TagID: tagID})
		}
		return tx.Create(&rows).Error
	})
}

// ReplaceSteps rewrites the step list. Num is assigned densely from array
// order, so removing a middle step renumbers everything after it.
func (r *Repository) ReplaceSteps(ctx context.Context, recipeID uuid.UUID, texts []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeStep{}).Error; err != nil {
			return err
		}
		if len(texts) == 0 {
			return nil
		}
		rows := make([]models.RecipeStep, 0, len(texts))
		for i, text := range texts {
			rows = append(rows, models.RecipeStep{
				ID:       uuid.New(),
				RecipeID: recipeID,
				Num:      i + 1,
				Text:     text,
			})
		}
		return tx.Create(&rows).Error
	})
}

// ListByUser pages through a user's recipes, most recent first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Recipe, string, error) {
	pageSize := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	if parsed != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			parsed.CreatedAt, parsed.CreatedAt, parsed.ID,
		)
	}

	var records []models.Recipe
	if err := query.Find(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > pageSize {
		records = records[:pageSize]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return records, nextCursor, nil
}

type ingredientRow struct {
	IngredientID uuid.UUID           `gorm:"column:ingredient_id"`
	Name         string              `gorm:"column:name"`
	Status       *string             `gorm:"column:status"`
	Quantity     decimal.NullDecimal `gorm:"column:quantity"`
	Unit         *string             `gorm:"column:unit"`
}

// ListIngredients returns the flattened ingredient rows for a recipe.
func (r *Repository) ListIngredients(ctx context.Context, recipeID uuid.UUID) ([]RecipeIngredientDTO, error) {
	var rows []ingredientRow
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("recipe_ingredients.ingredient_id, ingredients.name, ingredients.status, recipe_ingredients.quantity, recipe_ingredients.unit").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id = ?", recipeID).
		Order("ingredients.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dtos := make([]RecipeIngredientDTO, 0, len(rows))
	for _, row := range rows {
		dto := RecipeIngredientDTO{
			IngredientID: row.IngredientID,
			Name:         row.Name,
			Status:       row.Status,
			Unit:         row.Unit,
		}
		if row.Quantity.Valid {
			quantity := row.Quantity.Decimal
			dto.Quantity = &quantity
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// ListTagNames returns the recipe's tag names in alphabetical order.
func (r *Repository) ListTagNames(ctx context.Context, recipeID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("recipe_tags").
		Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
		Where("recipe_tags.recipe_id = ?", recipeID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	return names, err
}

// ListStepTexts returns the step texts ordered by their sequence number.
func (r *Repository) ListStepTexts(ctx context.Context, recipeID uuid.UUID) ([]string, error) {
	var texts []string
	err := r.db.WithContext(ctx).
		Model(&models.RecipeStep{}).
		Where("recipe_id = ?", recipeID).
		Order("num ASC").
		Pluck("text", &texts).Error
	return texts, err
}

// IngredientIDsForRecipe returns the recipe's ingredient ids. Used by the
// weekly plan cascade.
func (r *Repository) IngredientIDsForRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", recipeID).
		Pluck("ingredient_id", &ids).Error
	return ids, err
}
