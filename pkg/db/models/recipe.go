package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recipe belongs to the user who created it. Composition lives in the join
// tables below and is projected at read time, never stored flattened.
type Recipe struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:recipes_user_id_idx"`
	Name         string    `gorm:"column:name;not null"`
	Type         string    `gorm:"column:type"`
	Rating       int16     `gorm:"column:rating;not null;default:0"`
	Instructions string    `gorm:"column:instructions"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient links a recipe to a catalog ingredient with the quantity
// used by that recipe.
type RecipeIngredient struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipeID     uuid.UUID           `gorm:"column:recipe_id;type:uuid;not null;uniqueIndex:recipe_ingredients_recipe_ingredient_key"`
	IngredientID uuid.UUID           `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:recipe_ingredients_recipe_ingredient_key"`
	Quantity     decimal.NullDecimal `gorm:"column:quantity;type:numeric(10,3)"`
	Unit         *string             `gorm:"column:unit"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// RecipeTag links a recipe to a tag.
type RecipeTag struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipeID uuid.UUID `gorm:"column:recipe_id;type:uuid;not null;uniqueIndex:recipe_tags_recipe_tag_key"`
	TagID    uuid.UUID `gorm:"column:tag_id;type:uuid;not null;uniqueIndex:recipe_tags_recipe_tag_key"`
}

func (RecipeTag) TableName() string { return "recipe_tags" }

// RecipeStep is one instruction in a recipe. Num is a dense 1-based sequence
// recomputed from array order on every save; steps have no stable identity
// across edits.
type RecipeStep struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipeID uuid.UUID `gorm:"column:recipe_id;type:uuid;not null;uniqueIndex:recipe_steps_recipe_num_key"`
	Num      int       `gorm:"column:num;not null;uniqueIndex:recipe_steps_recipe_num_key"`
	Text     string    `gorm:"column:text;not null"`
}

func (RecipeStep) TableName() string { return "recipe_steps" }
