package recipes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeIngredientInput references a catalog ingredient either by id or by
// name. Names that do not resolve are created on the fly.
type RecipeIngredientInput struct {
	IngredientID *uuid.UUID       `json:"ingredientId"`
	Name         string           `json:"name"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Unit         *string          `json:"unit"`
}

// RecipeInput is the write shape for create and update. Composition is
// replaced wholesale on every save.
type RecipeInput struct {
	Name         string                  `json:"name"`
	Type         string                  `json:"type"`
	Rating       float64                 `json:"rating"`
	Instructions string                  `json:"instructions"`
	Ingredients  []RecipeIngredientInput `json:"ingredients"`
	Tags         []string                `json:"tags"`
	Steps        []string                `json:"steps"`
}

// RecipeIngredientDTO is the flattened per-ingredient read shape.
type RecipeIngredientDTO struct {
	IngredientID uuid.UUID        `json:"ingredientId"`
	Name         string           `json:"name"`
	Status       *string          `json:"status"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Unit         *string          `json:"unit"`
}

// RecipeDTO is the full detail projection.
type RecipeDTO struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Type         string                `json:"type"`
	Rating       float64               `json:"rating"`
	Instructions string                `json:"instructions"`
	Ingredients  []RecipeIngredientDTO `json:"ingredients"`
	Tags         []string              `json:"tags"`
	Steps        []string              `json:"steps"`
	CreatedAt    time.Time             `json:"createdAt"`
}

// RecipeSummaryDTO is the list-page row.
type RecipeSummaryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecipePageDTO is one cursor page of recipes.
type RecipePageDTO struct {
	Items      []RecipeSummaryDTO `json:"items"`
	NextCursor string             `json:"nextCursor,omitempty"`
}
