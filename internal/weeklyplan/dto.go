package weeklyplan

import (
	"time"

	"github.com/google/uuid"
)

// PlanItemDTO is one scheduled (or pending) recipe on the week view.
type PlanItemDTO struct {
	ID         uuid.UUID  `json:"id"`
	RecipeID   uuid.UUID  `json:"recipeId"`
	RecipeName string     `json:"recipeName"`
	Date       *time.Time `json:"date"`
	Slot       *string    `json:"slot"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CascadeOutcome reports the shopping-list fan-out for one urgent ingredient.
type CascadeOutcome struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	RowsAdded    int       `json:"rowsAdded"`
	OK           bool      `json:"ok"`
	Error        string    `json:"error,omitempty"`
}

// AssignResult is the outcome of putting a recipe on the plan: the plan row
// plus whatever the urgent-ingredient cascade managed to add.
type AssignResult struct {
	Item          PlanItemDTO      `json:"item"`
	CascadeAdded  int              `json:"cascadeAdded"`
	CascadeFailed int              `json:"cascadeFailed"`
	Outcomes      []CascadeOutcome `json:"outcomes,omitempty"`
}
