package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/despensa-app/despensa-backend/pkg/enums"
)

// Ingredient is the catalog entry everything else hangs off: price records,
// shopping list rows and recipe compositions all reference it. The catalog is
// shared by every user of a deployment.
type Ingredient struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string                  `gorm:"column:name;not null;uniqueIndex:ingredients_name_key"`
	Type            string                  `gorm:"column:type"`
	Rating          int16                   `gorm:"column:rating;not null;default:0"`
	Status          *enums.IngredientStatus `gorm:"column:status;type:ingredient_status"`
	BrandID         *uuid.UUID              `gorm:"column:brand_id;type:uuid"`
	FavoriteStoreID *uuid.UUID              `gorm:"column:favorite_store_id;type:uuid"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Ingredient) TableName() string { return "ingredients" }

// RatingHalfSteps converts the stored small-int (0-10) back to the 0-5
// half-step scale the clients render.
func (i Ingredient) RatingHalfSteps() float64 {
	return float64(i.Rating) / 2
}
