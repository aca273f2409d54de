package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRecord tracks the last known price and availability of an ingredient at
// a store. At most one row exists per (ingredient, store); writes resolve by
// overwrite. available=false is a hard exclusion signal for list cascades, and
// the price is kept as a stale last-seen reference.
type PriceRecord struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IngredientID uuid.UUID           `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:ingredient_prices_ingredient_store_key"`
	StoreID      uuid.UUID           `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ingredient_prices_ingredient_store_key"`
	Price        decimal.NullDecimal `gorm:"column:price;type:numeric(10,2)"`
	Available    bool                `gorm:"column:available;not null;default:true"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (PriceRecord) TableName() string { return "ingredient_prices" }
