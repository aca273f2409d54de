package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShoppingListItem is one membership row: ingredient X is on user U's list for
// store S. Unique per (user, store, ingredient); duplicates resolve by upsert.
// Price is a denormalized snapshot taken when the row was created.
type ShoppingListItem struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:shopping_lists_user_store_ingredient_key"`
	StoreID      uuid.UUID           `gorm:"column:store_id;type:uuid;not null;uniqueIndex:shopping_lists_user_store_ingredient_key"`
	IngredientID uuid.UUID           `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:shopping_lists_user_store_ingredient_key"`
	Amount       int                 `gorm:"column:amount;not null;default:1"`
	Price        decimal.NullDecimal `gorm:"column:price;type:numeric(10,2)"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShoppingListItem) TableName() string { return "shopping_lists" }
