package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StorePriceInput is one per-store price entry on the ingredient form.
type StorePriceInput struct {
	StoreID uuid.UUID        `json:"store_id"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

// IngredientInput carries the mutable ingredient fields plus the per-store
// price entries kept (available) and the store ids removed (unavailable).
type IngredientInput struct {
	Name            string            `json:"name"`
	Type            string            `json:"type,omitempty"`
	Rating          float64           `json:"rating"`
	Status          *string           `json:"status,omitempty"`
	BrandName       *string           `json:"brand_name,omitempty"`
	FavoriteStoreID *uuid.UUID        `json:"favorite_store_id,omitempty"`
	Prices          []StorePriceInput `json:"prices,omitempty"`
	RemovedStoreIDs []uuid.UUID       `json:"removed_store_ids,omitempty"`
}

// BrandDTO is the public brand shape.
type BrandDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PriceEntryDTO is one ledger row in an ingredient projection.
type PriceEntryDTO struct {
	StoreID   uuid.UUID        `json:"store_id"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Available bool             `json:"available"`
}

// IngredientDTO is the flattened read projection: catalog fields joined with
// the brand and the ledger, computed at read time.
type IngredientDTO struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Type            string           `json:"type,omitempty"`
	Rating          float64          `json:"rating"`
	Status          *string          `json:"status,omitempty"`
	Brand           *BrandDTO        `json:"brand,omitempty"`
	FavoriteStoreID *uuid.UUID       `json:"favorite_store_id,omitempty"`
	MinPrice        *decimal.Decimal `json:"min_price,omitempty"`
	Prices          []PriceEntryDTO  `json:"prices,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// IngredientPageDTO is a cursor page of ingredient projections.
type IngredientPageDTO struct {
	Items      []IngredientDTO `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// QuickAddResult reports what the quick-add shortcut produced.
type QuickAddResult struct {
	Ingredient IngredientDTO `json:"ingredient"`
	ListRows   int           `json:"list_rows"`
}
