package shoppinglist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListRowDTO is the per-store list projection served to the client: the
// membership row flattened with catalog and ledger data.
type ListRowDTO struct {
	ItemID           uuid.UUID        `json:"item_id"`
	IngredientID     uuid.UUID        `json:"ingredient_id"`
	IngredientName   string           `json:"ingredient_name"`
	IngredientStatus *string          `json:"ingredient_status,omitempty"`
	Amount           int              `json:"amount"`
	PriceSnapshot    *decimal.Decimal `json:"price_snapshot,omitempty"`
	CurrentPrice     *decimal.Decimal `json:"current_price,omitempty"`
	Available        *bool            `json:"available,omitempty"`
	AddedAt          time.Time        `json:"added_at"`
}

// PurchaseItem is one close-out entry: the ingredient bought and the price
// paid at the till.
type PurchaseItem struct {
	IngredientID uuid.UUID        `json:"ingredient_id"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

// PurchaseOutcome reports the fate of a single close-out entry.
type PurchaseOutcome struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	OK           bool      `json:"ok"`
	Error        string    `json:"error,omitempty"`
}

// PurchaseResult aggregates a close-out batch. Items fail independently;
// Processed counts the ones that went through.
type PurchaseResult struct {
	Processed int               `json:"processed"`
	Failed    int               `json:"failed"`
	Outcomes  []PurchaseOutcome `json:"outcomes"`
}
