package prices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
)

// Repository encapsulates price ledger persistence. One row per
// (ingredient, store); every write resolves conflicts by overwrite.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a price repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert overwrites the price record for the pair entirely.
func (r *Repository) Upsert(ctx context.Context, ingredientID, storeID uuid.UUID, price decimal.NullDecimal, available bool) error {
	if ingredientID == uuid.Nil || storeID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO ingredient_prices (id, ingredient_id, store_id, price, available, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (ingredient_id, store_id) DO UPDATE SET price = excluded.price, available = excluded.available, updated_at = excluded.updated_at`,
			uuid.New(), ingredientID, storeID, price, available, now, now).
		Error
}

// MarkUnavailable flips available to false, keeping the stale price as a
// last-seen reference. Inserts an empty unavailable record when the pair has
// never been priced.
func (r *Repository) MarkUnavailable(ctx context.Context, ingredientID, storeID uuid.UUID) error {
	if ingredientID == uuid.Nil || storeID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO ingredient_prices (id, ingredient_id, store_id, price, available, created_at, updated_at)
VALUES (?, ?, ?, NULL, FALSE, ?, ?)
ON CONFLICT (ingredient_id, store_id) DO UPDATE SET available = FALSE, updated_at = excluded.updated_at`,
			uuid.New(), ingredientID, storeID, now, now).
		Error
}

// FindForPair loads the single record for (ingredient, store), if any.
func (r *Repository) FindForPair(ctx context.Context, ingredientID, storeID uuid.UUID) (*models.PriceRecord, error) {
	var record models.PriceRecord
	err := r.db.WithContext(ctx).
		First(&record, "ingredient_id = ? AND store_id = ?", ingredientID, storeID).
		Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListForIngredient returns every price record for the ingredient.
func (r *Repository) ListForIngredient(ctx context.Context, ingredientID uuid.UUID) ([]models.PriceRecord, error) {
	var records []models.PriceRecord
	err := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("store_id ASC").
		Find(&records).
		Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UnavailableStoreIDs returns the stores where the ingredient is flagged
// unavailable. The membership cascade re-queries this before every fan-out.
func (r *Repository) UnavailableStoreIDs(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PriceRecord{}).
		Where("ingredient_id = ? AND available = ?", ingredientID, false).
		Pluck("store_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// MinAvailablePrice computes the minimum price over available records with a
// known price. found is false when no record qualifies.
func (r *Repository) MinAvailablePrice(ctx context.Context, ingredientID uuid.UUID) (decimal.Decimal, bool, error) {
	var result struct {
		Min decimal.NullDecimal `gorm:"column:min_price"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.PriceRecord{}).
		Select("MIN(price) AS min_price").
		Where("ingredient_id = ? AND available = ? AND price IS NOT NULL", ingredientID, true).
		Scan(&result).
		Error
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	if !result.Min.Valid {
		return decimal.Decimal{}, false, nil
	}
	return result.Min.Decimal, true, nil
}
