package shoppinglist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
)

// Repository encapsulates shopping-list membership persistence. Rows are
// unique per (user, store, ingredient); duplicate writes resolve by upsert.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a shopping list repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert adds one membership row, ignoring duplicates. Reports whether the
// row was actually inserted.
func (r *Repository) Insert(ctx context.Context, item *models.ShoppingListItem) (bool, error) {
	if item == nil {
		return false, gorm.ErrInvalidValue
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Amount < 1 {
		item.Amount = 1
	}

	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Exec(`INSERT INTO shopping_lists (id, user_id, store_id, ingredient_id, amount, price, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, store_id, ingredient_id) DO NOTHING`,
			item.ID, item.UserID, item.StoreID, item.IngredientID, item.Amount, item.Price, now, now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Upsert writes the membership row, overwriting amount and price snapshot on
// conflict.
func (r *Repository) Upsert(ctx context.Context, item *models.ShoppingListItem) (*models.ShoppingListItem, error) {
	if item == nil {
		return nil, gorm.ErrInvalidValue
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Amount < 1 {
		item.Amount = 1
	}

	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO shopping_lists (id, user_id, store_id, ingredient_id, amount, price, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, store_id, ingredient_id) DO UPDATE SET amount = excluded.amount, price = excluded.price, updated_at = excluded.updated_at`,
			item.ID, item.UserID, item.StoreID, item.IngredientID, item.Amount, item.Price, now, now).
		Error
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, item.UserID, item.StoreID, item.IngredientID)
}

// Find loads the row for the exact (user, store, ingredient) tuple.
func (r *Repository) Find(ctx context.Context, userID, storeID, ingredientID uuid.UUID) (*models.ShoppingListItem, error) {
	var item models.ShoppingListItem
	err := r.db.WithContext(ctx).
		First(&item, "user_id = ? AND store_id = ? AND ingredient_id = ?", userID, storeID, ingredientID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// StoreIDsWithItem returns the stores where the user already holds the
// ingredient on a list.
func (r *Repository) StoreIDsWithItem(ctx context.Context, userID, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).
		Pluck("store_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IngredientIDsOnList returns the distinct ingredients anywhere on the user's
// lists. The plan cascade uses this as its point-in-time snapshot.
func (r *Repository) IngredientIDsOnList(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Distinct("ingredient_id").
		Where("user_id = ?", userID).
		Pluck("ingredient_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Remove deletes membership rows. A nil storeID removes the ingredient from
// every store list the user has.
func (r *Repository) Remove(ctx context.Context, userID, ingredientID uuid.UUID, storeID *uuid.UUID) error {
	if userID == uuid.Nil || ingredientID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID)
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}
	return query.Delete(&models.ShoppingListItem{}).Error
}

// RemoveForIngredient deletes every membership row for the ingredient across
// all users. Used by catalog deletion.
func (r *Repository) RemoveForIngredient(ctx context.Context, ingredientID uuid.UUID) error {
	if ingredientID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Delete(&models.ShoppingListItem{}).
		Error
}

// AdjustAmount applies delta with a floor of 1. The clamp happens in SQL so
// concurrent adjustments cannot drive the amount below the floor.
func (r *Repository) AdjustAmount(ctx context.Context, userID, storeID, ingredientID uuid.UUID, delta int) (*models.ShoppingListItem, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Exec(`UPDATE shopping_lists
SET amount = CASE WHEN amount + ? < 1 THEN 1 ELSE amount + ? END, updated_at = ?
WHERE user_id = ? AND store_id = ? AND ingredient_id = ?`,
			delta, delta, now, userID, storeID, ingredientID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Find(ctx, userID, storeID, ingredientID)
}

// ListByStore projects the user's list for one store joined with catalog and
// ledger data. The flattened view is computed at read time, never stored.
func (r *Repository) ListByStore(ctx context.Context, userID, storeID uuid.UUID) ([]ListRowDTO, error) {
	var records []listRowRecord
	err := r.db.WithContext(ctx).
		Table("shopping_lists sl").
		Select(`sl.id AS item_id,
sl.ingredient_id,
i.name AS ingredient_name,
i.status AS ingredient_status,
sl.amount,
sl.price AS price_snapshot,
ip.price AS current_price,
ip.available AS available,
sl.created_at AS added_at`).
		Joins("JOIN ingredients i ON i.id = sl.ingredient_id").
		Joins("LEFT JOIN ingredient_prices ip ON ip.ingredient_id = sl.ingredient_id AND ip.store_id = sl.store_id").
		Where("sl.user_id = ? AND sl.store_id = ?", userID, storeID).
		Order("i.name ASC").
		Scan(&records).
		Error
	if err != nil {
		return nil, err
	}

	rows := make([]ListRowDTO, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.toDTO())
	}
	return rows, nil
}

type listRowRecord struct {
	ItemID           uuid.UUID           `gorm:"column:item_id"`
	IngredientID     uuid.UUID           `gorm:"column:ingredient_id"`
	IngredientName   string              `gorm:"column:ingredient_name"`
	IngredientStatus *string             `gorm:"column:ingredient_status"`
	Amount           int                 `gorm:"column:amount"`
	PriceSnapshot    decimal.NullDecimal `gorm:"column:price_snapshot"`
	CurrentPrice     decimal.NullDecimal `gorm:"column:current_price"`
	Available        *bool               `gorm:"column:available"`
	AddedAt          time.Time           `gorm:"column:added_at"`
}

func (r listRowRecord) toDTO() ListRowDTO {
	return ListRowDTO{
		ItemID:           r.ItemID,
		IngredientID:     r.IngredientID,
		IngredientName:   r.IngredientName,
		IngredientStatus: r.IngredientStatus,
		Amount:           r.Amount,
		PriceSnapshot:    nullDecimalPtr(r.PriceSnapshot),
		CurrentPrice:     nullDecimalPtr(r.CurrentPrice),
		Available:        r.Available,
		AddedAt:          r.AddedAt,
	}
}

func nullDecimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	v := value.Decimal
	return &v
}

// IsNotFound reports whether err represents a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
