package weeklyplan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
	"github.com/despensa-app/despensa-backend/pkg/enums"
)

// Repository persists weekly plan rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a weekly plan repository over the given gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, item *models.WeeklyPlanItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// FindUnscheduled returns the user's pending (dateless) row for the recipe,
// or gorm.ErrRecordNotFound.
func (r *Repository) FindUnscheduled(ctx context.Context, userID, recipeID uuid.UUID) (*models.WeeklyPlanItem, error) {
	var item models.WeeklyPlanItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND date IS NULL", userID, recipeID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Schedule stamps a date and slot onto an existing row, converting a pending
// assignment in place instead of minting a duplicate.
func (r *Repository) Schedule(ctx context.Context, itemID uuid.UUID, date time.Time, slot *enums.MealSlot) error {
	return r.db.WithContext(ctx).
		Model(&models.WeeklyPlanItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"date":       date,
			"slot":       slot,
			"updated_at": time.Now().UTC(),
		}).Error
}

// SetSlot stamps a slot onto an existing row without touching its date.
func (r *Repository) SetSlot(ctx context.Context, itemID uuid.UUID, slot *enums.MealSlot) error {
	return r.db.WithContext(ctx).
		Model(&models.WeeklyPlanItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"slot":       slot,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *Repository) FindForUser(ctx context.Context, userID, itemID uuid.UUID) (*models.WeeklyPlanItem, error) {
	var item models.WeeklyPlanItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) Delete(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.WeeklyPlanItem{}).Error
}

type planRow struct {
	ID         uuid.UUID  `gorm:"column:id"`
	RecipeID   uuid.UUID  `gorm:"column:recipe_id"`
	RecipeName string     `gorm:"column:recipe_name"`
	Date       *time.Time `gorm:"column:date"`
	Slot       *string    `gorm:"column:slot"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

// ListForUser returns the user's plan with pending rows first, then by date.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]PlanItemDTO, error) {
	var rows []planRow
	err := r.db.WithContext(ctx).
		Table("weekly_plan_items").
		Select("weekly_plan_items.id, weekly_plan_items.recipe_id, recipes.name AS recipe_name, weekly_plan_items.date, weekly_plan_items.slot, weekly_plan_items.created_at").
		Joins("JOIN recipes ON recipes.id = weekly_plan_items.recipe_id").
		Where("weekly_plan_items.user_id = ?", userID).
		Order("weekly_plan_items.date IS NOT NULL, weekly_plan_items.date ASC, weekly_plan_items.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]PlanItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, PlanItemDTO{
			ID:         row.ID,
			RecipeID:   row.RecipeID,
			RecipeName: row.RecipeName,
			Date:       row.Date,
			Slot:       row.Slot,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

// UrgentIngredientIDs filters the given ingredient ids down to those flagged
// urgent in the catalog.
func (r *Repository) UrgentIngredientIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var urgent []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id IN ? AND status = ?", ids, enums.IngredientStatusUrgent).
		Pluck("id", &urgent).Error
	return urgent, err
}
