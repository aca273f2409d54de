package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/despensa-app/despensa-backend/pkg/enums"
)

// WeeklyPlanItem schedules a recipe for a user. A row with a nil Date is an
// unscheduled assignment waiting for placement; at most one such row exists
// per (user, recipe) and scheduling converts it in place.
type WeeklyPlanItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:weekly_plan_items_user_id_idx"`
	RecipeID  uuid.UUID       `gorm:"column:recipe_id;type:uuid;not null"`
	Date      *time.Time      `gorm:"column:date;type:date"`
	Slot      *enums.MealSlot `gorm:"column:slot;type:meal_slot"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (WeeklyPlanItem) TableName() string { return "weekly_plan_items" }
