package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand is shared catalog data; lookups are case-insensitive on name.
type Brand struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Brand) TableName() string { return "brands" }
