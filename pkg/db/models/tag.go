package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag labels recipes. Names are matched case-sensitively and minted on demand.
type Tag struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:tags_name_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Tag) TableName() string { return "tags" }
