package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a physical shop the user buys from. Stores are shared reference
// data across the deployment.
type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:stores_name_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Store) TableName() string { return "stores" }
