package stores

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
)

// Repository encapsulates store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a store repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new store. Name collisions surface as unique violations.
func (r *Repository) Create(ctx context.Context, name string) (*models.Store, error) {
	store := &models.Store{ID: uuid.New(), Name: name}
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// List returns every store ordered by name. The store set is small, shared
// reference data; no pagination.
func (r *Repository) List(ctx context.Context) ([]models.Store, error) {
	var all []models.Store
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}
