package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
)

// BrandRepository handles brand and tag lookup-or-create. Both are shared
// reference data minted on demand by name.
type BrandRepository struct {
	db *gorm.DB
}

// NewBrandRepository constructs a brand repository bound to the provided gorm DB.
func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// UpsertBrandByName resolves a brand case-insensitively, creating it when
// absent. A single conflict-resolving upsert, not read-then-write: the race
// between two clients minting "Hacendado" and "hacendado" collapses into one
// row keyed on lower(name).
func (r *BrandRepository) UpsertBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	if name == "" {
		return nil, gorm.ErrInvalidValue
	}

	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO brands (id, name, created_at) VALUES (?, ?, ?)
ON CONFLICT (lower(name)) DO NOTHING`, uuid.New(), name, time.Now().UTC()).
		Error
	if err != nil {
		return nil, err
	}

	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "lower(name) = lower(?)", name).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindBrandByID loads a brand by primary key.
func (r *BrandRepository) FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// ListBrands returns every brand ordered by name.
func (r *BrandRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// UpsertTagByName resolves a tag by exact, case-sensitive name, creating it
// when absent.
func (r *BrandRepository) UpsertTagByName(ctx context.Context, name string) (*models.Tag, error) {
	if name == "" {
		return nil, gorm.ErrInvalidValue
	}

	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO NOTHING`, uuid.New(), name, time.Now().UTC()).
		Error
	if err != nil {
		return nil, err
	}

	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListTags returns every tag ordered by name.
func (r *BrandRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
