package catalog

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/internal/prices"
	"github.com/despensa-app/despensa-backend/internal/stores"
	"github.com/despensa-app/despensa-backend/pkg/db"
	"github.com/despensa-app/despensa-backend/pkg/db/models"
	"github.com/despensa-app/despensa-backend/pkg/enums"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
)

const maxIngredientNameLen = 160

// ListStore covers the shopping-list writes the catalog needs. Implemented by
// the shopping list repository; declared here to keep the packages acyclic.
type ListStore interface {
	Insert(ctx context.Context, item *models.ShoppingListItem) (bool, error)
	RemoveForIngredient(ctx context.Context, ingredientID uuid.UUID) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	CatalogRepo *Repository
	BrandRepo   *BrandRepository
	PriceRepo   *prices.Repository
	StoreRepo   *stores.Repository
	ListStore   ListStore
	Logger      *logger.Logger
}

// Service exposes the shared catalog surface.
type Service interface {
	CreateIngredient(ctx context.Context, input IngredientInput) (*IngredientDTO, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*IngredientDTO, error)
	ListIngredients(ctx context.Context, cursor string, limit int) (IngredientPageDTO, error)
	UpdateIngredient(ctx context.Context, id uuid.UUID, input IngredientInput) (*IngredientDTO, error)
	DeleteIngredient(ctx context.Context, id uuid.UUID) error
	QuickAdd(ctx context.Context, userID uuid.UUID, name string) (*QuickAddResult, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

type service struct {
	catalogRepo *Repository
	brandRepo   *BrandRepository
	priceRepo   *prices.Repository
	storeRepo   *stores.Repository
	listStore   ListStore
	logg        *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.BrandRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand repo is required")
	}
	if params.PriceRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price repo is required")
	}
	if params.StoreRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store repo is required")
	}
	if params.ListStore == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list store is required")
	}
	return &service{
		catalogRepo: params.CatalogRepo,
		brandRepo:   params.BrandRepo,
		priceRepo:   params.PriceRepo,
		storeRepo:   params.StoreRepo,
		listStore:   params.ListStore,
		logg:        params.Logger,
	}, nil
}

func (s *service) CreateIngredient(ctx context.Context, input IngredientInput) (*IngredientDTO, error) {
	ingredient, err := s.buildIngredient(ctx, &models.Ingredient{}, input)
	if err != nil {
		return nil, err
	}

	if err := s.catalogRepo.CreateIngredient(ctx, ingredient); err != nil {
		if db.IsUniqueViolation(err, "ingredients_name_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ingredient already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ingredient")
	}

	if err := s.applyPriceEntries(ctx, ingredient.ID, input); err != nil {
		return nil, err
	}
	return s.project(ctx, ingredient)
}

func (s *service) GetIngredient(ctx context.Context, id uuid.UUID) (*IngredientDTO, error) {
	ingredient, err := s.loadIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, ingredient)
}

func (s *service) ListIngredients(ctx context.Context, cursor string, limit int) (IngredientPageDTO, error) {
	records, nextCursor, err := s.catalogRepo.ListIngredients(ctx, cursor, limit)
	if err != nil {
		return IngredientPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}

	items := make([]IngredientDTO, 0, len(records))
	for i := range records {
		dto, err := s.project(ctx, &records[i])
		if err != nil {
			return IngredientPageDTO{}, err
		}
		items = append(items, *dto)
	}
	return IngredientPageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) UpdateIngredient(ctx context.Context, id uuid.UUID, input IngredientInput) (*IngredientDTO, error) {
	existing, err := s.loadIngredient(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildIngredient(ctx, existing, input)
	if err != nil {
		return nil, err
	}
	if err := s.catalogRepo.UpdateIngredient(ctx, updated); err != nil {
		if db.IsUniqueViolation(err, "ingredients_name_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ingredient name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ingredient")
	}

	if err := s.applyPriceEntries(ctx, updated.ID, input); err != nil {
		return nil, err
	}
	return s.project(ctx, updated)
}

// DeleteIngredient refuses while any recipe still references the ingredient,
// and clears list membership before dropping the catalog row.
func (s *service) DeleteIngredient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadIngredient(ctx, id); err != nil {
		return err
	}

	refs, err := s.catalogRepo.CountRecipeReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count recipe references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "ingredient is referenced by recipes").
			WithDetails(map[string]any{"recipe_count": refs})
	}

	if err := s.listStore.RemoveForIngredient(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear list membership")
	}
	if err := s.catalogRepo.DeleteIngredient(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ingredient")
	}
	return nil
}

// QuickAdd is the shopping-list shortcut: mint the ingredient as missing,
// mark it unavailable everywhere so the cascade never auto-adds it, and put
// it on every store list of the caller explicitly.
func (s *service) QuickAdd(ctx context.Context, userID uuid.UUID, name string) (*QuickAddResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")
	}
	if len(name) > maxIngredientNameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is too long")
	}

	ingredient, err := s.catalogRepo.FindOrCreateIngredientByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve ingredient")
	}
	if err := s.catalogRepo.SetStatus(ctx, ingredient.ID, enums.IngredientStatusMissing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag ingredient missing")
	}

	allStores, err := s.storeRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	rows := 0
	for _, store := range allStores {
		if err := s.priceRepo.MarkUnavailable(ctx, ingredient.ID, store.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed unavailable record")
		}
		inserted, err := s.listStore.Insert(ctx, &models.ShoppingListItem{
			UserID:       userID,
			StoreID:      store.ID,
			IngredientID: ingredient.ID,
			Amount:       1,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert list row")
		}
		if inserted {
			rows++
		}
	}

	if s.logg != nil {
		ctx = s.logg.WithIngredientID(ctx, ingredient.ID.String())
		s.logg.Info(ctx, "quick-added ingredient to all store lists")
	}

	refreshed, err := s.loadIngredient(ctx, ingredient.ID)
	if err != nil {
		return nil, err
	}
	dto, err := s.project(ctx, refreshed)
	if err != nil {
		return nil, err
	}
	return &QuickAddResult{Ingredient: *dto, ListRows: rows}, nil
}

func (s *service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands, err := s.brandRepo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	return brands, nil
}

func (s *service) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.brandRepo.ListTags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	return tags, nil
}

func (s *service) loadIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	ingredient, err := s.catalogRepo.FindIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ingredient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	return ingredient, nil
}

// buildIngredient validates the input and applies it over base, resolving the
// brand reference on the way.
func (s *service) buildIngredient(ctx context.Context, base *models.Ingredient, input IngredientInput) (*models.Ingredient, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")
	}
	if len(input.Name) > maxIngredientNameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is too long")
	}

	rating, err := ratingToHalfSteps(input.Rating)
	if err != nil {
		return nil, err
	}

	base.Name = input.Name
	base.Type = input.Type
	base.Rating = rating

	base.Status = nil
	if input.Status != nil && *input.Status != "" {
		status, err := enums.ParseIngredientStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ingredient status")
		}
		base.Status = &status
	}

	base.BrandID = nil
	if input.BrandName != nil && *input.BrandName != "" {
		brand, err := s.brandRepo.UpsertBrandByName(ctx, *input.BrandName)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve brand")
		}
		base.BrandID = &brand.ID
	}

	base.FavoriteStoreID = nil
	if input.FavoriteStoreID != nil && *input.FavoriteStoreID != uuid.Nil {
		if _, err := s.storeRepo.FindByID(ctx, *input.FavoriteStoreID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "favorite store not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load favorite store")
		}
		base.FavoriteStoreID = input.FavoriteStoreID
	}

	return base, nil
}

// applyPriceEntries pushes the form's per-store entries into the ledger: kept
// stores become available with the given price, removed stores flip to
// unavailable keeping their stale price.
func (s *service) applyPriceEntries(ctx context.Context, ingredientID uuid.UUID, input IngredientInput) error {
	for _, entry := range input.Prices {
		if entry.StoreID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "price entry store id is required")
		}
		value := decimal.NullDecimal{}
		if entry.Price != nil {
			if entry.Price.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
			}
			value = decimal.NullDecimal{Decimal: *entry.Price, Valid: true}
		}
		if err := s.priceRepo.Upsert(ctx, ingredientID, entry.StoreID, value, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert price entry")
		}
	}
	for _, storeID := range input.RemovedStoreIDs {
		if storeID == uuid.Nil {
			continue
		}
		if err := s.priceRepo.MarkUnavailable(ctx, ingredientID, storeID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark removed store unavailable")
		}
	}
	return nil
}

func (s *service) project(ctx context.Context, ingredient *models.Ingredient) (*IngredientDTO, error) {
	dto := &IngredientDTO{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		Type:            ingredient.Type,
		Rating:          ingredient.RatingHalfSteps(),
		FavoriteStoreID: ingredient.FavoriteStoreID,
		CreatedAt:       ingredient.CreatedAt,
	}
	if ingredient.Status != nil {
		status := string(*ingredient.Status)
		dto.Status = &status
	}

	if ingredient.BrandID != nil {
		brand, err := s.brandRepo.FindBrandByID(ctx, *ingredient.BrandID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
		}
		if brand != nil {
			dto.Brand = &BrandDTO{ID: brand.ID, Name: brand.Name}
		}
	}

	records, err := s.priceRepo.ListForIngredient(ctx, ingredient.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price records")
	}
	for _, record := range records {
		entry := PriceEntryDTO{StoreID: record.StoreID, Available: record.Available}
		if record.Price.Valid {
			price := record.Price.Decimal
			entry.Price = &price
		}
		dto.Prices = append(dto.Prices, entry)
	}

	min, found, err := s.priceRepo.MinAvailablePrice(ctx, ingredient.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "min available price")
	}
	if found {
		dto.MinPrice = &min
	}
	return dto, nil
}

// ratingToHalfSteps validates the 0-5 half-step scale and converts it to the
// stored small-int.
func ratingToHalfSteps(rating float64) (int16, error) {
	if rating < 0 || rating > 5 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	doubled := rating * 2
	if math.Abs(doubled-math.Round(doubled)) > 1e-9 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "rating must be in half steps")
	}
	return int16(math.Round(doubled)), nil
}
