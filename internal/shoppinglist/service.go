package shoppinglist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/internal/prices"
	"github.com/despensa-app/despensa-backend/internal/stores"
	"github.com/despensa-app/despensa-backend/pkg/db/models"
	"github.com/despensa-app/despensa-backend/pkg/enums"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
	"github.com/despensa-app/despensa-backend/pkg/metrics"
)

// IngredientStatusSetter updates catalog status flags. Implemented by the
// catalog repository; declared here so close-outs do not import it.
type IngredientStatusSetter interface {
	SetStatus(ctx context.Context, ingredientID uuid.UUID, status enums.IngredientStatus) error
}

// ServiceParams groups dependencies for the list membership service.
type ServiceParams struct {
	ListRepo     *Repository
	PriceRepo    *prices.Repository
	StoreRepo    *stores.Repository
	StatusSetter IngredientStatusSetter
	Metrics      *metrics.ReconcileMetrics
	Logger       *logger.Logger
}

// Service is the list membership engine: every membership mutation funnels
// through here so the availability rules apply uniformly.
type Service interface {
	AddToAllStores(ctx context.Context, userID, ingredientID uuid.UUID) ([]models.ShoppingListItem, error)
	AddToStore(ctx context.Context, userID, ingredientID, storeID uuid.UUID, amount int, price *decimal.Decimal) (*models.ShoppingListItem, error)
	Remove(ctx context.Context, userID, ingredientID uuid.UUID, storeID *uuid.UUID) error
	AdjustAmount(ctx context.Context, userID, storeID, ingredientID uuid.UUID, delta int) (*models.ShoppingListItem, error)
	ListByStore(ctx context.Context, userID, storeID uuid.UUID) ([]ListRowDTO, error)
	CompletePurchase(ctx context.Context, userID, storeID uuid.UUID, items []PurchaseItem) (PurchaseResult, error)
}

type service struct {
	listRepo     *Repository
	priceRepo    *prices.Repository
	storeRepo    *stores.Repository
	statusSetter IngredientStatusSetter
	metrics      *metrics.ReconcileMetrics
	logg         *logger.Logger
}

// NewService builds a list membership service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ListRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list repo is required")
	}
	if params.PriceRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price repo is required")
	}
	if params.StoreRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store repo is required")
	}
	if params.StatusSetter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status setter is required")
	}
	return &service{
		listRepo:     params.ListRepo,
		priceRepo:    params.PriceRepo,
		storeRepo:    params.StoreRepo,
		statusSetter: params.StatusSetter,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// AddToAllStores fans the ingredient out to every store list, skipping stores
// where the ledger says unavailable and stores already holding the row. The
// returned slice contains only the newly created rows; an empty slice means
// the ingredient was already fully placed, which is not an error. Re-invoking
// converges: the exclusion sets are re-read on every call.
func (s *service) AddToAllStores(ctx context.Context, userID, ingredientID uuid.UUID) ([]models.ShoppingListItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if ingredientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}

	allStores, err := s.storeRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	unavailable, err := s.priceRepo.UnavailableStoreIDs(ctx, ingredientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read ledger exclusions")
	}

	existing, err := s.listRepo.StoreIDsWithItem(ctx, userID, ingredientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read membership exclusions")
	}

	excluded := make(map[uuid.UUID]struct{}, len(unavailable)+len(existing))
	for _, id := range unavailable {
		excluded[id] = struct{}{}
	}
	for _, id := range existing {
		excluded[id] = struct{}{}
	}

	created := make([]models.ShoppingListItem, 0, len(allStores))
	for _, store := range allStores {
		if _, skip := excluded[store.ID]; skip {
			continue
		}
		item := models.ShoppingListItem{
			ID:           uuid.New(),
			UserID:       userID,
			StoreID:      store.ID,
			IngredientID: ingredientID,
			Amount:       1,
		}
		inserted, err := s.listRepo.Insert(ctx, &item)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert list row")
		}
		if inserted {
			created = append(created, item)
		}
	}

	s.metrics.AddCascadeRows("add_to_all_stores", len(created))
	return created, nil
}

// AddToStore adds the ingredient to one store's list. When the ledger holds
// an unavailable record for the exact pair the add is refused with (nil, nil);
// the caller treats that as a silent no-op, matching the fan-out exclusion.
func (s *service) AddToStore(ctx context.Context, userID, ingredientID, storeID uuid.UUID, amount int, price *decimal.Decimal) (*models.ShoppingListItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if ingredientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	record, err := s.priceRepo.FindForPair(ctx, ingredientID, storeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check availability")
	}
	if record != nil && !record.Available {
		return nil, nil
	}

	snapshot := decimal.NullDecimal{}
	if price != nil {
		snapshot = decimal.NullDecimal{Decimal: *price, Valid: true}
	}
	item := &models.ShoppingListItem{
		UserID:       userID,
		StoreID:      storeID,
		IngredientID: ingredientID,
		Amount:       amount,
		Price:        snapshot,
	}
	saved, err := s.listRepo.Upsert(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert list row")
	}
	return saved, nil
}

// Remove deletes the membership rows; removal of a row that is not there is
// not an error.
func (s *service) Remove(ctx context.Context, userID, ingredientID uuid.UUID, storeID *uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if ingredientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	if err := s.listRepo.Remove(ctx, userID, ingredientID, storeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove list row")
	}
	return nil
}

// AdjustAmount applies the delta with the floor clamped at 1.
func (s *service) AdjustAmount(ctx context.Context, userID, storeID, ingredientID uuid.UUID, delta int) (*models.ShoppingListItem, error) {
	if userID == uuid.Nil || storeID == uuid.Nil || ingredientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user, store and ingredient ids are required")
	}
	item, err := s.listRepo.AdjustAmount(ctx, userID, storeID, ingredientID, delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "list row not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust amount")
	}
	return item, nil
}

func (s *service) ListByStore(ctx context.Context, userID, storeID uuid.UUID) ([]ListRowDTO, error) {
	if userID == uuid.Nil || storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and store ids are required")
	}
	rows, err := s.listRepo.ListByStore(ctx, userID, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list by store")
	}
	return rows, nil
}
