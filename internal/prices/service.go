package prices

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
)

// ListRemover removes shopping-list membership rows. Implemented by the
// shopping list repository; declared here so the ledger does not import it.
type ListRemover interface {
	Remove(ctx context.Context, userID, ingredientID uuid.UUID, storeID *uuid.UUID) error
}

// ServiceParams groups dependencies for the price ledger service.
type ServiceParams struct {
	PriceRepo   *Repository
	ListRemover ListRemover
	Logger      *logger.Logger
}

// Service exposes the price ledger contract.
type Service interface {
	SetPrice(ctx context.Context, ingredientID, storeID uuid.UUID, price *decimal.Decimal, available bool) error
	MarkUnavailable(ctx context.Context, userID, ingredientID, storeID uuid.UUID) error
	MinAvailablePrice(ctx context.Context, ingredientID uuid.UUID) (decimal.Decimal, bool, error)
	ListForIngredient(ctx context.Context, ingredientID uuid.UUID) ([]models.PriceRecord, error)
}

type service struct {
	priceRepo   *Repository
	listRemover ListRemover
	logg        *logger.Logger
}

// NewService builds a price ledger service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.PriceRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price repo is required")
	}
	if params.ListRemover == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list remover is required")
	}
	return &service{
		priceRepo:   params.PriceRepo,
		listRemover: params.ListRemover,
		logg:        params.Logger,
	}, nil
}

// SetPrice is a full-overwrite upsert keyed by (ingredient, store).
func (s *service) SetPrice(ctx context.Context, ingredientID, storeID uuid.UUID, price *decimal.Decimal, available bool) error {
	if ingredientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if price != nil && price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	value := decimal.NullDecimal{}
	if price != nil {
		value = decimal.NullDecimal{Decimal: *price, Valid: true}
	}
	if err := s.priceRepo.Upsert(ctx, ingredientID, storeID, value, available); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set price")
	}
	return nil
}

// MarkUnavailable flips the availability flag and drops the caller's list row
// for that store: an unavailable ingredient has no business staying on the
// list for the store that cannot sell it.
func (s *service) MarkUnavailable(ctx context.Context, userID, ingredientID, storeID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if ingredientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	if err := s.priceRepo.MarkUnavailable(ctx, ingredientID, storeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark unavailable")
	}

	if err := s.listRemover.Remove(ctx, userID, ingredientID, &storeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove list row")
	}

	if s.logg != nil {
		ctx = s.logg.WithIngredientID(ctx, ingredientID.String())
		ctx = s.logg.WithStoreID(ctx, storeID.String())
		s.logg.Info(ctx, "ingredient marked unavailable")
	}
	return nil
}

func (s *service) MinAvailablePrice(ctx context.Context, ingredientID uuid.UUID) (decimal.Decimal, bool, error) {
	if ingredientID == uuid.Nil {
		return decimal.Decimal{}, false, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	min, found, err := s.priceRepo.MinAvailablePrice(ctx, ingredientID)
	if err != nil {
		return decimal.Decimal{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "min available price")
	}
	return min, found, nil
}

func (s *service) ListForIngredient(ctx context.Context, ingredientID uuid.UUID) ([]models.PriceRecord, error) {
	if ingredientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	records, err := s.priceRepo.ListForIngredient(ctx, ingredientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price records")
	}
	return records, nil
}
