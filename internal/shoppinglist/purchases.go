package shoppinglist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/despensa-app/despensa-backend/pkg/enums"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
)

// CompletePurchase closes out a shopping trip. Each bought item is processed
// independently: the ledger learns the paid price and availability, the
// ingredient goes back to "Disponible" catalog-wide, and the user's list rows
// for that ingredient disappear from every store. A failing item is recorded
// and skipped; earlier items stay processed.
func (s *service) CompletePurchase(ctx context.Context, userID, storeID uuid.UUID, items []PurchaseItem) (PurchaseResult, error) {
	if userID == uuid.Nil {
		return PurchaseResult{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if storeID == uuid.Nil {
		return PurchaseResult{}, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if len(items) == 0 {
		return PurchaseResult{}, pkgerrors.New(pkgerrors.CodeValidation, "no items to close out")
	}

	start := time.Now()
	result := PurchaseResult{Outcomes: make([]PurchaseOutcome, 0, len(items))}
	var errs error

	for _, item := range items {
		if err := s.closeOutItem(ctx, userID, storeID, item); err != nil {
			result.Failed++
			result.Outcomes = append(result.Outcomes, PurchaseOutcome{
				IngredientID: item.IngredientID,
				Error:        err.Error(),
			})
			errs = multierr.Append(errs, err)
			s.metrics.IncCascadeFailure("complete_purchase")
			if s.logg != nil {
				itemCtx := s.logg.WithIngredientID(ctx, item.IngredientID.String())
				s.logg.Warn(itemCtx, "purchase close-out item failed")
			}
			continue
		}
		result.Processed++
		result.Outcomes = append(result.Outcomes, PurchaseOutcome{IngredientID: item.IngredientID, OK: true})
	}

	outcome := "ok"
	if result.Failed > 0 {
		outcome = "partial"
	}
	s.metrics.ObservePurchase(outcome, time.Since(start))

	if s.logg != nil {
		ctx = s.logg.WithStoreID(ctx, storeID.String())
		ctx = s.logg.WithFields(ctx, map[string]any{
			"processed": result.Processed,
			"failed":    result.Failed,
		})
		if errs != nil {
			s.logg.Error(ctx, "purchase close-out completed with failures", errs)
		} else {
			s.logg.Info(ctx, "purchase close-out complete")
		}
	}

	// Item failures never fail the batch; callers read the counts.
	return result, nil
}

func (s *service) closeOutItem(ctx context.Context, userID, storeID uuid.UUID, item PurchaseItem) error {
	if item.IngredientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}

	price := decimal.NullDecimal{}
	if item.Price != nil {
		price = decimal.NullDecimal{Decimal: *item.Price, Valid: true}
	}
	if err := s.priceRepo.Upsert(ctx, item.IngredientID, storeID, price, true); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ledger")
	}

	if err := s.statusSetter.SetStatus(ctx, item.IngredientID, enums.IngredientStatusAvailable); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ingredient status")
	}

	// Across ALL stores: buying it once takes it off every list.
	if err := s.listRepo.Remove(ctx, userID, item.IngredientID, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear list rows")
	}
	return nil
}
