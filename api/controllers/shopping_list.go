package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/despensa-app/despensa-backend/api/middleware"
	"github.com/despensa-app/despensa-backend/api/responses"
	"github.com/despensa-app/despensa-backend/api/validators"
	"github.com/despensa-app/despensa-backend/internal/shoppinglist"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
)

func callerID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

// ShoppingListByStore returns the caller's list for one store with live
// availability and price columns joined in.
func ShoppingListByStore(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping list service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByStore(r.Context(), userID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type listItemRequest struct {
	IngredientID uuid.UUID        `json:"ingredient_id" validate:"required"`
	StoreID      uuid.UUID        `json:"store_id" validate:"required"`
	Amount       int              `json:"amount,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

// ShoppingListAddItem puts an ingredient on one store list. Unavailable
// pairs are refused silently with an empty body.
func ShoppingListAddItem(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping list service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload listItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddToStore(r.Context(), userID, payload.IngredientID, payload.StoreID, payload.Amount, payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if item == nil {
			responses.WriteSuccess(w, map[string]string{"status": "skipped"})
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

type cascadeRequest struct {
	IngredientID uuid.UUID `json:"ingredient_id" validate:"required"`
}

// ShoppingListCascade adds the ingredient to every store list where it is
// not unavailable and not already present.
func ShoppingListCascade(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping list service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cascadeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.AddToAllStores(r.Context(), userID, payload.IngredientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"created": created,
			"count":   len(created),
		})
	}
}

type adjustAmountRequest struct {
	IngredientID uuid.UUID `json:"ingredient_id" validate:"required"`
	StoreID      uuid.UUID `json:"store_id" validate:"required"`
	Delta        int       `json:"delta" validate:"required"`
}

// ShoppingListAdjustAmount nudges a row's amount by a signed delta, never
// below one.
func ShoppingListAdjustAmount(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping list service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustAmountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AdjustAmount(r.Context(), userID, payload.StoreID, payload.IngredientID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type removeItemRequest struct {
	IngredientID uuid.UUID  `json:"ingredient_id" validate:"required"`
	StoreID      *uuid.UUID `json:"store_id,omitempty"`
}

// ShoppingListRemoveItem drops the ingredient from one store list, or from
// every list when no store is given.
func ShoppingListRemoveItem(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping list service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload removeItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), userID, payload.IngredientID, payload.StoreID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

type purchaseItemRequest struct {
	IngredientID uuid.UUID        `json:"ingredient_id" validate:"required"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

type completePurchaseRequest struct {
	Items []purchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ShoppingListCompletePurchase closes out a store visit: each bought item is
// recorded as available at its paid price, flipped to in stock, and cleared
// from every list. Item failures are reported in the body, not as an error.
func ShoppingListCompletePurchase(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping list service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload completePurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]shoppinglist.PurchaseItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, shoppinglist.PurchaseItem{IngredientID: item.IngredientID, Price: item.Price})
		}

		result, err := svc.CompletePurchase(r.Context(), userID, storeID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
