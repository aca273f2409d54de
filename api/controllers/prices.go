package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/despensa-app/despensa-backend/api/middleware"
	"github.com/despensa-app/despensa-backend/api/responses"
	"github.com/despensa-app/despensa-backend/api/validators"
	"github.com/despensa-app/despensa-backend/internal/prices"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
)

type priceSetRequest struct {
	StoreID uuid.UUID        `json:"store_id" validate:"required"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

// PriceSet records or overwrites the ingredient's price at one store and
// marks the pair available.
func PriceSet(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price service unavailable"))
			return
		}

		ingredientID, err := validators.ParseUUIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceSetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetPrice(r.Context(), ingredientID, payload.StoreID, payload.Price, true); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

type priceUnavailableRequest struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
}

// PriceMarkUnavailable flips the pair to unavailable and drops the caller's
// matching list row, since the item cannot be bought there anymore.
func PriceMarkUnavailable(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		ingredientID, err := validators.ParseUUIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceUnavailableRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkUnavailable(r.Context(), userID, ingredientID, payload.StoreID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unavailable"})
	}
}

// PriceList returns every per-store record for the ingredient.
func PriceList(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price service unavailable"))
			return
		}

		ingredientID, err := validators.ParseUUIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListForIngredient(r.Context(), ingredientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}
