package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/despensa-app/despensa-backend/api/middleware"
	"github.com/despensa-app/despensa-backend/api/responses"
	"github.com/despensa-app/despensa-backend/api/validators"
	"github.com/despensa-app/despensa-backend/internal/catalog"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
	"github.com/despensa-app/despensa-backend/pkg/pagination"
)

type storePriceEntry struct {
	StoreID uuid.UUID        `json:"store_id" validate:"required"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

type ingredientRequest struct {
	Name            string            `json:"name" validate:"required,min=1,max=160"`
	Type            string            `json:"type,omitempty" validate:"max=80"`
	Rating          float64           `json:"rating,omitempty"`
	Status          *string           `json:"status,omitempty"`
	BrandName       *string           `json:"brand_name,omitempty"`
	FavoriteStoreID *uuid.UUID        `json:"favorite_store_id,omitempty"`
	Prices          []storePriceEntry `json:"prices,omitempty"`
	RemovedStoreIDs []uuid.UUID       `json:"removed_store_ids,omitempty"`
}

func (req ingredientRequest) toInput() catalog.IngredientInput {
	input := catalog.IngredientInput{
		Name:            validators.SanitizeString(req.Name, 160),
		Type:            validators.SanitizeString(req.Type, 80),
		Rating:          req.Rating,
		Status:          req.Status,
		BrandName:       req.BrandName,
		FavoriteStoreID: req.FavoriteStoreID,
		RemovedStoreIDs: req.RemovedStoreIDs,
	}
	for _, entry := range req.Prices {
		input.Prices = append(input.Prices, catalog.StorePriceInput{StoreID: entry.StoreID, Price: entry.Price})
	}
	return input
}

// IngredientCreate adds an ingredient to the shared catalog.
func IngredientCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload ingredientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateIngredient(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// IngredientGet returns the full projection of one ingredient.
func IngredientGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetIngredient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// IngredientList pages through the catalog, newest first.
func IngredientList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListIngredients(r.Context(), r.URL.Query().Get("cursor"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// IngredientUpdate replaces the mutable fields and per-store price entries.
func IngredientUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ingredientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateIngredient(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// IngredientDelete drops an unreferenced ingredient from the catalog.
func IngredientDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteIngredient(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type quickAddRequest struct {
	Name string `json:"name" validate:"required,min=1,max=160"`
}

// IngredientQuickAdd mints a missing ingredient and puts it on every store
// list of the caller in one call.
func IngredientQuickAdd(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload quickAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.QuickAdd(r.Context(), userID, validators.SanitizeString(payload.Name, 160))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// BrandList returns every known brand.
func BrandList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		brands, err := svc.ListBrands(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, brands)
	}
}

// TagList returns every known tag.
func TagList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		tags, err := svc.ListTags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tags)
	}
}
