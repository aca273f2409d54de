package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/despensa-app/despensa-backend/api/responses"
	"github.com/despensa-app/despensa-backend/api/validators"
	"github.com/despensa-app/despensa-backend/internal/weeklyplan"
	"github.com/despensa-app/despensa-backend/pkg/enums"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
)

type planAssignRequest struct {
	RecipeID uuid.UUID `json:"recipe_id" validate:"required"`
	Date     *string   `json:"date,omitempty"`
	Slot     *string   `json:"slot,omitempty" validate:"omitempty,oneof=Desayuno Comida Cena"`
}

// WeeklyPlanAssign puts a recipe on the plan, converting a pending row when
// a date arrives, and cascades its urgent ingredients onto the lists.
func WeeklyPlanAssign(svc weeklyplan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "weekly plan service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload planAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var date *time.Time
		if payload.Date != nil && *payload.Date != "" {
			parsed, err := time.Parse("2006-01-02", *payload.Date)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be YYYY-MM-DD"))
				return
			}
			date = &parsed
		}

		var slot *enums.MealSlot
		if payload.Slot != nil && *payload.Slot != "" {
			parsed, err := enums.ParseMealSlot(*payload.Slot)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid meal slot"))
				return
			}
			slot = &parsed
		}

		result, err := svc.Assign(r.Context(), userID, payload.RecipeID, date, slot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// WeeklyPlanList returns the caller's plan, pending rows first.
func WeeklyPlanList(svc weeklyplan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "weekly plan service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// WeeklyPlanUnassign removes one row from the caller's plan.
func WeeklyPlanUnassign(svc weeklyplan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "weekly plan service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unassign(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
