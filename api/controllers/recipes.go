package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/despensa-app/despensa-backend/api/responses"
	"github.com/despensa-app/despensa-backend/api/validators"
	"github.com/despensa-app/despensa-backend/internal/recipes"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
	"github.com/despensa-app/despensa-backend/pkg/pagination"
)

type recipeIngredientEntry struct {
	IngredientID *uuid.UUID       `json:"ingredient_id,omitempty"`
	Name         string           `json:"name,omitempty" validate:"max=160"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
}

type recipeRequest struct {
	Name         string                  `json:"name" validate:"required,min=1,max=200"`
	Type         string                  `json:"type,omitempty" validate:"max=80"`
	Rating       float64                 `json:"rating,omitempty"`
	Instructions string                  `json:"instructions,omitempty"`
	Ingredients  []recipeIngredientEntry `json:"ingredients,omitempty" validate:"dive"`
	Tags         []string                `json:"tags,omitempty"`
	Steps        []string                `json:"steps,omitempty"`
}

func (req recipeRequest) toInput() recipes.RecipeInput {
	input := recipes.RecipeInput{
		Name:         validators.SanitizeString(req.Name, 200),
		Type:         validators.SanitizeString(req.Type, 80),
		Rating:       req.Rating,
		Instructions: req.Instructions,
		Tags:         req.Tags,
		Steps:        req.Steps,
	}
	for _, entry := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, recipes.RecipeIngredientInput{
			IngredientID: entry.IngredientID,
			Name:         validators.SanitizeString(entry.Name, 160),
			Quantity:     entry.Quantity,
			Unit:         entry.Unit,
		})
	}
	return input
}

// RecipeCreate adds a recipe to the caller's book.
func RecipeCreate(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateRecipe(r.Context(), userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// RecipeGet returns one recipe with its composition flattened.
func RecipeGet(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipeID, err := validators.ParseUUIDParam(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetRecipe(r.Context(), userID, recipeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// RecipeList pages through the caller's recipes, newest first.
func RecipeList(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListRecipes(r.Context(), userID, r.URL.Query().Get("cursor"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// RecipeUpdate rewrites the recipe and its composition wholesale.
func RecipeUpdate(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipeID, err := validators.ParseUUIDParam(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateRecipe(r.Context(), userID, recipeID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// RecipeDelete removes the recipe and its composition rows.
func RecipeDelete(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipeID, err := validators.ParseUUIDParam(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRecipe(r.Context(), userID, recipeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
