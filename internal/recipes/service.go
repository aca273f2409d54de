package recipes

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
)

const maxRecipeNameLen = 200

// IngredientResolver is the slice of the catalog the recipe writer needs.
// Implemented by the catalog repository; declared here to keep the packages
// acyclic.
type IngredientResolver interface {
	FindIngredientByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	FindOrCreateIngredientByName(ctx context.Context, name string) (*models.Ingredient, error)
}

// TagResolver resolves tag names into rows, creating missing ones.
type TagResolver interface {
	UpsertTagByName(ctx context.Context, name string) (*models.Tag, error)
}

// ServiceParams groups dependencies for the recipe service.
type ServiceParams struct {
	RecipeRepo  *Repository
	Ingredients IngredientResolver
	Tags        TagResolver
	Logger      *logger.Logger
}

// Service exposes the per-user recipe book.
type Service interface {
	CreateRecipe(ctx context.Context, userID uuid.UUID, input RecipeInput) (*RecipeDTO, error)
	GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeDTO, error)
	ListRecipes(ctx context.Context, userID uuid.UUID, cursor string, limit int) (RecipePageDTO, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, input RecipeInput) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error
}

type service struct {
	recipeRepo  *Repository
	ingredients IngredientResolver
	tags        TagResolver
	logg        *logger.Logger
}

// NewService builds a recipe service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.RecipeRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe repo is required")
	}
	if params.Ingredients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient resolver is required")
	}
	if params.Tags == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag resolver is required")
	}
	return &service{
		recipeRepo:  params.RecipeRepo,
		ingredients: params.Ingredients,
		tags:        params.Tags,
		logg:        params.Logger,
	}, nil
}

func (s *service) CreateRecipe(ctx context.Context, userID uuid.UUID, input RecipeInput) (*RecipeDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rating, err := validateRecipeInput(input)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		UserID:       userID,
		Name:         input.Name,
		Type:         input.Type,
		Rating:       rating,
		Instructions: input.Instructions,
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create recipe")
	}
	if err := s.saveComposition(ctx, recipe.ID, input); err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(ctx, "recipe created")
	}
	return s.project(ctx, recipe)
}

func (s *service) GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeDTO, error) {
	recipe, err := s.loadOwned(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, recipe)
}

func (s *service) ListRecipes(ctx context.Context, userID uuid.UUID, cursor string, limit int) (RecipePageDTO, error) {
	if userID == uuid.Nil {
		return RecipePageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	records, nextCursor, err := s.recipeRepo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return RecipePageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recipes")
	}

	items := make([]RecipeSummaryDTO, 0, len(records))
	for _, record := range records {
		items = append(items, RecipeSummaryDTO{
			ID:        record.ID,
			Name:      record.Name,
			Type:      record.Type,
			Rating:    float64(record.Rating) / 2,
			CreatedAt: record.CreatedAt,
		})
	}
	return RecipePageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, input RecipeInput) (*RecipeDTO, error) {
	recipe, err := s.loadOwned(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	rating, err := validateRecipeInput(input)
	if err != nil {
		return nil, err
	}

	recipe.Name = input.Name
	recipe.Type = input.Type
	recipe.Rating = rating
	recipe.Instructions = input.Instructions
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update recipe")
	}
	if err := s.saveComposition(ctx, recipe.ID, input); err != nil {
		return nil, err
	}
	return s.project(ctx, recipe)
}

func (s *service) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, recipeID); err != nil {
		return err
	}
	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete recipe")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if recipeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id is required")
	}
	recipe, err := s.recipeRepo.FindForUser(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "recipe not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}
	return recipe, nil
}

// saveComposition replaces the recipe's ingredients, tags, and steps from the
// input. Ingredient names that do not exist in the catalog are created, so a
// recipe can introduce new ingredients in one save.
func (s *service) saveComposition(ctx context.Context, recipeID uuid.UUID, input RecipeInput) error {
	rows := make([]models.RecipeIngredient, 0, len(input.Ingredients))
	seen := map[uuid.UUID]bool{}
	for _, entry := range input.Ingredients {
		ingredient, err := s.resolveIngredient(ctx, entry)
		if err != nil {
			return err
		}
		if seen[ingredient.ID] {
			continue
		}
		seen[ingredient.ID] = true

		row := models.RecipeIngredient{IngredientID: ingredient.ID, Unit: entry.Unit}
		if entry.Quantity != nil {
			if entry.Quantity.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "ingredient quantity must not be negative")
			}
			row.Quantity = decimalNull(*entry.Quantity)
		}
		rows = append(rows, row)
	}
	if err := s.recipeRepo.ReplaceIngredients(ctx, recipeID, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace recipe ingredients")
	}

	tagIDs := make([]uuid.UUID, 0, len(input.Tags))
	seenTags := map[uuid.UUID]bool{}
	for _, name := range input.Tags {
		if name == "" {
			continue
		}
		tag, err := s.tags.UpsertTagByName(ctx, name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve tag")
		}
		if seenTags[tag.ID] {
			continue
		}
		seenTags[tag.ID] = true
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.recipeRepo.ReplaceTags(ctx, recipeID, tagIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace recipe tags")
	}

	if err := s.recipeRepo.ReplaceSteps(ctx, recipeID, input.Steps); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace recipe steps")
	}
	return nil
}

func (s *service) resolveIngredient(ctx context.Context, entry RecipeIngredientInput) (*models.Ingredient, error) {
	if entry.IngredientID != nil && *entry.IngredientID != uuid.Nil {
		ingredient, err := s.ingredients.FindIngredientByID(ctx, *entry.IngredientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "recipe ingredient not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe ingredient")
		}
		return ingredient, nil
	}
	if entry.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe ingredient needs an id or a name")
	}
	ingredient, err := s.ingredients.FindOrCreateIngredientByName(ctx, entry.Name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve recipe ingredient")
	}
	return ingredient, nil
}

func (s *service) project(ctx context.Context, recipe *models.Recipe) (*RecipeDTO, error) {
	ingredients, err := s.recipeRepo.ListIngredients(ctx, recipe.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe ingredients")
	}
	tags, err := s.recipeRepo.ListTagNames(ctx, recipe.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe tags")
	}
	steps, err := s.recipeRepo.ListStepTexts(ctx, recipe.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe steps")
	}

	return &RecipeDTO{
		ID:           recipe.ID,
		Name:         recipe.Name,
		Type:         recipe.Type,
		Rating:       float64(recipe.Rating) / 2,
		Instructions: recipe.Instructions,
		Ingredients:  ingredients,
		Tags:         tags,
		Steps:        steps,
		CreatedAt:    recipe.CreatedAt,
	}, nil
}

func validateRecipeInput(input RecipeInput) (int16, error) {
	if input.Name == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipe name is required")
	}
	if len(input.Name) > maxRecipeNameLen {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipe name is too long")
	}
	for _, text := range input.Steps {
		if text == "" {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipe steps must not be empty")
		}
	}
	return ratingToHalfSteps(input.Rating)
}

func decimalNull(value decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: value, Valid: true}
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
