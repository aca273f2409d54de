package weeklyplan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db/models"
	"github.com/despensa-app/despensa-backend/pkg/enums"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
	"github.com/despensa-app/despensa-backend/pkg/logger"
	"github.com/despensa-app/despensa-backend/pkg/metrics"
)

// RecipeSource is the slice of the recipe book the planner needs. Implemented
// by the recipes repository; declared here to keep the packages acyclic.
type RecipeSource interface {
	FindForUser(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	IngredientIDsForRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error)
}

// ListCascader fans an ingredient out to every viable store list. Implemented
// by the shopping list service.
type ListCascader interface {
	AddToAllStores(ctx context.Context, userID, ingredientID uuid.UUID) ([]models.ShoppingListItem, error)
}

// ListSnapshot reads which ingredients are already on the user's lists.
// Implemented by the shopping list repository.
type ListSnapshot interface {
	IngredientIDsOnList(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ServiceParams groups dependencies for the weekly plan service.
type ServiceParams struct {
	PlanRepo *Repository
	Recipes  RecipeSource
	Cascader ListCascader
	Snapshot ListSnapshot
	Metrics  *metrics.ReconcileMetrics
	Logger   *logger.Logger
}

// Service exposes the weekly meal plan.
type Service interface {
	Assign(ctx context.Context, userID, recipeID uuid.UUID, date *time.Time, slot *enums.MealSlot) (*AssignResult, error)
	List(ctx context.Context, userID uuid.UUID) ([]PlanItemDTO, error)
	Unassign(ctx context.Context, userID, itemID uuid.UUID) error
}

type service struct {
	planRepo *Repository
	recipes  RecipeSource
	cascader ListCascader
	snapshot ListSnapshot
	metrics  *metrics.ReconcileMetrics
	logg     *logger.Logger
}

// NewService builds a weekly plan service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.PlanRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan repo is required")
	}
	if params.Recipes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe source is required")
	}
	if params.Cascader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list cascader is required")
	}
	if params.Snapshot == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list snapshot is required")
	}
	return &service{
		planRepo: params.PlanRepo,
		recipes:  params.Recipes,
		cascader: params.Cascader,
		snapshot: params.Snapshot,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Assign puts a recipe on the plan. A pending (dateless) row for the same
// recipe is converted in place when a date arrives. Assigning also fans the
// recipe's urgent ingredients out to the shopping lists; each ingredient
// succeeds or fails on its own and the plan row is never rolled back.
func (s *service) Assign(ctx context.Context, userID, recipeID uuid.UUID, date *time.Time, slot *enums.MealSlot) (*AssignResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if recipeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id is required")
	}
	if slot != nil {
		if _, err := enums.ParseMealSlot(string(*slot)); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid meal slot")
		}
	}

	recipe, err := s.recipes.FindForUser(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "recipe not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}

	item, err := s.placeItem(ctx, userID, recipeID, date, slot)
	if err != nil {
		return nil, err
	}

	result := &AssignResult{Item: PlanItemDTO{
		ID:         item.ID,
		RecipeID:   recipeID,
		RecipeName: recipe.Name,
		Date:       item.Date,
		Slot:       slotString(item.Slot),
		CreatedAt:  item.CreatedAt,
	}}
	s.cascadeUrgent(ctx, userID, recipeID, result)
	return result, nil
}

// placeItem finds or creates the plan row, converting a pending one in place.
func (s *service) placeItem(ctx context.Context, userID, recipeID uuid.UUID, date *time.Time, slot *enums.MealSlot) (*models.WeeklyPlanItem, error) {
	pending, err := s.planRepo.FindUnscheduled(ctx, userID, recipeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find pending plan row")
	}

	if date == nil {
		if pending != nil {
			if slot != nil {
				if err := s.planRepo.SetSlot(ctx, pending.ID, slot); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update plan row slot")
				}
				pending.Slot = slot
			}
			return pending, nil
		}
		item := &models.WeeklyPlanItem{UserID: userID, RecipeID: recipeID, Slot: slot}
		if err := s.planRepo.Create(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create plan row")
		}
		return item, nil
	}

	day := date.UTC().Truncate(24 * time.Hour)
	if pending != nil {
		if err := s.planRepo.Schedule(ctx, pending.ID, day, slot); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule plan row")
		}
		pending.Date = &day
		pending.Slot = slot
		return pending, nil
	}

	item := &models.WeeklyPlanItem{UserID: userID, RecipeID: recipeID, Date: &day, Slot: slot}
	if err := s.planRepo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create plan row")
	}
	return item, nil
}

// cascadeUrgent adds the recipe's urgent ingredients to every viable store
// list, skipping ingredients the user already has on a list. Failures are
// collected per ingredient and reported, never propagated.
func (s *service) cascadeUrgent(ctx context.Context, userID, recipeID uuid.UUID, result *AssignResult) {
	ids, err := s.recipes.IngredientIDsForRecipe(ctx, recipeID)
	if err != nil {
		s.noteCascadeFailure(ctx, result, uuid.Nil, err)
		return
	}
	urgent, err := s.planRepo.UrgentIngredientIDs(ctx, ids)
	if err != nil {
		s.noteCascadeFailure(ctx, result, uuid.Nil, err)
		return
	}
	if len(urgent) == 0 {
		return
	}

	onList, err := s.snapshot.IngredientIDsOnList(ctx, userID)
	if err != nil {
		s.noteCascadeFailure(ctx, result, uuid.Nil, err)
		return
	}
	listed := make(map[uuid.UUID]bool, len(onList))
	for _, id := range onList {
		listed[id] = true
	}

	var errs error
	for _, ingredientID := range urgent {
		if listed[ingredientID] {
			continue
		}
		created, err := s.cascader.AddToAllStores(ctx, userID, ingredientID)
		if err != nil {
			errs = multierr.Append(errs, err)
			s.noteCascadeFailure(ctx, result, ingredientID, err)
			continue
		}
		result.CascadeAdded += len(created)
		result.Outcomes = append(result.Outcomes, CascadeOutcome{
			IngredientID: ingredientID,
			RowsAdded:    len(created),
			OK:           true,
		})
		s.metrics.AddCascadeRows("weekly_plan_assign", len(created))
	}

	if s.logg != nil {
		if errs != nil {
			s.logg.Error(ctx, "weekly plan cascade finished with failures", errs)
		} else {
			s.logg.Info(ctx, "weekly plan cascade finished")
		}
	}
}

func (s *service) noteCascadeFailure(ctx context.Context, result *AssignResult, ingredientID uuid.UUID, err error) {
	result.CascadeFailed++
	result.Outcomes = append(result.Outcomes, CascadeOutcome{
		IngredientID: ingredientID,
		Error:        err.Error(),
	})
	s.metrics.IncCascadeFailure("weekly_plan_assign")
	if s.logg != nil {
		s.logg.Warn(ctx, "weekly plan cascade step failed")
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]PlanItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.planRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plan items")
	}
	return items, nil
}

func (s *service) Unassign(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan item id is required")
	}
	if _, err := s.planRepo.FindForUser(ctx, userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "plan item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan item")
	}
	if err := s.planRepo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete plan item")
	}
	return nil
}

func slotString(slot *enums.MealSlot) *string {
	if slot == nil {
		return nil
	}
	value := string(*slot)
	return &value
}
