package stores

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/despensa-app/despensa-backend/pkg/db"
	"github.com/despensa-app/despensa-backend/pkg/db/models"
	pkgerrors "github.com/despensa-app/despensa-backend/pkg/errors"
)

const maxStoreNameLen = 120

// ServiceParams groups dependencies for the store service.
type ServiceParams struct {
	StoreRepo *Repository
}

// Service exposes the store configuration surface.
type Service interface {
	CreateStore(ctx context.Context, name string) (*models.Store, error)
	GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListStores(ctx context.Context) ([]models.Store, error)
}

type service struct {
	storeRepo *Repository
}

// NewService builds a store service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.StoreRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store repo is required")
	}
	return &service{storeRepo: params.StoreRepo}, nil
}

func (s *service) CreateStore(ctx context.Context, name string) (*models.Store, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	if len(name) > maxStoreNameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is too long")
	}
	store, err := s.storeRepo.Create(ctx, name)
	if err != nil {
		if db.IsUniqueViolation(err, "stores_name_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "store already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return store, nil
}

func (s *service) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) ListStores(ctx context.Context) ([]models.Store, error) {
	all, err := s.storeRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return all, nil
}
