package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestCreateAndListStores(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{StoreRepo: repo})
	require.NoError(t, err)

	ctx := context.Background()
	mercadona, err := svc.CreateStore(ctx, "Mercadona")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, mercadona.ID)

	_, err = svc.CreateStore(ctx, "Alcampo")
	require.NoError(t, err)

	all, err := svc.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alcampo", all[0].Name)
	assert.Equal(t, "Mercadona", all[1].Name)
}

func TestCreateStoreRejectsDuplicateName(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{StoreRepo: repo})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.CreateStore(ctx, "Lidl")
	require.NoError(t, err)

	_, err = svc.CreateStore(ctx, "Lidl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store already exists")
}

func TestGetStoreNotFound(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{StoreRepo: repo})
	require.NoError(t, err)

	_, err = svc.GetStore(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store not found")
}

func TestCreateStoreValidation(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{StoreRepo: repo})
	require.NoError(t, err)

	_, err = svc.CreateStore(context.Background(), "")
	require.Error(t, err)
}
