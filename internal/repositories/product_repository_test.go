package repositories_test

import (
	"fmt"
	"strings"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newGORMRepository(t *testing.T) repositories.ProductRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return repositories.NewGORMProductRepository(db)
}

func newMemoryRepository(t *testing.T) repositories.ProductRepository {
	return repositories.NewMemoryProductRepository()
}

var implementations = map[string]func(t *testing.T) repositories.ProductRepository{
	"GORM":   newGORMRepository,
	"Memory": newMemoryRepository,
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	for name, newRepo := range implementations {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)

			first := &models.Product{Name: "Curved Monitor", Price: 300, Availability: true}
			second := &models.Product{Name: "Keyboard", Price: 75.5, Availability: true}
			require.NoError(t, repo.Create(first))
			require.NoError(t, repo.Create(second))

			assert.NotZero(t, first.ID)
			assert.Greater(t, second.ID, first.ID)

			got, err := repo.GetByID(first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Curved Monitor", got.Name)
			assert.InDelta(t, 300, got.Price, 0.001)
			assert.True(t, got.Availability)

			all, err := repo.GetAll()
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, first.ID, all[0].ID)
			assert.Equal(t, second.ID, all[1].ID)
		})
	}
}

func TestProductRepository_GetAllEmpty(t *testing.T) {
	for name, newRepo := range implementations {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			all, err := newRepo(t).GetAll()
			require.NoError(t, err)
			assert.NotNil(t, all)
			assert.Empty(t, all)
		})
	}
}

func TestProductRepository_NotFound(t *testing.T) {
	for name, newRepo := range implementations {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)

			_, err := repo.GetByID(404)
			assert.ErrorIs(t, err, repositories.ErrProductNotFound)

			err = repo.Update(&models.Product{ID: 404, Name: "Ghost", Price: 1})
			assert.ErrorIs(t, err, repositories.ErrProductNotFound)

			err = repo.Delete(404)
			assert.ErrorIs(t, err, repositories.ErrProductNotFound)
		})
	}
}

func TestProductRepository_UpdateWritesZeroValues(t *testing.T) {
	for name, newRepo := range implementations {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			product := &models.Product{Name: "Mouse", Price: 50, Availability: true}
			require.NoError(t, repo.Create(product))

			product.Name = "Wireless Mouse"
			product.Availability = false
			require.NoError(t, repo.Update(product))

			got, err := repo.GetByID(product.ID)
			require.NoError(t, err)
			assert.Equal(t, "Wireless Mouse", got.Name)
			assert.False(t, got.Availability)
		})
	}
}

func TestProductRepository_DeleteDoesNotReuseIDs(t *testing.T) {
	for name, newRepo := range implementations {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			product := &models.Product{Name: "Webcam", Price: 90, Availability: true}
			require.NoError(t, repo.Create(product))
			deletedID := product.ID

			require.NoError(t, repo.Delete(deletedID))
			assert.ErrorIs(t, repo.Delete(deletedID), repositories.ErrProductNotFound)

			next := &models.Product{Name: "Headset", Price: 120, Availability: true}
			require.NoError(t, repo.Create(next))
			assert.NotEqual(t, deletedID, next.ID)
		})
	}
}
