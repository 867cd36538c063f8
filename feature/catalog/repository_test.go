package catalog_test

import (
	"context"
	"testing"

	"stocktake/core/database"
	"stocktake/feature/catalog"
	"stocktake/feature/catalog/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) (*catalog.Repository, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	repo := catalog.NewRepository(db)
	require.NoError(t, repo.Migrate())
	return repo, db
}

func seed(t *testing.T, repo *catalog.Repository, name, sku string, qty, minStock float64, active bool) string {
	t.Helper()
	p := &models.Product{
		ID:       uuid.NewString(),
		Name:     name,
		SKU:      sku,
		Quantity: qty,
		MinStock: minStock,
		Active:   active,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p.ID
}

func TestListActive(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	seed(t, repo, "Beans", "A", 10, 2, true)
	seed(t, repo, "Milk", "B", 5, 1, true)
	seed(t, repo, "Discontinued", "C", 0, 0, false)

	products, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	// Ordered by name.
	assert.Equal(t, "Beans", products[0].Name)
	assert.Equal(t, "Milk", products[1].Name)
}

func TestListLowStock(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	seed(t, repo, "Plenty", "A", 10, 2, true)
	seed(t, repo, "Short", "B", 1, 2, true)
	seed(t, repo, "Exact", "C", 2, 2, true)
	seed(t, repo, "Inactive Short", "D", 0, 5, false)

	products, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Exact", products[0].Name)
	assert.Equal(t, "Short", products[1].Name)
}

func TestFindByIDs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	a := seed(t, repo, "Beans", "A", 10, 2, true)

	byID, err := repo.FindByIDs(ctx, []string{a, "missing"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Beans", byID[a].Name)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestApplyAdjustment(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	a := seed(t, repo, "Beans", "A", 10, 2, true)

	t.Run("Applies Signed Delta", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			return repo.ApplyAdjustment(ctx, tx, a, -3)
		})
		require.NoError(t, err)

		var p models.Product
		require.NoError(t, db.First(&p, "id = ?", a).Error)
		assert.Equal(t, 7.0, p.Quantity)
	})

	t.Run("Unknown Product Fails", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			return repo.ApplyAdjustment(ctx, tx, "missing", 1)
		})
		assert.Error(t, err)
	})
}
