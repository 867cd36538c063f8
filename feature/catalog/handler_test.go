package catalog_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"stocktake/core/database"
	"stocktake/feature/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleListProducts(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	feature, err := catalog.NewFeature(db, zap.NewNop())
	require.NoError(t, err)

	seed(t, catalog.NewRepository(db), "Beans", "A", 10, 2, true)
	seed(t, catalog.NewRepository(db), "Short", "B", 1, 5, true)

	app := fiber.New()
	require.NoError(t, feature.Load(app))

	t.Run("All Products", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/catalog/products", nil), 2000)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var products []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
		assert.Len(t, products, 2)
	})

	t.Run("Low Stock Only", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/catalog/products/low-stock", nil), 2000)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var products []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
		require.Len(t, products, 1)
		assert.Equal(t, "Short", products[0]["name"])
	})
}
