package stocktake_test

import (
	"testing"

	"stocktake/feature/stocktake"
	"stocktake/feature/stocktake/models"

	"github.com/stretchr/testify/assert"
)

func sampleItems() []stocktake.ItemView {
	return []stocktake.ItemView{
		{ID: "1", ProductName: "Espresso Beans", SKU: "COF-001", State: models.ItemDiscrepancy},
		{ID: "2", ProductName: "Oat Milk", SKU: "MLK-002", Barcode: "4001", State: models.ItemCounted},
		{ID: "3", ProductName: "Vanilla Syrup", SKU: "SYR-003", State: models.ItemPending},
		{ID: "4", ProductName: "Decaf Beans", SKU: "COF-004", State: models.ItemPending},
	}
}

func TestFilterItems(t *testing.T) {
	t.Run("No Filter Keeps Everything", func(t *testing.T) {
		out := stocktake.FilterItems(sampleItems(), stocktake.ItemFilter{})
		assert.Len(t, out, 4)
	})

	t.Run("Free Text Matches Name And SKU", func(t *testing.T) {
		out := stocktake.FilterItems(sampleItems(), stocktake.ItemFilter{Query: "beans"})
		assert.Len(t, out, 2)

		out = stocktake.FilterItems(sampleItems(), stocktake.ItemFilter{Query: "cof-"})
		assert.Len(t, out, 2)

		out = stocktake.FilterItems(sampleItems(), stocktake.ItemFilter{Query: "4001"})
		assert.Len(t, out, 1)
		assert.Equal(t, "2", out[0].ID)
	})

	t.Run("State Filter", func(t *testing.T) {
		out := stocktake.FilterItems(sampleItems(), stocktake.ItemFilter{State: models.ItemPending})
		assert.Len(t, out, 2)
	})

	t.Run("Combined", func(t *testing.T) {
		out := stocktake.FilterItems(sampleItems(), stocktake.ItemFilter{Query: "beans", State: models.ItemPending})
		assert.Len(t, out, 1)
		assert.Equal(t, "4", out[0].ID)
	})

	t.Run("Preserves Order Without Mutation", func(t *testing.T) {
		items := sampleItems()
		out := stocktake.FilterItems(items, stocktake.ItemFilter{Query: "s"})
		assert.Equal(t, sampleItems(), items)
		for i := 1; i < len(out); i++ {
			assert.Less(t, out[i-1].ID, out[i].ID)
		}
	})
}

func TestPaginate(t *testing.T) {
	items := sampleItems()

	t.Run("First Page", func(t *testing.T) {
		page := stocktake.Paginate(items, 1, 3)
		assert.Len(t, page.Items, 3)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 4, page.TotalItems)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("Short Last Page", func(t *testing.T) {
		page := stocktake.Paginate(items, 2, 3)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, "4", page.Items[0].ID)
	})

	t.Run("Past The End Is Empty", func(t *testing.T) {
		page := stocktake.Paginate(items, 9, 3)
		assert.Empty(t, page.Items)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("Empty Input", func(t *testing.T) {
		page := stocktake.Paginate(nil, 1, 3)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("Defaults For Bad Arguments", func(t *testing.T) {
		page := stocktake.Paginate(items, 0, 0)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.PageSize)
		assert.Len(t, page.Items, 4)
	})
}
