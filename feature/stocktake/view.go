package stocktake

import (
	"strings"
	"time"

	"stocktake/feature/stocktake/models"
)

// ItemView is the read-only projection of a line item, with the derived
// difference and state materialized for display.
type ItemView struct {
	ID          string           `json:"id"`
	InventoryID string           `json:"inventory_id"`
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	SKU         string           `json:"sku"`
	Barcode     string           `json:"barcode,omitempty"`
	ExpectedQty float64          `json:"expected_qty"`
	CountedQty  float64          `json:"counted_qty"`
	Counted     bool             `json:"counted"`
	Difference  float64          `json:"difference"`
	State       models.ItemState `json:"state"`
}

// NewItemView projects a line item.
func NewItemView(it *models.InventoryItem) ItemView {
	return ItemView{
		ID:          it.ID,
		InventoryID: it.InventoryID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		SKU:         it.SKU,
		Barcode:     it.Barcode,
		ExpectedQty: it.ExpectedQty,
		CountedQty:  it.CountedQty,
		Counted:     it.Counted,
		Difference:  it.Difference(),
		State:       it.State(),
	}
}

// InventorySnapshot is the immutable read model of a count session. Items and
// aggregates are projected from the same item slice, so a snapshot can never
// show fresh item data against stale statistics.
type InventorySnapshot struct {
	ID          string        `json:"id"`
	Number      string        `json:"number"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      models.Status `json:"status"`
	CreatedBy   string        `json:"created_by,omitempty"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Items       []ItemView    `json:"items"`
	Stats       models.Stats  `json:"stats"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewInventorySnapshot projects a session and recomputes its aggregates.
func NewInventorySnapshot(inv *models.Inventory) *InventorySnapshot {
	items := make([]ItemView, 0, len(inv.Items))
	for i := range inv.Items {
		items = append(items, NewItemView(&inv.Items[i]))
	}

	return &InventorySnapshot{
		ID:          inv.ID,
		Number:      inv.Number,
		Name:        inv.Name,
		Description: inv.Description,
		Status:      inv.Status,
		CreatedBy:   inv.CreatedBy,
		StartedAt:   inv.StartedAt,
		CompletedAt: inv.CompletedAt,
		Items:       items,
		Stats:       inv.Stats(),
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

// ItemFilter narrows an item view list for display.
type ItemFilter struct {
	// Query matches case-insensitively against product name, SKU and barcode.
	Query string
	// State keeps only items in the given state when set.
	State models.ItemState
}

// FilterItems returns the items matching the filter, preserving order.
// The input is never mutated.
func FilterItems(items []ItemView, f ItemFilter) []ItemView {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		if f.State != "" && it.State != f.State {
			continue
		}
		if query != "" {
			name := strings.ToLower(it.ProductName)
			sku := strings.ToLower(it.SKU)
			barcode := strings.ToLower(it.Barcode)
			if !strings.Contains(name, query) && !strings.Contains(sku, query) && !strings.Contains(barcode, query) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// Page is one page of a paginated item view.
type Page struct {
	Items      []ItemView `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalItems int        `json:"total_items"`
	TotalPages int        `json:"total_pages"`
}

// Paginate slices a filtered item list into a fixed-size, 1-indexed page.
// The last page may be short; a page past the end is empty.
func Paginate(items []ItemView, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return Page{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: totalPages,
	}
}
