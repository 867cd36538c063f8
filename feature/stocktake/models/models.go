package models

import "time"

// Status is the lifecycle state of a count session.
type Status string

const (
	// StatusDraft is a session that has been created but not started.
	StatusDraft Status = "DRAFT"
	// StatusInProgress is a session accepting physical counts.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusCompleted is a terminal session whose adjustments were committed.
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled is a terminal session discarded without adjustments.
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status permits no further mutation.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ItemState classifies a line item's counting progress. It is derived, never
// stored: pending until a count is recorded, then counted or discrepancy
// depending on the difference.
type ItemState string

const (
	// ItemPending means no physical count has been recorded yet.
	ItemPending ItemState = "pending"
	// ItemCounted means the count matches the expected quantity.
	ItemCounted ItemState = "counted"
	// ItemDiscrepancy means the count differs from the expected quantity.
	ItemDiscrepancy ItemState = "discrepancy"
)

// Inventory is a count session: a bounded exercise reconciling theoretical
// stock against physically counted stock for a set of products.
type Inventory struct {
	// ID is the unique session identifier (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// Number is the human-readable session number, e.g. ST-20240115-4f2a.
	Number string `gorm:"size:32;uniqueIndex" json:"number"`

	// Name is the operator-facing session name.
	Name string `gorm:"size:255;not null" json:"name"`

	// Description is an optional free-text note.
	Description string `gorm:"size:1024" json:"description,omitempty"`

	// Status is the lifecycle state. Transitions only happen through the
	// engine; the record store never changes it on its own.
	Status Status `gorm:"size:16;not null;index" json:"status"`

	// CreatedBy references the operator who opened the session.
	CreatedBy string `gorm:"size:128" json:"created_by,omitempty"`

	// StartedAt is set when the session enters IN_PROGRESS.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is set when the session reaches COMPLETED.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Items are the product lines, in catalog import order.
	Items []InventoryItem `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the GORM table name.
func (Inventory) TableName() string {
	return "inventories"
}

// Stats returns the aggregate statistics derived from the current item slice.
func (inv *Inventory) Stats() Stats {
	return ComputeStats(inv.Items)
}

// InventoryItem is one product line within a count session. Product name, SKU
// and barcode are snapshots captured at add-time so historical counts stay
// accurate if the catalog changes later.
type InventoryItem struct {
	// ID is the unique line identifier (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// InventoryID references the owning session.
	InventoryID string `gorm:"size:36;not null;index;uniqueIndex:idx_inventory_product" json:"inventory_id"`

	// ProductID references the counted product. Unique per session.
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_inventory_product" json:"product_id"`

	// Seq is the insertion ordinal within the session. It only carries the
	// display order (catalog import order).
	Seq int `gorm:"not null;default:0" json:"seq"`

	// ProductName is the product name snapshot.
	ProductName string `gorm:"size:255" json:"product_name"`

	// SKU is the product SKU snapshot.
	SKU string `gorm:"size:64" json:"sku"`

	// Barcode is the product barcode snapshot.
	Barcode string `gorm:"size:64" json:"barcode,omitempty"`

	// ExpectedQty is the theoretical quantity at session start.
	// Immutable after the item is added.
	ExpectedQty float64 `json:"expected_qty"`

	// CountedQty is the physical count recorded by the operator.
	// Meaningless until Counted is true.
	CountedQty float64 `json:"counted_qty"`

	// Counted indicates whether a physical count has been recorded.
	Counted bool `json:"counted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the GORM table name.
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// Difference returns counted minus expected. Zero until a count is recorded.
func (it *InventoryItem) Difference() float64 {
	if !it.Counted {
		return 0
	}
	return it.CountedQty - it.ExpectedQty
}

// State derives the item's counting state from its quantities.
func (it *InventoryItem) State() ItemState {
	if !it.Counted {
		return ItemPending
	}
	if it.Difference() != 0 {
		return ItemDiscrepancy
	}
	return ItemCounted
}

// Stats holds the aggregate statistics of a count session. They are a pure
// function of the item slice and are never persisted.
type Stats struct {
	// TotalItems is the number of product lines.
	TotalItems int `json:"total_items"`

	// CountedItems is the number of lines with a recorded count.
	CountedItems int `json:"counted_items"`

	// ItemsWithDiscrepancy is the number of counted lines whose count
	// differs from the expected quantity.
	ItemsWithDiscrepancy int `json:"items_with_discrepancy"`

	// TotalDiscrepancy is the sum of differences over counted lines.
	TotalDiscrepancy float64 `json:"total_discrepancy"`

	// Progress is CountedItems over TotalItems as a percentage.
	// A session with zero items is vacuously fully counted (100).
	Progress float64 `json:"progress"`
}

// ComputeStats derives the aggregates from an item slice. This is the single
// authoritative recomputation path; no caller maintains counters of its own.
func ComputeStats(items []InventoryItem) Stats {
	stats := Stats{TotalItems: len(items)}

	for i := range items {
		it := &items[i]
		if !it.Counted {
			continue
		}
		stats.CountedItems++
		if diff := it.Difference(); diff != 0 {
			stats.ItemsWithDiscrepancy++
			stats.TotalDiscrepancy += diff
		}
	}

	if stats.TotalItems == 0 {
		stats.Progress = 100
	} else {
		stats.Progress = float64(stats.CountedItems) / float64(stats.TotalItems) * 100
	}

	return stats
}
