package models

import "time"

// Product is a sellable catalog entry. The stocktake engine snapshots its
// quantity as the theoretical stock for new count sessions and applies signed
// deltas back to it on completion.
type Product struct {
	// ID is the unique product identifier (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// Name is the display name of the product.
	Name string `gorm:"size:255;not null" json:"name"`

	// SKU is the merchant's stock keeping unit code.
	SKU string `gorm:"size:64;uniqueIndex;not null" json:"sku"`

	// Barcode is the optional scannable code (EAN/UPC).
	Barcode string `gorm:"size:64" json:"barcode,omitempty"`

	// Category is the merchandising category.
	Category string `gorm:"size:128" json:"category"`

	// Price is the unit sale price.
	Price float64 `json:"price"`

	// Quantity is the live stock level.
	Quantity float64 `json:"quantity"`

	// MinStock is the reorder threshold used by low-stock reports.
	MinStock float64 `json:"min_stock"`

	// Active indicates whether the product is part of the current assortment.
	// Inactive products are excluded from count session snapshots.
	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the GORM table name.
func (Product) TableName() string {
	return "products"
}

// BelowMinStock reports whether the product is at or under its reorder threshold.
func (p Product) BelowMinStock() bool {
	return p.Quantity <= p.MinStock
}
