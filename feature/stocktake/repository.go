package stocktake

import (
	"context"
	"errors"
	"fmt"

	"stocktake/feature/stocktake/models"

	"gorm.io/gorm"
)

// Repository is the inventory record store: GORM persistence for count
// sessions and their line items, supporting partial single-item updates
// without rewriting the whole aggregate.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a stocktake repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the session tables.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&models.Inventory{}, &models.InventoryItem{}); err != nil {
		return fmt.Errorf("failed to migrate stocktake schema: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for transaction scoping.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Create persists a new session including any initial items.
func (r *Repository) Create(ctx context.Context, inv *models.Inventory) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	return nil
}

// GetByID loads a session with its items in insertion order.
// Returns NotFoundError for unknown ids.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "inventory", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory %s: %w", id, err)
	}
	return &inv, nil
}

// List loads all sessions with their items, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Inventory, error) {
	var invs []models.Inventory
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	return invs, nil
}

// UpdateFields applies a partial update to a session row.
func (r *Repository) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]any) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update inventory %s: %w", id, result.Error)
	}
	return nil
}

// Delete removes a session and, via the FK constraint, its items.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inventory_id = ?", id).Delete(&models.InventoryItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete inventory items: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Inventory{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete inventory %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Kind: "inventory", ID: id}
		}
		return nil
	})
}

// AddItems appends line items to a session.
func (r *Repository) AddItems(ctx context.Context, items []models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to add inventory items: %w", err)
	}
	return nil
}

// GetItem loads a single line item. Returns NotFoundError for unknown ids.
func (r *Repository) GetItem(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "item", ID: itemID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", itemID, err)
	}
	return &item, nil
}

// UpdateItemCount records a physical count as a partial update touching only
// the count columns. Expected quantity is never written after insert.
func (r *Repository) UpdateItemCount(ctx context.Context, itemID string, qty float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"counted_qty": qty,
			"counted":     true,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record count for item %s: %w", itemID, result.Error)
	}
	// RowsAffected is not checked here: MySQL reports zero affected rows for
	// an idempotent re-record of the same quantity. Existence is verified by
	// the engine before the update.
	return nil
}

// RemoveItem deletes a single line item.
func (r *Repository) RemoveItem(ctx context.Context, itemID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.InventoryItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item %s: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Kind: "item", ID: itemID}
	}
	return nil
}
