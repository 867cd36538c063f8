package catalog

import (
	"context"
	"fmt"

	"stocktake/feature/catalog/models"

	"gorm.io/gorm"
)

// Repository provides catalog persistence on top of GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the products table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

// ListActive returns all active products ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	return products, nil
}

// ListLowStock returns active products at or below their reorder threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("active = ? AND quantity <= min_stock", true).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// FindByIDs returns the products for the given IDs keyed by ID.
// Missing IDs are simply absent from the result map.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	if len(ids) == 0 {
		return map[string]models.Product{}, nil
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// Create inserts a product. Used by seeding and tests.
func (r *Repository) Create(ctx context.Context, p *models.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ApplyAdjustment applies a signed stock delta to a product inside the given
// transaction. The caller owns the transaction boundary; all adjustments of a
// completion either commit together or roll back together.
func (r *Repository) ApplyAdjustment(ctx context.Context, tx *gorm.DB, productID string, delta float64) error {
	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))

	if result.Error != nil {
		return fmt.Errorf("failed to adjust stock for product %s: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %s not found for stock adjustment", productID)
	}
	return nil
}
