package catalog

import (
	"context"

	"stocktake/feature/catalog/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Service exposes catalog reads and the stock adjustment sink.
type Service struct {
	repo   *Repository
	logger *zap.Logger
	sf     singleflight.Group
}

// NewService creates a new catalog service.
func NewService(repo *Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Snapshot returns the active products at call time. Concurrent snapshot
// requests are collapsed into a single database read; sessions created in the
// same instant see the same theoretical quantities.
func (s *Service) Snapshot(ctx context.Context) ([]models.Product, error) {
	v, err, _ := s.sf.Do("snapshot", func() (any, error) {
		return s.repo.ListActive(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

// FindByIDs resolves product references for item snapshots.
func (s *Service) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	return s.repo.FindByIDs(ctx, ids)
}

// ListLowStock returns active products at or below their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListLowStock(ctx)
}

// ApplyAdjustment applies a signed stock delta within the caller's transaction.
func (s *Service) ApplyAdjustment(ctx context.Context, tx *gorm.DB, productID string, delta float64) error {
	if err := s.repo.ApplyAdjustment(ctx, tx, productID, delta); err != nil {
		return err
	}
	s.logger.Debug("Stock adjusted",
		zap.String("product_id", productID),
		zap.Float64("delta", delta),
	)
	return nil
}
