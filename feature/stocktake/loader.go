package stocktake

import (
	"stocktake/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the stocktake feature. client may be nil when report
// archiving is not configured.
func NewFeature(db *gorm.DB, catalog Catalog, sink AdjustmentSink, client storage.Client, bucket string, cfg Config, logger *zap.Logger) (*Feature, error) {
	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}

	var archive *Archive
	if client != nil {
		archive = NewArchive(client, bucket, logger)
	}

	svc := NewService(repo, catalog, sink, archive, cfg, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}, nil
}

// Service exposes the engine, e.g. for CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "stocktake"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
