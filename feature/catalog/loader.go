package catalog

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the catalog feature.
func NewFeature(db *gorm.DB, logger *zap.Logger) (*Feature, error) {
	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	svc := NewService(repo, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}, nil
}

// Service exposes the catalog service for other features.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
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
