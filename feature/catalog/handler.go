package catalog

import (
	"stocktake/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/products", h.HandleListProducts)
	group.Get("/products/low-stock", h.HandleListLowStock)
}

// HandleListProducts returns the active product assortment.
// @Summary List Products
// @Description List all active products with their live stock levels.
// @Tags catalog
// @Accept json
// @Produce json
// @Success 200 {array} models.Product "Active products"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/products [get]
func (h *Handler) HandleListProducts(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	products, err := h.service.Snapshot(c.Context())
	if err != nil {
		l.Error("Product listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(products)
}

// HandleListLowStock returns products at or below their reorder threshold.
// @Summary List Low Stock Products
// @Description List active products whose quantity is at or below min stock.
// @Tags catalog
// @Accept json
// @Produce json
// @Success 200 {array} models.Product "Low stock products"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/products/low-stock [get]
func (h *Handler) HandleListLowStock(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	products, err := h.service.ListLowStock(c.Context())
	if err != nil {
		l.Error("Low stock listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(products)
}
