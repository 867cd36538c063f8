package stocktake

import (
	"errors"

	"stocktake/core/logger"
	"stocktake/feature/stocktake/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for count sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the stocktake routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/stocktakes")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleGetAll)
	group.Get("/:id", h.HandleGetByID)
	group.Patch("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
	group.Post("/:id/start", h.HandleStart)
	group.Post("/:id/complete", h.HandleComplete)
	group.Post("/:id/cancel", h.HandleCancel)
	group.Post("/:id/import", h.HandleImport)
	group.Get("/:id/stats", h.HandleGetStats)
	group.Get("/:id/items", h.HandleListItems)
	group.Post("/:id/items", h.HandleAddItem)
	group.Post("/:id/items/bulk", h.HandleAddItems)
	group.Put("/items/:itemId/count", h.HandleRecordCount)
	group.Delete("/items/:itemId", h.HandleRemoveItem)
}

// statusForError maps the engine's error taxonomy to HTTP status codes.
func statusForError(err error) int {
	var (
		validation *ValidationError
		state      *InvalidStateError
		duplicate  *DuplicateItemError
		notFound   *NotFoundError
		adjustment *AdjustmentError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &state):
		return fiber.StatusConflict
	case errors.As(err, &duplicate):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &adjustment):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// fail logs the error and renders it with the mapped status.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := statusForError(err)
	if status == fiber.StatusInternalServerError || status == fiber.StatusBadGateway {
		l.Error(msg, zap.Error(err))
	} else {
		l.Debug(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleCreate opens a new count session.
// @Summary Create Count Session
// @Description Create a count session, DRAFT when empty or IN_PROGRESS when seeded with items.
// @Tags stocktake
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Session definition"
// @Success 201 {object} InventorySnapshot "Created session"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 422 {object} map[string]string "Duplicate product"
// @Router /stocktakes [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, "Create body parse failed", &ValidationError{Field: "body", Reason: err.Error()})
	}

	snapshot, err := h.service.Create(c.Context(), req)
	if err != nil {
		return h.fail(c, "Create failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(snapshot)
}

// HandleGetAll lists every count session.
// @Summary List Count Sessions
// @Tags stocktake
// @Produce json
// @Success 200 {array} InventorySnapshot "Sessions, newest first"
// @Router /stocktakes [get]
func (h *Handler) HandleGetAll(c *fiber.Ctx) error {
	snapshots, err := h.service.GetAll(c.Context())
	if err != nil {
		return h.fail(c, "List failed", err)
	}
	return c.JSON(snapshots)
}

// HandleGetByID returns one count session.
// @Summary Get Count Session
// @Tags stocktake
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} InventorySnapshot
// @Failure 404 {object} map[string]string "Unknown session"
// @Router /stocktakes/{id} [get]
func (h *Handler) HandleGetByID(c *fiber.Ctx) error {
	snapshot, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Get failed", err)
	}
	return c.JSON(snapshot)
}

// HandleUpdate edits session metadata or requests a status transition.
// @Summary Update Count Session
// @Tags stocktake
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body UpdateRequest true "Partial update"
// @Success 200 {object} InventorySnapshot
// @Failure 404 {object} map[string]string "Unknown session"
// @Failure 409 {object} map[string]string "Illegal state"
// @Router /stocktakes/{id} [patch]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, "Update body parse failed", &ValidationError{Field: "body", Reason: err.Error()})
	}

	snapshot, err := h.service.Update(c.Context(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Update failed", err)
	}
	return c.JSON(snapshot)
}

// HandleDelete removes a session that is not actively counting.
// @Summary Delete Count Session
// @Tags stocktake
// @Param id path string true "Session ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Unknown session"
// @Failure 409 {object} map[string]string "Session is in progress"
// @Router /stocktakes/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, "Delete failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleStart moves a DRAFT session to IN_PROGRESS.
// @Summary Start Count Session
// @Tags stocktake
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} InventorySnapshot
// @Failure 409 {object} map[string]string "Not a draft"
// @Router /stocktakes/{id}/start [post]
func (h *Handler) HandleStart(c *fiber.Ctx) error {
	snapshot, err := h.service.Start(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Start failed", err)
	}
	return c.JSON(snapshot)
}

// HandleComplete commits the session and its stock adjustments.
// @Summary Complete Count Session
// @Description Commit the session: emits one stock adjustment per nonzero-difference item, atomically with the status flip.
// @Tags stocktake
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} CompletionResult
// @Failure 409 {object} map[string]string "Not in progress"
// @Failure 502 {object} map[string]string "Adjustment sink rejected the commit"
// @Router /stocktakes/{id}/complete [post]
func (h *Handler) HandleComplete(c *fiber.Ctx) error {
	result, err := h.service.Complete(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Complete failed", err)
	}
	return c.JSON(result)
}

// HandleCancel discards the session without adjustments.
// @Summary Cancel Count Session
// @Tags stocktake
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} InventorySnapshot
// @Failure 409 {object} map[string]string "Already terminal"
// @Router /stocktakes/{id}/cancel [post]
func (h *Handler) HandleCancel(c *fiber.Ctx) error {
	snapshot, err := h.service.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Cancel failed", err)
	}
	return c.JSON(snapshot)
}

// HandleImport seeds the session from the live catalog, additively.
// @Summary Import Current Stock
// @Description Append a line for every active catalog product not yet in the session. Existing lines and counts are never overwritten.
// @Tags stocktake
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ImportResult
// @Failure 409 {object} map[string]string "Already terminal"
// @Router /stocktakes/{id}/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	result, err := h.service.ImportFromCurrentStock(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Import failed", err)
	}
	return c.JSON(result)
}

// HandleGetStats returns the derived aggregates.
// @Summary Get Session Statistics
// @Tags stocktake
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Stats
// @Failure 404 {object} map[string]string "Unknown session"
// @Router /stocktakes/{id}/stats [get]
func (h *Handler) HandleGetStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Stats failed", err)
	}
	return c.JSON(stats)
}

// HandleListItems returns a filtered, paginated item view.
// @Summary List Session Items
// @Description Read-only item view with free-text filtering, state filtering and fixed-size pagination.
// @Tags stocktake
// @Produce json
// @Param id path string true "Session ID"
// @Param query query string false "Free-text match against name/SKU/barcode"
// @Param state query string false "Item state filter (pending, counted, discrepancy)"
// @Param page query int false "1-indexed page"
// @Success 200 {object} Page
// @Failure 404 {object} map[string]string "Unknown session"
// @Router /stocktakes/{id}/items [get]
func (h *Handler) HandleListItems(c *fiber.Ctx) error {
	snapshot, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Item listing failed", err)
	}

	filtered := FilterItems(snapshot.Items, ItemFilter{
		Query: c.Query("query"),
		State: models.ItemState(c.Query("state")),
	})
	page := Paginate(filtered, c.QueryInt("page", 1), h.service.cfg.EffectivePageSize())
	return c.JSON(page)
}

// HandleAddItem adds one product line.
// @Summary Add Session Item
// @Tags stocktake
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body ItemSnapshot true "Product snapshot"
// @Success 200 {object} InventorySnapshot
// @Failure 422 {object} map[string]string "Duplicate product"
// @Router /stocktakes/{id}/items [post]
func (h *Handler) HandleAddItem(c *fiber.Ctx) error {
	var snap ItemSnapshot
	if err := c.BodyParser(&snap); err != nil {
		return h.fail(c, "Add item body parse failed", &ValidationError{Field: "body", Reason: err.Error()})
	}

	snapshot, err := h.service.AddItem(c.Context(), c.Params("id"), snap)
	if err != nil {
		return h.fail(c, "Add item failed", err)
	}
	return c.JSON(snapshot)
}

// bulkItemsRequest wraps a bulk add payload.
type bulkItemsRequest struct {
	Items []ItemSnapshot `json:"items"`
}

// HandleAddItems adds product lines in bulk, all-or-nothing.
// @Summary Add Session Items (bulk)
// @Tags stocktake
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body bulkItemsRequest true "Product snapshots"
// @Success 200 {object} InventorySnapshot
// @Failure 422 {object} map[string]string "Duplicate product"
// @Router /stocktakes/{id}/items/bulk [post]
func (h *Handler) HandleAddItems(c *fiber.Ctx) error {
	var req bulkItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, "Bulk add body parse failed", &ValidationError{Field: "body", Reason: err.Error()})
	}

	snapshot, err := h.service.AddItems(c.Context(), c.Params("id"), req.Items)
	if err != nil {
		return h.fail(c, "Bulk add failed", err)
	}
	return c.JSON(snapshot)
}

// recordCountRequest carries a physical count.
type recordCountRequest struct {
	CountedQty float64 `json:"counted_qty"`
}

// HandleRecordCount records a physical count for one item.
// @Summary Record Physical Count
// @Description Record the operator's count. Safe to repeat; last write wins. Aggregates are recomputed atomically with the item update.
// @Tags stocktake
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param request body recordCountRequest true "Physical count"
// @Success 200 {object} InventorySnapshot
// @Failure 400 {object} map[string]string "Invalid quantity"
// @Failure 409 {object} map[string]string "Session not in progress"
// @Router /stocktakes/items/{itemId}/count [put]
func (h *Handler) HandleRecordCount(c *fiber.Ctx) error {
	var req recordCountRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, "Count body parse failed", &ValidationError{Field: "body", Reason: err.Error()})
	}

	snapshot, err := h.service.RecordCount(c.Context(), c.Params("itemId"), req.CountedQty)
	if err != nil {
		return h.fail(c, "Record count failed", err)
	}
	return c.JSON(snapshot)
}

// HandleRemoveItem deletes one product line.
// @Summary Remove Session Item
// @Tags stocktake
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} InventorySnapshot
// @Failure 409 {object} map[string]string "Session is terminal"
// @Router /stocktakes/items/{itemId} [delete]
func (h *Handler) HandleRemoveItem(c *fiber.Ctx) error {
	snapshot, err := h.service.RemoveItem(c.Context(), c.Params("itemId"))
	if err != nil {
		return h.fail(c, "Remove item failed", err)
	}
	return c.JSON(snapshot)
}
