package stocktake

import (
	"context"
	"fmt"
	"math"
	"time"

	catmodels "stocktake/feature/catalog/models"
	"stocktake/feature/stocktake/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Catalog is the product catalog collaborator consumed by the engine.
type Catalog interface {
	// Snapshot returns the active products at call time.
	Snapshot(ctx context.Context) ([]catmodels.Product, error)
	// FindByIDs resolves product references, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]catmodels.Product, error)
}

// AdjustmentSink applies a signed stock delta within the given transaction.
// It is invoked once per nonzero-difference item during completion.
type AdjustmentSink interface {
	ApplyAdjustment(ctx context.Context, tx *gorm.DB, productID string, delta float64) error
}

// ItemSnapshot is a theoretical-quantity capture used to seed session items.
type ItemSnapshot struct {
	ProductID      string  `json:"product_id"`
	TheoreticalQty float64 `json:"theoretical_qty"`
}

// CreateRequest describes a new count session.
type CreateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedBy   string         `json:"created_by"`
	Items       []ItemSnapshot `json:"items"`
}

// UpdateRequest carries a partial session update. A status change is routed
// through the same transition rules as the dedicated operations.
type UpdateRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Status      *models.Status `json:"status"`
}

// Adjustment is one stock correction emitted by a completed session.
type Adjustment struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Delta       float64 `json:"delta"`
}

// CompletionResult summarizes a committed completion.
type CompletionResult struct {
	Inventory        *InventorySnapshot `json:"inventory"`
	Adjustments      []Adjustment       `json:"adjustments"`
	SkippedUncounted int                `json:"skipped_uncounted"`
	ArchiveObject    string             `json:"archive_object,omitempty"`
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Added     int                `json:"added"`
	Inventory *InventorySnapshot `json:"inventory"`
}

// Service is the reconciliation engine. It owns the session state machine,
// serializes mutations per session id, and recomputes the derived statistics
// after every mutation so readers always get a consistent snapshot.
type Service struct {
	repo    *Repository
	catalog Catalog
	sink    AdjustmentSink
	archive *Archive
	cfg     Config
	logger  *zap.Logger
	locks   *sessionLocks
}

// NewService creates the reconciliation engine. archive may be nil when no
// object storage is configured.
func NewService(repo *Repository, catalog Catalog, sink AdjustmentSink, archive *Archive, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		sink:    sink,
		archive: archive,
		cfg:     cfg,
		logger:  logger,
		locks:   newSessionLocks(),
	}
}

// Create opens a new count session. With no items the session starts in DRAFT;
// with items it goes straight to IN_PROGRESS with one line per snapshot.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*InventorySnapshot, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	now := time.Now()
	inv := &models.Inventory{
		ID:          uuid.NewString(),
		Number:      newNumber(now),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		Status:      models.StatusDraft,
	}

	if len(req.Items) > 0 {
		items, err := s.buildItems(ctx, inv.ID, req.Items, nil, 0)
		if err != nil {
			return nil, err
		}
		inv.Items = items
		inv.Status = models.StatusInProgress
		inv.StartedAt = &now
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Count session created",
		zap.String("inventory_id", inv.ID),
		zap.String("number", inv.Number),
		zap.String("status", string(inv.Status)),
		zap.Int("items", len(inv.Items)),
	)

	return NewInventorySnapshot(inv), nil
}

// GetAll returns snapshots of every session, newest first.
func (s *Service) GetAll(ctx context.Context) ([]*InventorySnapshot, error) {
	invs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]*InventorySnapshot, 0, len(invs))
	for i := range invs {
		snapshots = append(snapshots, NewInventorySnapshot(&invs[i]))
	}
	return snapshots, nil
}

// GetByID returns a snapshot of one session.
func (s *Service) GetByID(ctx context.Context, id string) (*InventorySnapshot, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewInventorySnapshot(inv), nil
}

// GetStats returns the derived aggregates for one session.
func (s *Service) GetStats(ctx context.Context, id string) (*models.Stats, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := inv.Stats()
	return &stats, nil
}

// Update edits name/description of a non-terminal session. A requested status
// change is dispatched to the matching state transition.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*InventorySnapshot, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status.Terminal() {
		return nil, &InvalidStateError{Op: "update", Status: inv.Status}
	}

	fields := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	// A compound update is all-or-nothing: the field changes ride along with
	// the status transition's own write, so a rejected or failed transition
	// leaves the name and description untouched.
	if req.Status != nil && *req.Status != inv.Status {
		switch *req.Status {
		case models.StatusInProgress:
			return s.startLocked(ctx, inv, fields)
		case models.StatusCancelled:
			return s.cancelLocked(ctx, inv, fields)
		case models.StatusCompleted:
			result, err := s.completeLocked(ctx, inv, fields)
			if err != nil {
				return nil, err
			}
			return result.Inventory, nil
		default:
			return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("cannot transition to %s", *req.Status)}
		}
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, nil, id, fields); err != nil {
			return nil, err
		}
	}
	applyFields(inv, fields)

	return NewInventorySnapshot(inv), nil
}

// applyFields mirrors a committed field write onto the in-memory record so
// the returned snapshot matches the row.
func applyFields(inv *models.Inventory, fields map[string]any) {
	if name, ok := fields["name"].(string); ok {
		inv.Name = name
	}
	if desc, ok := fields["description"].(string); ok {
		inv.Description = desc
	}
}

// Start moves a DRAFT session to IN_PROGRESS.
func (s *Service) Start(ctx context.Context, id string) (*InventorySnapshot, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.startLocked(ctx, inv, nil)
}

func (s *Service) startLocked(ctx context.Context, inv *models.Inventory, extra map[string]any) (*InventorySnapshot, error) {
	if inv.Status != models.StatusDraft {
		return nil, &InvalidStateError{Op: "start", Status: inv.Status}
	}

	now := time.Now()
	fields := map[string]any{
		"status":     models.StatusInProgress,
		"started_at": now,
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.repo.UpdateFields(ctx, nil, inv.ID, fields); err != nil {
		return nil, err
	}

	applyFields(inv, extra)
	inv.Status = models.StatusInProgress
	inv.StartedAt = &now

	s.logger.Info("Count session started", zap.String("inventory_id", inv.ID))
	return NewInventorySnapshot(inv), nil
}

// Cancel discards a DRAFT or IN_PROGRESS session. No adjustments are emitted.
func (s *Service) Cancel(ctx context.Context, id string) (*InventorySnapshot, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cancelLocked(ctx, inv, nil)
}

func (s *Service) cancelLocked(ctx context.Context, inv *models.Inventory, extra map[string]any) (*InventorySnapshot, error) {
	if inv.Status.Terminal() {
		return nil, &InvalidStateError{Op: "cancel", Status: inv.Status}
	}

	fields := map[string]any{
		"status": models.StatusCancelled,
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.repo.UpdateFields(ctx, nil, inv.ID, fields); err != nil {
		return nil, err
	}

	applyFields(inv, extra)
	inv.Status = models.StatusCancelled

	s.logger.Info("Count session cancelled", zap.String("inventory_id", inv.ID))
	return NewInventorySnapshot(inv), nil
}

// Delete removes a session entirely. Refused while a count is running so an
// active session can never be lost silently.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.acquire(id)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status == models.StatusInProgress {
		return &InvalidStateError{Op: "delete", Status: inv.Status}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Count session deleted", zap.String("inventory_id", id))
	return nil
}

// AddItem adds a single product line to a DRAFT or IN_PROGRESS session.
func (s *Service) AddItem(ctx context.Context, id string, snap ItemSnapshot) (*InventorySnapshot, error) {
	return s.AddItems(ctx, id, []ItemSnapshot{snap})
}

// AddItems adds product lines in bulk. The whole batch is validated before
// anything is written: one bad snapshot rejects the entire call.
func (s *Service) AddItems(ctx context.Context, id string, snaps []ItemSnapshot) (*InventorySnapshot, error) {
	if len(snaps) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "must not be empty"}
	}

	unlock := s.locks.acquire(id)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status.Terminal() {
		return nil, &InvalidStateError{Op: "add items to", Status: inv.Status}
	}

	items, err := s.buildItems(ctx, inv.ID, snaps, inv.Items, len(inv.Items))
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddItems(ctx, items); err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, items...)

	s.logger.Info("Items added",
		zap.String("inventory_id", inv.ID),
		zap.Int("count", len(items)),
	)
	return NewInventorySnapshot(inv), nil
}

// RecordCount records the physical count for one line item. Last write wins;
// re-recording the same quantity is a no-op for both item and aggregates.
func (s *Service) RecordCount(ctx context.Context, itemID string, qty float64) (*InventorySnapshot, error) {
	if err := validateQty("counted_qty", qty); err != nil {
		return nil, err
	}

	// Resolve the owning session first so the lock is taken on its id.
	probe, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(probe.InventoryID)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, probe.InventoryID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.StatusInProgress {
		return nil, &InvalidStateError{Op: "record a count for", Status: inv.Status}
	}

	// Re-check under the lock: the item may have been removed meanwhile.
	var item *models.InventoryItem
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			item = &inv.Items[i]
			break
		}
	}
	if item == nil {
		return nil, &NotFoundError{Kind: "item", ID: itemID}
	}

	if err := s.repo.UpdateItemCount(ctx, itemID, qty); err != nil {
		return nil, err
	}
	item.CountedQty = qty
	item.Counted = true

	s.logger.Debug("Count recorded",
		zap.String("inventory_id", inv.ID),
		zap.String("item_id", itemID),
		zap.Float64("counted_qty", qty),
		zap.Float64("difference", item.Difference()),
	)
	return NewInventorySnapshot(inv), nil
}

// RemoveItem deletes a line item from a non-terminal session.
func (s *Service) RemoveItem(ctx context.Context, itemID string) (*InventorySnapshot, error) {
	probe, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(probe.InventoryID)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, probe.InventoryID)
	if err != nil {
		return nil, err
	}
	if inv.Status.Terminal() {
		return nil, &InvalidStateError{Op: "remove items from", Status: inv.Status}
	}

	if err := s.repo.RemoveItem(ctx, itemID); err != nil {
		return nil, err
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			break
		}
	}

	s.logger.Info("Item removed",
		zap.String("inventory_id", inv.ID),
		zap.String("item_id", itemID),
	)
	return NewInventorySnapshot(inv), nil
}

// ImportFromCurrentStock seeds the session from the live catalog snapshot.
// The import is additive only: products already part of the session keep
// their lines and any recorded counts; only missing products are appended.
func (s *Service) ImportFromCurrentStock(ctx context.Context, id string) (*ImportResult, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status.Terminal() {
		return nil, &InvalidStateError{Op: "import into", Status: inv.Status}
	}

	products, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot failed: %w", err)
	}

	present := make(map[string]struct{}, len(inv.Items))
	for i := range inv.Items {
		present[inv.Items[i].ProductID] = struct{}{}
	}

	seq := len(inv.Items)
	var items []models.InventoryItem
	for _, p := range products {
		if _, ok := present[p.ID]; ok {
			continue
		}
		items = append(items, newItem(inv.ID, p, p.Quantity, seq))
		seq++
	}

	if err := s.repo.AddItems(ctx, items); err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, items...)

	s.logger.Info("Catalog imported",
		zap.String("inventory_id", inv.ID),
		zap.Int("added", len(items)),
		zap.Int("total", len(inv.Items)),
	)
	return &ImportResult{Added: len(items), Inventory: NewInventorySnapshot(inv)}, nil
}

// Complete commits an IN_PROGRESS session: one stock adjustment per
// nonzero-difference item, the status flip and the completion timestamp all
// in a single transaction. If any adjustment is rejected the whole attempt
// rolls back and the session stays IN_PROGRESS.
func (s *Service) Complete(ctx context.Context, id string) (*CompletionResult, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.completeLocked(ctx, inv, nil)
}

func (s *Service) completeLocked(ctx context.Context, inv *models.Inventory, extra map[string]any) (*CompletionResult, error) {
	if inv.Status != models.StatusInProgress {
		return nil, &InvalidStateError{Op: "complete", Status: inv.Status}
	}

	adjustments, skipped := s.planAdjustments(inv)

	now := time.Now()
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		for _, adj := range adjustments {
			if err := s.sink.ApplyAdjustment(ctx, tx, adj.ProductID, adj.Delta); err != nil {
				return &AdjustmentError{ProductID: adj.ProductID, Err: err}
			}
		}
		fields := map[string]any{
			"status":       models.StatusCompleted,
			"completed_at": now,
		}
		for k, v := range extra {
			fields[k] = v
		}
		return s.repo.UpdateFields(ctx, tx, inv.ID, fields)
	})
	if err != nil {
		s.logger.Error("Completion failed, session stays in progress",
			zap.String("inventory_id", inv.ID),
			zap.Error(err),
		)
		return nil, err
	}

	applyFields(inv, extra)
	inv.Status = models.StatusCompleted
	inv.CompletedAt = &now

	result := &CompletionResult{
		Inventory:        NewInventorySnapshot(inv),
		Adjustments:      adjustments,
		SkippedUncounted: skipped,
	}

	// The committed transaction is the source of truth; a failed archive
	// write is logged and surfaced on the result but never undoes it.
	if s.archive != nil {
		key, archiveErr := s.archive.Store(ctx, result)
		if archiveErr != nil {
			s.logger.Warn("Report archive failed",
				zap.String("inventory_id", inv.ID),
				zap.Error(archiveErr),
			)
		} else {
			result.ArchiveObject = key
		}
	}

	s.logger.Info("Count session completed",
		zap.String("inventory_id", inv.ID),
		zap.Int("adjustments", len(adjustments)),
		zap.Int("skipped_uncounted", skipped),
	)
	return result, nil
}

// planAdjustments derives the stock corrections for completion. Uncounted
// items are skipped unless policy says to treat them as counted zero.
func (s *Service) planAdjustments(inv *models.Inventory) ([]Adjustment, int) {
	adjustments := make([]Adjustment, 0, len(inv.Items))
	skipped := 0

	for i := range inv.Items {
		it := &inv.Items[i]

		var delta float64
		switch {
		case it.Counted:
			delta = it.Difference()
		case s.cfg.CountMissingAsZero:
			delta = -it.ExpectedQty
		default:
			skipped++
			continue
		}

		if delta == 0 {
			continue
		}
		adjustments = append(adjustments, Adjustment{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Delta:       delta,
		})
	}

	return adjustments, skipped
}

// buildItems validates snapshots and resolves them against the catalog.
// existing guards duplicate products already in the session.
func (s *Service) buildItems(ctx context.Context, inventoryID string, snaps []ItemSnapshot, existing []models.InventoryItem, startSeq int) ([]models.InventoryItem, error) {
	seen := make(map[string]struct{}, len(existing)+len(snaps))
	for i := range existing {
		seen[existing[i].ProductID] = struct{}{}
	}

	ids := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		if snap.ProductID == "" {
			return nil, &ValidationError{Field: "product_id", Reason: "must not be empty"}
		}
		if err := validateQty("theoretical_qty", snap.TheoreticalQty); err != nil {
			return nil, err
		}
		if _, dup := seen[snap.ProductID]; dup {
			return nil, &DuplicateItemError{ProductID: snap.ProductID}
		}
		seen[snap.ProductID] = struct{}{}
		ids = append(ids, snap.ProductID)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}

	items := make([]models.InventoryItem, 0, len(snaps))
	for i, snap := range snaps {
		product, ok := products[snap.ProductID]
		if !ok {
			return nil, &ValidationError{Field: "product_id", Reason: fmt.Sprintf("unknown product %s", snap.ProductID)}
		}
		items = append(items, newItem(inventoryID, product, snap.TheoreticalQty, startSeq+i))
	}
	return items, nil
}

// newItem builds a line item with the product snapshot captured at add-time.
func newItem(inventoryID string, p catmodels.Product, expected float64, seq int) models.InventoryItem {
	return models.InventoryItem{
		ID:          uuid.NewString(),
		InventoryID: inventoryID,
		ProductID:   p.ID,
		ProductName: p.Name,
		SKU:         p.SKU,
		Barcode:     p.Barcode,
		ExpectedQty: expected,
		Seq:         seq,
	}
}

// validateQty rejects negative and non-finite quantities.
func validateQty(field string, q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return &ValidationError{Field: field, Reason: "must be a finite number"}
	}
	if q < 0 {
		return &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// newNumber builds a human-readable session number, e.g. ST-20240115-4f2a91c3.
func newNumber(t time.Time) string {
	return fmt.Sprintf("ST-%s-%s", t.Format("20060102"), uuid.NewString()[:8])
}
