package stocktake

import (
	"fmt"

	"stocktake/feature/stocktake/models"
)

// ValidationError reports malformed input. Nothing is mutated.
type ValidationError struct {
	// Field is the offending input field.
	Field string
	// Reason describes why the value was rejected.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidStateError reports an operation that is not legal in the session's
// current status. Nothing is mutated.
type InvalidStateError struct {
	// Op is the attempted operation.
	Op string
	// Status is the session status at the time of the attempt.
	Status models.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a %s inventory", e.Op, e.Status)
}

// DuplicateItemError reports an attempt to add a product that is already part
// of the session. Nothing is mutated.
type DuplicateItemError struct {
	// ProductID is the duplicated product reference.
	ProductID string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("product %s is already part of the inventory", e.ProductID)
}

// NotFoundError reports an unknown inventory or item id.
type NotFoundError struct {
	// Kind names the missing entity ("inventory", "item").
	Kind string
	// ID is the id that failed to resolve.
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// AdjustmentError reports that the stock adjustment sink rejected one of the
// adjustments during completion. The whole completion attempt rolls back; the
// session stays IN_PROGRESS and the caller may retry.
type AdjustmentError struct {
	// ProductID is the product whose adjustment failed.
	ProductID string
	// Err is the sink's error.
	Err error
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("stock adjustment for product %s failed: %v", e.ProductID, e.Err)
}

func (e *AdjustmentError) Unwrap() error {
	return e.Err
}
