// Package stocktake implements the physical-inventory reconciliation engine.
//
// A count session captures the theoretical stock of a product set, accepts
// physical counts from operators, derives per-item differences and aggregate
// statistics, and on completion commits one stock adjustment per
// nonzero-difference item back to the catalog.
//
// # State machine
//
//	DRAFT -> IN_PROGRESS -> COMPLETED
//	DRAFT | IN_PROGRESS  -> CANCELLED
//
// COMPLETED and CANCELLED are terminal; every mutation against a terminal
// session fails with InvalidStateError.
//
// # Consistency
//
// Mutations are serialized per session id. Differences, item states and
// aggregate statistics are pure functions of the item collection, recomputed
// into an immutable InventorySnapshot after every mutation, so no reader can
// observe item data and statistics from different moments.
//
// Completion is transactional: all adjustments and the status flip commit
// together or not at all. If the adjustment sink rejects any item, the
// session stays IN_PROGRESS and the caller may retry.
package stocktake
