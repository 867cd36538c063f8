// Package catalog implements the product catalog collaborator.
//
// The stocktake engine consumes it through two contracts: Snapshot, which
// captures the theoretical quantities for new count sessions, and
// ApplyAdjustment, which reconciles live stock with physical counts when a
// session completes. A small read-only HTTP surface exposes the assortment
// and a low-stock report.
package catalog
