// Package models defines the persistent count session entities.
//
// Difference, item state and session aggregates are derived values: they are
// computed from (ExpectedQty, CountedQty, Counted) on demand and never stored,
// so they cannot drift from the item data.
package models
