// Package models defines the core domain entities for tabsplit.
//
// Conventions shared by every model:
//   - Identifiers are UUID strings. Relationships reference IDs, never pointers,
//     to avoid circular structures.
//   - All monetary values are int64 minor currency units (cents). Decimal
//     rendering happens only at the presentation boundary.
//   - Timestamps are Unix seconds. A zero timestamp means "not set", which is
//     how nullable columns (settled_at, deleted_at) are represented in Go.
package models
