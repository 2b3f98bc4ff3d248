package models

// SplitTypeEqual is the only implemented cost-division strategy: each item's
// subtotal is divided equally among its distinct assignees.
const SplitTypeEqual = "equal"

// Bill is a recorded expense belonging to exactly one group. The total is
// derived from its items, never supplied by the caller. Updates replace the
// full item list; items are never patched individually.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// GroupID is the owning group.
	GroupID string

	// Title is the human-readable name for the bill.
	Title string

	// RawSource optionally keeps the markdown table the bill was ingested
	// from, for audit and re-editing.
	RawSource string

	// TotalAmount is the derived sum of item subtotals, in minor units.
	TotalAmount int64

	// Currency is the ISO 4217 code the amounts are denominated in.
	Currency string

	// SplitType tags the cost-division strategy; only SplitTypeEqual is
	// implemented.
	SplitType string

	// PayerID is the user who fronted the money and is owed on this bill's
	// unsettled assignments.
	PayerID string

	// CreatedBy is the user who recorded the bill; may differ from the payer.
	CreatedBy string

	CreatedAt int64

	Items []BillItem
}

// BillItem is a single line on a bill. Subtotal is UnitPrice x Quantity.
type BillItem struct {
	ID       string
	BillID   string
	Name     string
	Quantity int64
	// UnitPrice is the per-unit cost in minor units, never negative.
	UnitPrice int64

	Assignments []ItemAssignment
}

// Subtotal returns the item's total cost in minor units.
func (i BillItem) Subtotal() int64 {
	return i.UnitPrice * i.Quantity
}

// ItemAssignment records that a user shares the cost of a bill item. Unique
// per (item, user). The share itself is recomputed on every ledger read from
// the item's price and assignee count, so editing items never leaves stale
// share amounts behind.
type ItemAssignment struct {
	ID         string
	BillItemID string
	UserID     string

	// SettledAt is stamped by the settlement processor, zero while the debt
	// is outstanding.
	SettledAt int64
}

// AssignmentRow is the flattened join of an assignment with its item, bill
// and group, as fetched in one query for ledger aggregation.
type AssignmentRow struct {
	AssignmentID string
	UserID       string
	Settled      bool
	ItemID       string
	UnitPrice    int64
	Quantity     int64
	PayerID      string
	GroupID      string
	GroupName    string
}
