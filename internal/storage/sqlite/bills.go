package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/models"
)

// CreateBill persists a bill with its items and assignments in one
// transaction, assigning all IDs.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, "create bill", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bills (id, group_id, title, raw_source, total_amount, currency, split_type, payer_id, created_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.ID, bill.GroupID, bill.Title, nullableString(bill.RawSource),
			bill.TotalAmount, bill.Currency, bill.SplitType,
			bill.PayerID, bill.CreatedBy, bill.CreatedAt,
		)
		if err != nil {
			return errs.Storage("create bill", fmt.Errorf("failed to insert bill: %w", err))
		}
		return insertItems(ctx, tx, bill)
	})
}

// ReplaceBill updates the bill header and replaces the full item list in one
// transaction. Returns NotFoundError if the bill does not exist.
func (s *SQLiteStore) ReplaceBill(ctx context.Context, bill *models.Bill) error {
	return s.withTx(ctx, "replace bill", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bills SET group_id = ?, title = ?, raw_source = ?, total_amount = ?, currency = ?, split_type = ?, payer_id = ? WHERE id = ?`,
			bill.GroupID, bill.Title, nullableString(bill.RawSource),
			bill.TotalAmount, bill.Currency, bill.SplitType, bill.PayerID, bill.ID,
		)
		if err != nil {
			return errs.Storage("replace bill", fmt.Errorf("failed to update bill: %w", err))
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return errs.Storage("replace bill", err)
		}
		if affected == 0 {
			return errs.NotFound("bill", bill.ID)
		}

		// Assignments cascade from items.
		if _, err := tx.ExecContext(ctx, `DELETE FROM bill_items WHERE bill_id = ?`, bill.ID); err != nil {
			return errs.Storage("replace bill", fmt.Errorf("failed to clear items: %w", err))
		}
		return insertItems(ctx, tx, bill)
	})
}

func insertItems(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.BillID = bill.ID

		_, err := tx.ExecContext(ctx,
			`INSERT INTO bill_items (id, bill_id, name, quantity, unit_price) VALUES (?, ?, ?, ?, ?)`,
			item.ID, item.BillID, item.Name, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return errs.Storage("insert bill item", err)
		}

		for j := range item.Assignments {
			assignment := &item.Assignments[j]
			if assignment.ID == "" {
				assignment.ID = uuid.New().String()
			}
			assignment.BillItemID = item.ID

			_, err := tx.ExecContext(ctx,
				`INSERT INTO bill_item_assignments (id, bill_item_id, user_id, settled_at) VALUES (?, ?, ?, ?)`,
				assignment.ID, assignment.BillItemID, assignment.UserID, nullableTime(assignment.SettledAt),
			)
			if err != nil {
				return errs.Storage("insert assignment", err)
			}
		}
	}
	return nil
}

// GetBill retrieves a bill with items and assignments.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	var bill models.Bill
	var rawSource sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, title, raw_source, total_amount, currency, split_type, payer_id, created_by, created_at
		 FROM bills WHERE id = ?`, id,
	).Scan(&bill.ID, &bill.GroupID, &bill.Title, &rawSource,
		&bill.TotalAmount, &bill.Currency, &bill.SplitType,
		&bill.PayerID, &bill.CreatedBy, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("bill", id)
	}
	if err != nil {
		return nil, errs.Storage("get bill", err)
	}
	bill.RawSource = rawSource.String

	if err := s.loadItems(ctx, []*models.Bill{&bill}); err != nil {
		return nil, err
	}
	return &bill, nil
}

// ListBillsByGroup returns the group's bills, newest first, each with items
// and assignments.
func (s *SQLiteStore) ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, title, raw_source, total_amount, currency, split_type, payer_id, created_by, created_at
		 FROM bills WHERE group_id = ? ORDER BY created_at DESC, id`, groupID)
	if err != nil {
		return nil, errs.Storage("list bills", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		var bill models.Bill
		var rawSource sql.NullString
		err := rows.Scan(&bill.ID, &bill.GroupID, &bill.Title, &rawSource,
			&bill.TotalAmount, &bill.Currency, &bill.SplitType,
			&bill.PayerID, &bill.CreatedBy, &bill.CreatedAt)
		if err != nil {
			return nil, errs.Storage("list bills", err)
		}
		bill.RawSource = rawSource.String
		bills = append(bills, &bill)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list bills", err)
	}

	if err := s.loadItems(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// loadItems attaches items and assignments to the given bills with two set
// queries instead of per-bill round trips.
func (s *SQLiteStore) loadItems(ctx context.Context, bills []*models.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	billIDs := make([]any, 0, len(bills))
	billIndex := make(map[string]*models.Bill, len(bills))
	for _, bill := range bills {
		billIDs = append(billIDs, bill.ID)
		billIndex[bill.ID] = bill
	}

	itemRows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, name, quantity, unit_price FROM bill_items
		 WHERE bill_id IN (`+placeholders(len(billIDs))+`) ORDER BY rowid`, billIDs...)
	if err != nil {
		return errs.Storage("load bill items", err)
	}
	defer itemRows.Close()

	var itemIDs []any
	for itemRows.Next() {
		var item models.BillItem
		if err := itemRows.Scan(&item.ID, &item.BillID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return errs.Storage("load bill items", err)
		}
		bill := billIndex[item.BillID]
		bill.Items = append(bill.Items, item)
		itemIDs = append(itemIDs, item.ID)
	}
	if err := itemRows.Err(); err != nil {
		return errs.Storage("load bill items", err)
	}
	if len(itemIDs) == 0 {
		return nil
	}

	// Index items only after every append: pointers into a slice that is
	// still growing would go stale on reallocation.
	itemIndex := make(map[string]*models.BillItem, len(itemIDs))
	for _, bill := range bills {
		for i := range bill.Items {
			itemIndex[bill.Items[i].ID] = &bill.Items[i]
		}
	}

	assignmentRows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_item_id, user_id, settled_at FROM bill_item_assignments
		 WHERE bill_item_id IN (`+placeholders(len(itemIDs))+`) ORDER BY rowid`, itemIDs...)
	if err != nil {
		return errs.Storage("load assignments", err)
	}
	defer assignmentRows.Close()

	for assignmentRows.Next() {
		var assignment models.ItemAssignment
		var settledAt sql.NullInt64
		if err := assignmentRows.Scan(&assignment.ID, &assignment.BillItemID, &assignment.UserID, &settledAt); err != nil {
			return errs.Storage("load assignments", err)
		}
		assignment.SettledAt = settledAt.Int64
		item := itemIndex[assignment.BillItemID]
		item.Assignments = append(item.Assignments, assignment)
	}
	if err := assignmentRows.Err(); err != nil {
		return errs.Storage("load assignments", err)
	}
	return nil
}

// DeleteBill removes a bill, cascading items and assignments.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return errs.Storage("delete bill", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("delete bill", err)
	}
	if affected == 0 {
		return errs.NotFound("bill", id)
	}
	return nil
}
