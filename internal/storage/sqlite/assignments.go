package sqlite

import (
	"context"
	"database/sql"

	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/models"
)

// ListAssignmentRows returns every assignment joined to its item, bill and
// group, for ledger aggregation. Settled rows are included; the aggregation
// needs them to keep each item's divisor correct.
func (s *SQLiteStore) ListAssignmentRows(ctx context.Context) ([]models.AssignmentRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.user_id, a.settled_at IS NOT NULL,
		       i.id, i.unit_price, i.quantity,
		       b.payer_id, g.id, g.name
		FROM bill_item_assignments a
		JOIN bill_items i ON i.id = a.bill_item_id
		JOIN bills b ON b.id = i.bill_id
		JOIN groups g ON g.id = b.group_id
		ORDER BY i.id, a.user_id`)
	if err != nil {
		return nil, errs.Storage("list assignment rows", err)
	}
	defer rows.Close()

	var out []models.AssignmentRow
	for rows.Next() {
		var r models.AssignmentRow
		err := rows.Scan(&r.AssignmentID, &r.UserID, &r.Settled,
			&r.ItemID, &r.UnitPrice, &r.Quantity,
			&r.PayerID, &r.GroupID, &r.GroupName)
		if err != nil {
			return nil, errs.Storage("list assignment rows", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list assignment rows", err)
	}
	return out, nil
}

// SettleAssignments stamps settledAt on every listed assignment that is still
// unsettled and returns the number of rows transitioned. Unknown and
// already-settled ids are skipped, which makes the operation idempotent.
func (s *SQLiteStore) SettleAssignments(ctx context.Context, ids []string, settledAt int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, settledAt)
	for _, id := range ids {
		args = append(args, id)
	}

	var affected int64
	err := s.withTx(ctx, "settle assignments", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bill_item_assignments SET settled_at = ?
			 WHERE id IN (`+placeholders(len(ids))+`) AND settled_at IS NULL`, args...)
		if err != nil {
			return errs.Storage("settle assignments", err)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return errs.Storage("settle assignments", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
