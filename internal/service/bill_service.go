// Package service implements the business operations over the entity store:
// bill ingestion, settlement, balance reads, and user/group management.
package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/metrics"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// ItemDraft is one line of a bill submission. AssignedUserIDs may contain
// duplicates; they are deduplicated before persisting.
type ItemDraft struct {
	Name            string
	Quantity        int64
	UnitPrice       int64
	AssignedUserIDs []string
}

// BillDraft is a bill submission. TotalAmount is never part of the draft; it
// is always derived from the items.
type BillDraft struct {
	GroupID   string
	Title     string
	RawSource string
	Currency  string
	PayerID   string
	CreatedBy string
	Items     []ItemDraft
}

// SettlePolicy decides whether an actor may settle the given assignments.
// The default policy allows everyone; deployments wanting payer-only or
// debtor-only settlement plug in their own.
type SettlePolicy func(ctx context.Context, actorID string, ids []string) error

// AllowAllSettle is the default permissive settlement policy.
func AllowAllSettle(context.Context, string, []string) error { return nil }

// BillService handles bill ingestion, reads and settlement.
type BillService struct {
	store    storage.Store
	policy   SettlePolicy
	currency string
}

// NewBillService creates a BillService. policy may be nil for the permissive
// default; currency is the fallback when a draft carries none.
func NewBillService(store storage.Store, policy SettlePolicy, currency string) *BillService {
	if policy == nil {
		policy = AllowAllSettle
	}
	if currency == "" {
		currency = "USD"
	}
	return &BillService{store: store, policy: policy, currency: currency}
}

// CreateBill validates the draft and persists it atomically, returning the
// new bill's id.
func (s *BillService) CreateBill(ctx context.Context, draft BillDraft) (string, error) {
	bill, err := s.buildBill(draft, false)
	if err != nil {
		return "", err
	}
	if err := s.checkMemberships(ctx, bill, false); err != nil {
		return "", err
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return "", err
	}

	source := "items"
	if bill.RawSource != "" {
		source = "markdown"
	}
	metrics.BillsCreated.WithLabelValues(source).Inc()
	slog.Info("bill created",
		"bill_id", bill.ID, "group_id", bill.GroupID,
		"total", bill.TotalAmount, "items", len(bill.Items))
	return bill.ID, nil
}

// UpdateBill validates the draft and replaces the stored bill, header and
// full item list, in one transaction.
func (s *BillService) UpdateBill(ctx context.Context, billID string, draft BillDraft) error {
	bill, err := s.buildBill(draft, true)
	if err != nil {
		return err
	}
	bill.ID = billID
	if err := s.checkMemberships(ctx, bill, true); err != nil {
		return err
	}

	if err := s.store.ReplaceBill(ctx, bill); err != nil {
		return err
	}
	slog.Info("bill updated", "bill_id", billID, "total", bill.TotalAmount, "items", len(bill.Items))
	return nil
}

// GetBill returns a bill with items and assignments.
func (s *BillService) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return s.store.GetBill(ctx, billID)
}

// ListBills returns a group's bills, newest first.
func (s *BillService) ListBills(ctx context.Context, groupID string) ([]*models.Bill, error) {
	if groupID == "" {
		return nil, errs.Validationf("groupId is required")
	}
	return s.store.ListBillsByGroup(ctx, groupID)
}

// DeleteBill removes a bill with its items and assignments.
func (s *BillService) DeleteBill(ctx context.Context, billID string) error {
	return s.store.DeleteBill(ctx, billID)
}

// SettleAssignments stamps the given assignments settled and returns how many
// actually transitioned. Already-settled and unknown ids are skipped, so
// retrying is harmless.
func (s *BillService) SettleAssignments(ctx context.Context, actorID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, errs.Validationf("empty id list")
	}
	if err := s.policy(ctx, actorID, ids); err != nil {
		return 0, err
	}

	count, err := s.store.SettleAssignments(ctx, ids, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	metrics.AssignmentsSettled.Add(float64(count))
	slog.Info("assignments settled", "actor_id", actorID, "requested", len(ids), "settled", count)
	return count, nil
}

// buildBill validates the draft and converts it to the storage model. The
// validation order is fixed: shape errors first, then per-item errors in item
// order, so a draft with several problems reports a stable one.
func (s *BillService) buildBill(draft BillDraft, update bool) (*models.Bill, error) {
	if len(draft.Items) == 0 {
		return nil, errs.Validationf("bill must have at least one item")
	}
	if draft.GroupID == "" {
		return nil, errs.Validationf("groupId is required")
	}
	if draft.PayerID == "" {
		return nil, errs.Validationf("payerId is required")
	}

	currency := draft.Currency
	if currency == "" {
		currency = s.currency
	}

	bill := &models.Bill{
		GroupID:   draft.GroupID,
		Title:     draft.Title,
		RawSource: draft.RawSource,
		Currency:  currency,
		SplitType: models.SplitTypeEqual,
		PayerID:   draft.PayerID,
		CreatedBy: draft.CreatedBy,
	}

	var total int64
	for _, item := range draft.Items {
		if item.UnitPrice < 0 {
			return nil, errs.Validationf("item %q has a negative price", item.Name)
		}
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		subtotal := item.UnitPrice * quantity

		assignees := dedupe(item.AssignedUserIDs)
		if subtotal > 0 && len(assignees) == 0 {
			return nil, errs.Validationf("item %q has a cost but no assignees", item.Name)
		}

		assignments := make([]models.ItemAssignment, 0, len(assignees))
		for _, userID := range assignees {
			assignments = append(assignments, models.ItemAssignment{UserID: userID})
		}

		bill.Items = append(bill.Items, models.BillItem{
			Name:        item.Name,
			Quantity:    quantity,
			UnitPrice:   item.UnitPrice,
			Assignments: assignments,
		})
		total += subtotal
	}
	bill.TotalAmount = total
	return bill, nil
}

// checkMemberships verifies every distinct assignee (and on updates the
// payer) holds a membership in the bill's group, with a single count query.
func (s *BillService) checkMemberships(ctx context.Context, bill *models.Bill, includePayer bool) error {
	seen := make(map[string]bool)
	var userIDs []string
	for _, item := range bill.Items {
		for _, a := range item.Assignments {
			if !seen[a.UserID] {
				seen[a.UserID] = true
				userIDs = append(userIDs, a.UserID)
			}
		}
	}
	if includePayer && !seen[bill.PayerID] {
		seen[bill.PayerID] = true
		userIDs = append(userIDs, bill.PayerID)
	}
	if len(userIDs) == 0 {
		return nil
	}
	sort.Strings(userIDs)

	count, err := s.store.CountMemberships(ctx, bill.GroupID, userIDs)
	if err != nil {
		return err
	}
	if count != len(userIDs) {
		return errs.Validationf("all assigned users must be members of the group")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
