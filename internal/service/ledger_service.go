package service

import (
	"context"

	"github.com/tabsplit/tabsplit/internal/ledger"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// LedgerService produces balance views. It owns no arithmetic; it fetches
// accounts and assignment rows and hands them to the ledger package.
type LedgerService struct {
	store    storage.Store
	currency string
}

// NewLedgerService creates a LedgerService reporting balances in the given
// display currency.
func NewLedgerService(store storage.Store, currency string) *LedgerService {
	if currency == "" {
		currency = "USD"
	}
	return &LedgerService{store: store, currency: currency}
}

// GlobalBalances returns every live user's net position across all groups,
// sorted ascending by balance.
func (s *LedgerService) GlobalBalances(ctx context.Context) ([]ledger.UserBalance, error) {
	accounts, rows, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.GlobalBalances(accounts, rows, s.currency), nil
}

// GroupBalances returns per-group member balances, omitting settled members
// and empty groups.
func (s *LedgerService) GroupBalances(ctx context.Context) ([]ledger.GroupBalance, error) {
	accounts, rows, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.GroupBalances(accounts, rows), nil
}

func (s *LedgerService) fetch(ctx context.Context) ([]ledger.Account, []ledger.Assignment, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	assignmentRows, err := s.store.ListAssignmentRows(ctx)
	if err != nil {
		return nil, nil, err
	}

	accounts := make([]ledger.Account, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, ledger.Account{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	rows := make([]ledger.Assignment, 0, len(assignmentRows))
	for _, r := range assignmentRows {
		rows = append(rows, toLedgerAssignment(r))
	}
	return accounts, rows, nil
}

func toLedgerAssignment(r models.AssignmentRow) ledger.Assignment {
	return ledger.Assignment{
		ItemID:       r.ItemID,
		GroupID:      r.GroupID,
		GroupName:    r.GroupName,
		UserID:       r.UserID,
		PayerID:      r.PayerID,
		ItemSubtotal: r.UnitPrice * r.Quantity,
		Settled:      r.Settled,
	}
}
