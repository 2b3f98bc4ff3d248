// Package ledger computes net balances from unsettled bill item assignments.
//
// It is a pure read-side aggregation: the service layer fetches assignment
// rows and user accounts from the store and hands them in; nothing here
// mutates anything. All arithmetic is integer minor-unit (cent) math.
// Floating point drifts visibly over dozens of fractional shares, so it is
// banned from accumulation entirely.
package ledger

import "sort"

// Assignment is one (item, user) share feeding the aggregation. Rows for
// settled assignments are included so the divisor (the item's distinct
// assignee count) stays correct, but only unsettled rows move balances.
type Assignment struct {
	ItemID       string
	GroupID      string
	GroupName    string
	UserID       string
	PayerID      string
	ItemSubtotal int64
	Settled      bool
}

// Account identifies a user appearing in balance output.
type Account struct {
	ID       string
	Username string
	Email    string
}

// UserBalance is one user's signed net position across all groups.
// Positive means the user is owed money.
type UserBalance struct {
	UserID   string
	Username string
	Email    string
	// NetMinor is the net balance in minor currency units.
	NetMinor int64
	Currency string
}

// MemberBalance is one user's signed net position within a single group.
type MemberBalance struct {
	UserID       string
	Username     string
	BalanceMinor int64
}

// GroupBalance is a group's non-zero member balances.
type GroupBalance struct {
	GroupID   string
	GroupName string
	Members   []MemberBalance
}

// GlobalBalances returns a net balance for every account, including users
// with no activity, sorted ascending by balance so the largest debtors come
// first and the largest creditors last.
func GlobalBalances(accounts []Account, rows []Assignment, currency string) []UserBalance {
	balances := make(map[string]int64, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = 0
	}
	applyShares(rows, func(debtorID, creditorID string, share int64) {
		balances[debtorID] -= share
		balances[creditorID] += share
	})

	out := make([]UserBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, UserBalance{
			UserID:   a.ID,
			Username: a.Username,
			Email:    a.Email,
			NetMinor: balances[a.ID],
			Currency: currency,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetMinor != out[j].NetMinor {
			return out[i].NetMinor < out[j].NetMinor
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// GroupBalances partitions the same computation per group. Members whose
// balance nets to zero are dropped, and groups left with no entries are
// omitted entirely; a fully settled group adds no information.
func GroupBalances(accounts []Account, rows []Assignment) []GroupBalance {
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Username
	}

	type groupAcc struct {
		name     string
		balances map[string]int64
	}
	groups := make(map[string]*groupAcc)
	var order []string

	byGroup := make(map[string][]Assignment)
	for _, row := range rows {
		if _, ok := groups[row.GroupID]; !ok {
			groups[row.GroupID] = &groupAcc{name: row.GroupName, balances: make(map[string]int64)}
			order = append(order, row.GroupID)
		}
		byGroup[row.GroupID] = append(byGroup[row.GroupID], row)
	}

	for groupID, groupRows := range byGroup {
		acc := groups[groupID]
		applyShares(groupRows, func(debtorID, creditorID string, share int64) {
			acc.balances[debtorID] -= share
			acc.balances[creditorID] += share
		})
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := groups[order[i]], groups[order[j]]
		if a.name != b.name {
			return a.name < b.name
		}
		return order[i] < order[j]
	})

	var out []GroupBalance
	for _, groupID := range order {
		acc := groups[groupID]
		var members []MemberBalance
		for userID, balance := range acc.balances {
			if balance == 0 {
				continue
			}
			name, ok := names[userID]
			if !ok {
				name = "Unknown"
			}
			members = append(members, MemberBalance{
				UserID:       userID,
				Username:     name,
				BalanceMinor: balance,
			})
		}
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			if members[i].BalanceMinor != members[j].BalanceMinor {
				return members[i].BalanceMinor < members[j].BalanceMinor
			}
			return members[i].UserID < members[j].UserID
		})
		out = append(out, GroupBalance{GroupID: groupID, GroupName: acc.name, Members: members})
	}
	return out
}

// applyShares walks the rows item by item and emits each unsettled share as a
// (debtor, creditor, amount) transfer. A payer assigned to their own item is
// a no-op: that slice of the cost never moves.
//
// Each item's subtotal is divided across its distinct assignees by largest
// remainder: everyone gets the floor, and the first (subtotal mod n)
// assignees in user-id order get one extra cent. The per-item shares
// therefore always sum exactly to the subtotal, which is what makes the
// whole ledger conserve to zero.
func applyShares(rows []Assignment, emit func(debtorID, creditorID string, share int64)) {
	byItem := make(map[string][]Assignment)
	var itemOrder []string
	for _, row := range rows {
		if _, ok := byItem[row.ItemID]; !ok {
			itemOrder = append(itemOrder, row.ItemID)
		}
		byItem[row.ItemID] = append(byItem[row.ItemID], row)
	}

	for _, itemID := range itemOrder {
		itemRows := byItem[itemID]
		sort.Slice(itemRows, func(i, j int) bool {
			return itemRows[i].UserID < itemRows[j].UserID
		})

		n := int64(len(itemRows))
		subtotal := itemRows[0].ItemSubtotal
		base := subtotal / n
		rem := subtotal % n

		for i, row := range itemRows {
			share := base
			if int64(i) < rem {
				share++
			}
			if row.Settled || row.UserID == row.PayerID || share == 0 {
				continue
			}
			emit(row.UserID, row.PayerID, share)
		}
	}
}
