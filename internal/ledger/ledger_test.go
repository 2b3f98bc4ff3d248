package ledger

import "testing"

var accounts = []Account{
	{ID: "u-alice", Username: "alice", Email: "alice@example.com"},
	{ID: "u-bob", Username: "bob", Email: "bob@example.com"},
	{ID: "u-carol", Username: "carol", Email: "carol@example.com"},
}

func row(itemID, userID, payerID string, subtotal int64) Assignment {
	return Assignment{
		ItemID:       itemID,
		GroupID:      "g-1",
		GroupName:    "Roommates",
		UserID:       userID,
		PayerID:      payerID,
		ItemSubtotal: subtotal,
	}
}

func balanceOf(t *testing.T, balances []UserBalance, userID string) int64 {
	t.Helper()
	for _, b := range balances {
		if b.UserID == userID {
			return b.NetMinor
		}
	}
	t.Fatalf("no balance entry for %s", userID)
	return 0
}

func TestGlobalBalancesEqualSplit(t *testing.T) {
	// Alice paid a 300-cent item shared by all three: bob and carol each owe
	// 100, alice is owed 200 (her own slice never moves).
	rows := []Assignment{
		row("i-1", "u-alice", "u-alice", 300),
		row("i-1", "u-bob", "u-alice", 300),
		row("i-1", "u-carol", "u-alice", 300),
	}

	balances := GlobalBalances(accounts, rows, "USD")
	if got := balanceOf(t, balances, "u-alice"); got != 200 {
		t.Errorf("alice = %d, want 200", got)
	}
	if got := balanceOf(t, balances, "u-bob"); got != -100 {
		t.Errorf("bob = %d, want -100", got)
	}
	if got := balanceOf(t, balances, "u-carol"); got != -100 {
		t.Errorf("carol = %d, want -100", got)
	}
}

func TestGlobalBalancesRemainderDistribution(t *testing.T) {
	// 100 cents across three assignees does not divide evenly; the shares
	// must still sum to exactly 100 by largest remainder (34, 33, 33 in
	// user-id order).
	rows := []Assignment{
		row("i-1", "u-alice", "u-payer", 100),
		row("i-1", "u-bob", "u-payer", 100),
		row("i-1", "u-carol", "u-payer", 100),
	}

	balances := GlobalBalances(accounts, rows, "USD")
	var debited int64
	for _, b := range balances {
		debited += -b.NetMinor
	}
	if debited != 100 {
		t.Errorf("total debited = %d, want exactly 100", debited)
	}
	// u-alice sorts first and picks up the extra cent.
	if got := balanceOf(t, balances, "u-alice"); got != -34 {
		t.Errorf("alice = %d, want -34", got)
	}
	if got := balanceOf(t, balances, "u-bob"); got != -33 {
		t.Errorf("bob = %d, want -33", got)
	}
}

func TestGlobalBalancesConservation(t *testing.T) {
	rows := []Assignment{
		row("i-1", "u-alice", "u-bob", 1299),
		row("i-1", "u-bob", "u-bob", 1299),
		row("i-1", "u-carol", "u-bob", 1299),
		row("i-2", "u-bob", "u-alice", 701),
		row("i-2", "u-carol", "u-alice", 701),
		row("i-3", "u-alice", "u-carol", 333),
	}

	// Include the payers as accounts so every credit is visible.
	balances := GlobalBalances(accounts, rows, "USD")
	var sum int64
	for _, b := range balances {
		sum += b.NetMinor
	}
	if sum != 0 {
		t.Errorf("balances sum to %d, want 0", sum)
	}
}

func TestGlobalBalancesSelfPayerNoOp(t *testing.T) {
	// The payer is the only assignee: nothing moves for anyone.
	rows := []Assignment{
		row("i-1", "u-alice", "u-alice", 500),
	}

	balances := GlobalBalances(accounts, rows, "USD")
	for _, b := range balances {
		if b.NetMinor != 0 {
			t.Errorf("%s = %d, want 0", b.UserID, b.NetMinor)
		}
	}
}

func TestGlobalBalancesSettledRowsKeepDivisor(t *testing.T) {
	// Carol settled her share of a 300-cent item split three ways. The
	// divisor stays 3: bob still owes 100, alice is now owed only 100.
	settled := row("i-1", "u-carol", "u-alice", 300)
	settled.Settled = true
	rows := []Assignment{
		row("i-1", "u-alice", "u-alice", 300),
		row("i-1", "u-bob", "u-alice", 300),
		settled,
	}

	balances := GlobalBalances(accounts, rows, "USD")
	if got := balanceOf(t, balances, "u-alice"); got != 100 {
		t.Errorf("alice = %d, want 100", got)
	}
	if got := balanceOf(t, balances, "u-bob"); got != -100 {
		t.Errorf("bob = %d, want -100", got)
	}
	if got := balanceOf(t, balances, "u-carol"); got != 0 {
		t.Errorf("carol = %d, want 0 after settling", got)
	}
}

func TestGlobalBalancesIncludesInactiveUsersAndSorts(t *testing.T) {
	rows := []Assignment{
		row("i-1", "u-bob", "u-alice", 400),
		row("i-1", "u-alice", "u-alice", 400),
	}

	balances := GlobalBalances(accounts, rows, "AUD")
	if len(balances) != len(accounts) {
		t.Fatalf("got %d entries, want %d (zero-activity users included)", len(balances), len(accounts))
	}
	for i := 1; i < len(balances); i++ {
		if balances[i-1].NetMinor > balances[i].NetMinor {
			t.Fatalf("balances not ascending: %v", balances)
		}
	}
	if balances[0].UserID != "u-bob" {
		t.Errorf("largest debtor first: got %s, want u-bob", balances[0].UserID)
	}
	if balances[0].Currency != "AUD" {
		t.Errorf("currency = %s, want AUD", balances[0].Currency)
	}
}

func TestGroupBalancesOmitEmptyGroups(t *testing.T) {
	// Group g-2 is fully settled and must not appear at all.
	settled := Assignment{
		ItemID: "i-2", GroupID: "g-2", GroupName: "Trip",
		UserID: "u-bob", PayerID: "u-alice", ItemSubtotal: 700, Settled: true,
	}
	rows := []Assignment{
		row("i-1", "u-bob", "u-alice", 400),
		row("i-1", "u-alice", "u-alice", 400),
		settled,
	}

	groupBalances := GroupBalances(accounts, rows)
	if len(groupBalances) != 1 {
		t.Fatalf("got %d groups, want 1", len(groupBalances))
	}
	if groupBalances[0].GroupID != "g-1" {
		t.Errorf("group = %s, want g-1", groupBalances[0].GroupID)
	}
}

func TestGroupBalancesDropZeroMembers(t *testing.T) {
	// Carol owes alice in one item and is owed the same amount by alice in
	// another, netting to zero within the group.
	rows := []Assignment{
		row("i-1", "u-carol", "u-alice", 250),
		row("i-2", "u-alice", "u-carol", 250),
	}

	groupBalances := GroupBalances(accounts, rows)
	if len(groupBalances) != 0 {
		t.Fatalf("got %d groups, want 0 (all members net to zero)", len(groupBalances))
	}
}

func TestGroupBalancesIndependentPerGroup(t *testing.T) {
	tripRow := func(userID, payerID string, subtotal int64) Assignment {
		return Assignment{
			ItemID: "i-trip", GroupID: "g-2", GroupName: "Trip",
			UserID: userID, PayerID: payerID, ItemSubtotal: subtotal,
		}
	}
	rows := []Assignment{
		row("i-1", "u-bob", "u-alice", 500),
		tripRow("u-alice", "u-bob", 300),
	}

	groupBalances := GroupBalances(accounts, rows)
	if len(groupBalances) != 2 {
		t.Fatalf("got %d groups, want 2", len(groupBalances))
	}
	// Sorted by group name: Roommates before Trip.
	if groupBalances[0].GroupName != "Roommates" || groupBalances[1].GroupName != "Trip" {
		t.Fatalf("unexpected group order: %s, %s", groupBalances[0].GroupName, groupBalances[1].GroupName)
	}
	roommates, trip := groupBalances[0], groupBalances[1]
	if len(roommates.Members) != 2 || roommates.Members[0].UserID != "u-bob" || roommates.Members[0].BalanceMinor != -500 {
		t.Errorf("roommates members = %+v", roommates.Members)
	}
	if len(trip.Members) != 2 || trip.Members[0].UserID != "u-alice" || trip.Members[0].BalanceMinor != -300 {
		t.Errorf("trip members = %+v", trip.Members)
	}
}
