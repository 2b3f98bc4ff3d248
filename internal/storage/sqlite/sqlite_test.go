package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *SQLiteStore, username, email string) *models.User {
	t.Helper()
	user := models.NewUser(username, email, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedGroup(t *testing.T, store *SQLiteStore, name string, userIDs ...string) *models.Group {
	t.Helper()
	ctx := context.Background()
	group := &models.Group{Name: name}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("failed to seed group %s: %v", name, err)
	}
	for _, userID := range userIDs {
		member := &models.GroupMember{GroupID: group.ID, UserID: userID}
		if err := store.AddGroupMember(ctx, member); err != nil {
			t.Fatalf("failed to add member %s: %v", userID, err)
		}
	}
	return group
}

func TestUserLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "alice", "alice@example.com")

	t.Run("get by id", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Email != "alice@example.com" || !got.IsActive {
			t.Errorf("unexpected user: %+v", got)
		}
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("got id %s, want %s", got.ID, user.ID)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.NewUser("alice2", "alice@example.com", "hash")
		err := store.CreateUser(ctx, dup)
		if !errs.IsStorage(err) {
			t.Errorf("expected storage error for duplicate email, got %v", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		name := "alice-renamed"
		if err := store.UpdateUser(ctx, user.ID, storage.UserUpdate{Username: &name}); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Username != "alice-renamed" {
			t.Errorf("username = %s, want alice-renamed", got.Username)
		}
		if got.Email != "alice@example.com" {
			t.Errorf("email changed unexpectedly: %s", got.Email)
		}
	})

	t.Run("soft delete hides user", func(t *testing.T) {
		if err := store.SoftDeleteUser(ctx, user.ID); err != nil {
			t.Fatalf("SoftDeleteUser failed: %v", err)
		}
		if _, err := store.GetUserByID(ctx, user.ID); !errs.IsNotFound(err) {
			t.Errorf("expected not found after soft delete, got %v", err)
		}
		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("soft-deleted user still listed: %+v", users)
		}
	})

	t.Run("soft delete twice is not found", func(t *testing.T) {
		if err := store.SoftDeleteUser(ctx, user.ID); !errs.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestGroupMemberships(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")
	group := seedGroup(t, store, "Roommates", alice.ID, bob.ID)

	t.Run("get with members", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Fatalf("got %d members, want 2", len(got.Members))
		}
	})

	t.Run("count memberships", func(t *testing.T) {
		count, err := store.CountMemberships(ctx, group.ID, []string{alice.ID, bob.ID, "nobody"})
		if err != nil {
			t.Fatalf("CountMemberships failed: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
	})

	t.Run("duplicate membership rejected", func(t *testing.T) {
		err := store.AddGroupMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: alice.ID})
		if !errs.IsStorage(err) {
			t.Errorf("expected storage error for duplicate membership, got %v", err)
		}
	})

	t.Run("remove member", func(t *testing.T) {
		if err := store.RemoveGroupMember(ctx, group.ID, bob.ID); err != nil {
			t.Fatalf("RemoveGroupMember failed: %v", err)
		}
		memberships, err := store.ListUserMemberships(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListUserMemberships failed: %v", err)
		}
		if len(memberships) != 0 {
			t.Errorf("bob still has memberships: %+v", memberships)
		}
	})

	t.Run("delete cascades memberships", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		memberships, err := store.ListUserMemberships(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListUserMemberships failed: %v", err)
		}
		if len(memberships) != 0 {
			t.Errorf("memberships survived group deletion: %+v", memberships)
		}
	})
}

func testBill(group *models.Group, payer, other *models.User) *models.Bill {
	return &models.Bill{
		GroupID:     group.ID,
		Title:       "Groceries",
		TotalAmount: 1650,
		Currency:    "USD",
		SplitType:   models.SplitTypeEqual,
		PayerID:     payer.ID,
		CreatedBy:   payer.ID,
		Items: []models.BillItem{
			{
				Name: "Burger", Quantity: 1, UnitPrice: 1250,
				Assignments: []models.ItemAssignment{
					{UserID: payer.ID},
					{UserID: other.ID},
				},
			},
			{
				Name: "Fries", Quantity: 1, UnitPrice: 400,
				Assignments: []models.ItemAssignment{
					{UserID: other.ID},
				},
			},
		},
	}
}

func TestBillRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")
	group := seedGroup(t, store, "Roommates", alice.ID, bob.ID)

	bill := testBill(group, alice, bob)
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.ID == "" || bill.Items[0].ID == "" || bill.Items[0].Assignments[0].ID == "" {
		t.Fatal("ids were not assigned on create")
	}

	got, err := store.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Title != "Groceries" || got.TotalAmount != 1650 {
		t.Errorf("unexpected bill: %+v", got)
	}
	if len(got.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(got.Items))
	}
	if len(got.Items[0].Assignments) != 2 || len(got.Items[1].Assignments) != 1 {
		t.Errorf("unexpected assignment counts: %+v", got.Items)
	}

	bills, err := store.ListBillsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListBillsByGroup failed: %v", err)
	}
	if len(bills) != 1 || len(bills[0].Items) != 2 {
		t.Errorf("unexpected listing: %+v", bills)
	}
}

func TestReplaceBill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")
	group := seedGroup(t, store, "Roommates", alice.ID, bob.ID)

	bill := testBill(group, alice, bob)
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	bill.Title = "Dinner"
	bill.TotalAmount = 900
	bill.Items = []models.BillItem{
		{
			Name: "Pizza", Quantity: 1, UnitPrice: 900,
			Assignments: []models.ItemAssignment{{UserID: bob.ID}},
		},
	}
	if err := store.ReplaceBill(ctx, bill); err != nil {
		t.Fatalf("ReplaceBill failed: %v", err)
	}

	got, err := store.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Title != "Dinner" || got.TotalAmount != 900 {
		t.Errorf("header not updated: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Pizza" {
		t.Errorf("items not replaced: %+v", got.Items)
	}

	// Old assignments must be gone with the old items.
	rows, err := store.ListAssignmentRows(ctx)
	if err != nil {
		t.Fatalf("ListAssignmentRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d assignment rows, want 1", len(rows))
	}

	t.Run("missing bill is not found", func(t *testing.T) {
		ghost := testBill(group, alice, bob)
		ghost.ID = "no-such-bill"
		if err := store.ReplaceBill(ctx, ghost); !errs.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestSettleAssignments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")
	group := seedGroup(t, store, "Roommates", alice.ID, bob.ID)

	bill := testBill(group, alice, bob)
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	ids := []string{
		bill.Items[0].Assignments[1].ID,
		bill.Items[1].Assignments[0].ID,
	}

	affected, err := store.SettleAssignments(ctx, ids, 1700000000)
	if err != nil {
		t.Fatalf("SettleAssignments failed: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}

	t.Run("idempotent", func(t *testing.T) {
		affected, err := store.SettleAssignments(ctx, ids, 1700000100)
		if err != nil {
			t.Fatalf("SettleAssignments failed: %v", err)
		}
		if affected != 0 {
			t.Errorf("affected = %d, want 0 on repeat", affected)
		}
	})

	t.Run("unknown ids skipped", func(t *testing.T) {
		affected, err := store.SettleAssignments(ctx, []string{"no-such-id"}, 1700000200)
		if err != nil {
			t.Fatalf("SettleAssignments failed: %v", err)
		}
		if affected != 0 {
			t.Errorf("affected = %d, want 0", affected)
		}
	})

	rows, err := store.ListAssignmentRows(ctx)
	if err != nil {
		t.Fatalf("ListAssignmentRows failed: %v", err)
	}
	settled := 0
	for _, r := range rows {
		if r.Settled {
			settled++
		}
	}
	if settled != 2 {
		t.Errorf("settled rows = %d, want 2", settled)
	}
}

func TestListAssignmentRowsJoins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")
	group := seedGroup(t, store, "Roommates", alice.ID, bob.ID)

	bill := testBill(group, alice, bob)
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	rows, err := store.ListAssignmentRows(ctx)
	if err != nil {
		t.Fatalf("ListAssignmentRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, r := range rows {
		if r.PayerID != alice.ID {
			t.Errorf("payer = %s, want %s", r.PayerID, alice.ID)
		}
		if r.GroupID != group.ID || r.GroupName != "Roommates" {
			t.Errorf("group join wrong: %+v", r)
		}
		if r.UnitPrice == 0 || r.Quantity == 0 {
			t.Errorf("item join wrong: %+v", r)
		}
	}
}

func TestDeleteBillCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")
	group := seedGroup(t, store, "Roommates", alice.ID, bob.ID)

	bill := testBill(group, alice, bob)
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if err := store.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill failed: %v", err)
	}

	if _, err := store.GetBill(ctx, bill.ID); !errs.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	rows, err := store.ListAssignmentRows(ctx)
	if err != nil {
		t.Fatalf("ListAssignmentRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("assignments survived bill deletion: %+v", rows)
	}
}
