package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqldb"
)

func newTestStore(t *testing.T) *sqldb.Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustUser(t *testing.T, store storage.Store, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustUser(t, store, "alice@example.com", "Alice")

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != alice.ID || got.DisplayName != "Alice" {
			t.Errorf("got %+v, want %+v", got, alice)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash"))
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ghosts have no email", func(t *testing.T) {
		g1 := models.NewGhostUser("Ghost One")
		g2 := models.NewGhostUser("Ghost Two")
		for _, g := range []*models.User{g1, g2} {
			if err := store.CreateUser(ctx, g); err != nil {
				t.Fatalf("CreateUser(ghost) failed: %v", err)
			}
		}
		users, err := store.GetUsersByIDs(ctx, []string{g1.ID, g2.ID, "missing"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if !users[g1.ID].IsGhost || users[g1.ID].Email != "" {
			t.Errorf("ghost not round-tripped: %+v", users[g1.ID])
		}
	})
}

func TestMembership(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin := mustUser(t, store, "admin@example.com", "Admin")
	bob := mustUser(t, store, "bob@example.com", "Bob")

	group := &models.Group{Name: "Roommates"}
	if err := store.CreateGroup(ctx, group, admin.ID); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" {
		t.Fatal("Expected group ID to be generated")
	}

	t.Run("creator is admin", func(t *testing.T) {
		m, err := store.GetMembership(ctx, group.ID, admin.ID)
		if err != nil {
			t.Fatalf("GetMembership failed: %v", err)
		}
		if m.Role != models.RoleAdmin {
			t.Errorf("role = %s, want admin", m.Role)
		}
	})

	t.Run("duplicate group name conflicts", func(t *testing.T) {
		err := store.CreateGroup(ctx, &models.Group{Name: "Roommates"}, admin.ID)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("add and remove", func(t *testing.T) {
		err := store.AddMember(ctx,
			&models.Membership{GroupID: group.ID, UserID: bob.ID, Role: models.RoleMember},
			&models.ActivityLog{GroupID: group.ID, Action: models.ActionMemberAdded, SubjectID: bob.ID, ActorID: admin.ID},
		)
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		err = store.AddMember(ctx, &models.Membership{GroupID: group.ID, UserID: bob.ID, Role: models.RoleMember}, nil)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict re-adding, got %v", err)
		}

		groups, err := store.ListGroupsForUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("expected bob in one group, got %v", groups)
		}

		err = store.RemoveMember(ctx, group.ID, bob.ID,
			&models.ActivityLog{GroupID: group.ID, Action: models.ActionMemberRemoved, SubjectID: bob.ID, ActorID: admin.ID},
		)
		if err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if _, err := store.GetMembership(ctx, group.ID, bob.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after removal, got %v", err)
		}
		if err := store.RemoveMember(ctx, group.ID, bob.ID, nil); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound removing twice, got %v", err)
		}
	})

	t.Run("ghost member", func(t *testing.T) {
		ghost := models.NewGhostUser("Casper")
		err := store.CreateGhostMember(ctx, ghost,
			&models.Membership{GroupID: group.ID, Role: models.RoleMember},
			&models.ActivityLog{GroupID: group.ID, Action: models.ActionMemberAdded, ActorID: admin.ID},
		)
		if err != nil {
			t.Fatalf("CreateGhostMember failed: %v", err)
		}
		if _, err := store.GetMembership(ctx, group.ID, ghost.ID); err != nil {
			t.Errorf("ghost membership missing: %v", err)
		}
	})
}

func TestInvitations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin := mustUser(t, store, "admin@example.com", "Admin")
	carol := mustUser(t, store, "carol@example.com", "Carol")
	group := &models.Group{Name: "Trip"}
	if err := store.CreateGroup(ctx, group, admin.ID); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	inv := &models.Invitation{GroupID: group.ID, Email: carol.Email, InvitedByID: admin.ID}
	if err := store.CreateInvitation(ctx, inv); err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}

	err := store.AcceptInvitation(ctx, inv.ID,
		&models.Membership{GroupID: group.ID, UserID: carol.ID, Role: models.RoleMember},
		&models.ActivityLog{GroupID: group.ID, Action: models.ActionMemberAdded, SubjectID: carol.ID, ActorID: carol.ID},
	)
	if err != nil {
		t.Fatalf("AcceptInvitation failed: %v", err)
	}

	got, err := store.GetInvitation(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvitation failed: %v", err)
	}
	if got.Status != models.InvitationAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}

	if err := store.DeclineInvitation(ctx, inv.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound declining a closed invitation, got %v", err)
	}
}

func TestLoadSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin := mustUser(t, store, "admin@example.com", "Admin")
	x := mustUser(t, store, "x@example.com", "X")
	group := &models.Group{Name: "Flat"}
	if err := store.CreateGroup(ctx, group, admin.ID); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.AddMember(ctx, &models.Membership{GroupID: group.ID, UserID: x.ID, Role: models.RoleMember, JoinedAt: group.CreatedAt + 1}, nil); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      decimal.RequireFromString("100.00"),
		PaidByID:    admin.ID,
		Splits: []models.ExpenseSplit{
			{UserID: admin.ID, Amount: decimal.RequireFromString("50.00")},
			{UserID: x.ID, Amount: decimal.RequireFromString("50.00")},
		},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		snap, err := store.LoadSnapshot(ctx, group.ID)
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if len(snap.Memberships) != 2 {
			t.Errorf("expected 2 memberships, got %d", len(snap.Memberships))
		}
		if len(snap.Expenses) != 1 || len(snap.Expenses[0].Splits) != 2 {
			t.Fatalf("expense not round-tripped: %+v", snap.Expenses)
		}
		if !snap.Expenses[0].Amount.Equal(decimal.RequireFromString("100")) {
			t.Errorf("amount = %s, want 100", snap.Expenses[0].Amount)
		}
		if snap.Expenses[0].Splits[0].UserID != admin.ID {
			t.Errorf("split order not preserved")
		}

		balances, err := ledger.NetBalances(snap)
		if err != nil {
			t.Fatalf("NetBalances failed: %v", err)
		}
		if !balances[0].Amount.Equal(decimal.RequireFromString("50")) {
			t.Errorf("admin balance = %s, want 50", balances[0].Amount)
		}
	})

	t.Run("removal keeps history and forgives", func(t *testing.T) {
		err := store.RemoveMember(ctx, group.ID, x.ID,
			&models.ActivityLog{GroupID: group.ID, Action: models.ActionMemberRemoved, SubjectID: x.ID, ActorID: admin.ID},
		)
		if err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}

		snap, err := store.LoadSnapshot(ctx, group.ID)
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if len(snap.Expenses[0].Splits) != 2 {
			t.Errorf("historical split was modified")
		}
		if _, ok := snap.Users[x.ID]; !ok {
			t.Errorf("removed user missing from directory")
		}
		if len(snap.Logs) != 1 {
			t.Errorf("expected 1 log, got %d", len(snap.Logs))
		}

		balances, err := ledger.NetBalances(snap)
		if err != nil {
			t.Fatalf("NetBalances failed: %v", err)
		}
		if len(balances) != 1 || !balances[0].Amount.IsZero() {
			t.Errorf("expected admin balance 0 after removal, got %+v", balances)
		}
	})

	t.Run("settlements", func(t *testing.T) {
		st := &models.Settlement{
			GroupID:    group.ID,
			FromUserID: x.ID,
			ToUserID:   admin.ID,
			Amount:     decimal.RequireFromString("12.50"),
			Method:     models.MethodCash,
			CreatedBy:  x.ID,
		}
		if err := store.CreateSettlement(ctx, st); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		got, err := store.GetSettlement(ctx, st.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if !got.Amount.Equal(st.Amount) || got.Method != models.MethodCash || got.Status != models.SettlementPending {
			t.Errorf("got %+v, want %+v", got, st)
		}

		if err := store.SetSettlementStatus(ctx, st.ID, models.SettlementConfirmed, 1700000000); err != nil {
			t.Fatalf("SetSettlementStatus failed: %v", err)
		}
		got, err = store.GetSettlement(ctx, st.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got.Status != models.SettlementConfirmed || got.ConfirmedAt != 1700000000 {
			t.Errorf("status = %s at %d, want confirmed at 1700000000", got.Status, got.ConfirmedAt)
		}
		if err := store.SetSettlementStatus(ctx, st.ID, models.SettlementDisputed, 1700000001); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second status change: expected ErrNotFound, got %v", err)
		}

		if err := store.DeleteSettlement(ctx, st.ID); err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
		if err := store.DeleteSettlement(ctx, st.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
