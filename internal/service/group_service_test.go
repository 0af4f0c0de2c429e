package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")

	groupID := env.createGroup(t, admin, "Roommates")

	resp, err := env.groups.GetGroup(ctx, as(admin, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.Name != "Roommates" {
		t.Errorf("name = %q, want Roommates", resp.Msg.Group.Name)
	}
	if len(resp.Msg.Members) != 1 || resp.Msg.Members[0].Role != "admin" {
		t.Errorf("expected creator as sole admin, got %+v", resp.Msg.Members)
	}

	t.Run("duplicate name", func(t *testing.T) {
		_, err := env.groups.CreateGroup(ctx, as(admin, &api.CreateGroupRequest{Name: "Roommates"}))
		assertCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := env.groups.CreateGroup(ctx, as(admin, &api.CreateGroupRequest{Name: "   "}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := env.groups.CreateGroup(ctx, as(nil, &api.CreateGroupRequest{Name: "Nope"}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestGetGroup_Access(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	outsider := env.register(t, "out@example.com", "Outsider")
	groupID := env.createGroup(t, admin, "Trip")

	tests := []struct {
		name    string
		groupID string
		want    connect.Code
	}{
		{"not a member", groupID, connect.CodePermissionDenied},
		{"missing group", "does-not-exist", connect.CodeNotFound},
		{"empty id", "", connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.GetGroup(ctx, as(outsider, &api.GetGroupRequest{GroupID: tt.groupID}))
			assertCode(t, err, tt.want)
		})
	}
}

func TestListGroups_CallerBalance(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	bob := env.register(t, "bob@example.com", "Bob")

	groupID := env.createGroup(t, admin, "Dinner Club")
	env.join(t, admin, bob, groupID)
	env.createGroup(t, admin, "Empty")

	_, err := env.expenses.CreateExpense(ctx, as(admin, &api.CreateExpenseRequest{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      dec("60.00"),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	resp, err := env.groups.ListGroups(ctx, as(bob, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 1 {
		t.Fatalf("expected bob in 1 group, got %d", len(resp.Msg.Groups))
	}
	summary := resp.Msg.Groups[0]
	assertDec(t, "bob balance", summary.Balance, "-30")
	if summary.Role != "member" || summary.MemberCount != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	resp, err = env.groups.ListGroups(ctx, as(admin, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 2 {
		t.Fatalf("expected admin in 2 groups, got %d", len(resp.Msg.Groups))
	}
}

func TestListGroups_BrokenGroupKeepsOthers(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	bob := env.register(t, "bob@example.com", "Bob")

	healthyID := env.createGroup(t, admin, "Healthy")
	env.join(t, admin, bob, healthyID)
	if _, err := env.expenses.CreateExpense(ctx, as(bob, &api.CreateExpenseRequest{
		GroupID:     healthyID,
		Description: "Snacks",
		Amount:      dec("10.00"),
	})); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	// Written straight to the store, bypassing validation, so the group's
	// snapshot no longer passes the ledger's checks.
	brokenID := env.createGroup(t, admin, "Broken")
	if err := env.store.CreateExpense(ctx, &models.Expense{
		GroupID:     brokenID,
		Description: "Corrupt",
		Amount:      dec("1.00"),
		PaidByID:    admin.ID,
		Splits:      []models.ExpenseSplit{{UserID: admin.ID, Amount: dec("-1.00")}},
	}); err != nil {
		t.Fatalf("store.CreateExpense failed: %v", err)
	}

	resp, err := env.groups.ListGroups(ctx, as(admin, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(resp.Msg.Groups))
	}
	for _, g := range resp.Msg.Groups {
		switch g.Group.ID {
		case healthyID:
			if g.BalanceUnavailable {
				t.Error("healthy group marked unavailable")
			}
			assertDec(t, "admin in healthy", g.Balance, "-5")
		case brokenID:
			if !g.BalanceUnavailable {
				t.Error("broken group should be marked unavailable")
			}
			if g.Role != "admin" || g.MemberCount != 1 {
				t.Errorf("unexpected broken summary: %+v", g)
			}
		default:
			t.Errorf("unexpected group %s", g.Group.ID)
		}
	}

	_, err = env.groups.GetBalances(ctx, as(admin, &api.GetBalancesRequest{GroupID: brokenID}))
	assertCode(t, err, connect.CodeInternal)
}

func TestInvitations(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	carol := env.register(t, "carol@example.com", "Carol")
	dave := env.register(t, "dave@example.com", "Dave")
	groupID := env.createGroup(t, admin, "Trip")

	inv, err := env.groups.InviteMember(ctx, as(admin, &api.InviteMemberRequest{GroupID: groupID, Email: "CAROL@example.com"}))
	if err != nil {
		t.Fatalf("InviteMember failed: %v", err)
	}
	if inv.Msg.Invitation.Status != "pending" || inv.Msg.Invitation.Email != "carol@example.com" {
		t.Errorf("unexpected invitation: %+v", inv.Msg.Invitation)
	}

	t.Run("someone else cannot respond", func(t *testing.T) {
		_, err := env.groups.RespondToInvitation(ctx, as(dave, &api.RespondToInvitationRequest{
			InvitationID: inv.Msg.Invitation.ID,
			Accept:       true,
		}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("accept", func(t *testing.T) {
		resp, err := env.groups.RespondToInvitation(ctx, as(carol, &api.RespondToInvitationRequest{
			InvitationID: inv.Msg.Invitation.ID,
			Accept:       true,
		}))
		if err != nil {
			t.Fatalf("RespondToInvitation failed: %v", err)
		}
		if resp.Msg.Member == nil || resp.Msg.Member.UserID != carol.ID {
			t.Errorf("expected carol as member, got %+v", resp.Msg.Member)
		}
	})

	t.Run("already answered", func(t *testing.T) {
		_, err := env.groups.RespondToInvitation(ctx, as(carol, &api.RespondToInvitationRequest{
			InvitationID: inv.Msg.Invitation.ID,
			Accept:       false,
		}))
		assertCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("inviting a member", func(t *testing.T) {
		_, err := env.groups.InviteMember(ctx, as(admin, &api.InviteMemberRequest{GroupID: groupID, Email: carol.Email}))
		assertCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("decline", func(t *testing.T) {
		inv, err := env.groups.InviteMember(ctx, as(carol, &api.InviteMemberRequest{GroupID: groupID, Email: dave.Email}))
		if err != nil {
			t.Fatalf("InviteMember failed: %v", err)
		}
		resp, err := env.groups.RespondToInvitation(ctx, as(dave, &api.RespondToInvitationRequest{
			InvitationID: inv.Msg.Invitation.ID,
		}))
		if err != nil {
			t.Fatalf("RespondToInvitation failed: %v", err)
		}
		if resp.Msg.Invitation.Status != "declined" || resp.Msg.Member != nil {
			t.Errorf("unexpected decline response: %+v", resp.Msg)
		}
		if _, err := env.groups.GetGroup(ctx, as(dave, &api.GetGroupRequest{GroupID: groupID})); err == nil {
			t.Error("dave joined after declining")
		}
	})
}

func TestAddGhostMember(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	groupID := env.createGroup(t, admin, "Flat")

	resp, err := env.groups.AddGhostMember(ctx, as(admin, &api.AddGhostMemberRequest{GroupID: groupID, DisplayName: "Grandma"}))
	if err != nil {
		t.Fatalf("AddGhostMember failed: %v", err)
	}
	if !resp.Msg.Member.IsGhost || resp.Msg.Member.DisplayName != "Grandma" {
		t.Errorf("unexpected ghost: %+v", resp.Msg.Member)
	}

	group, err := env.groups.GetGroup(ctx, as(admin, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(group.Msg.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(group.Msg.Members))
	}

	activity, err := env.expenses.ListActivity(ctx, as(admin, &api.ListActivityRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}
	if len(activity.Msg.Items) != 1 || activity.Msg.Items[0].Type != "member_added" {
		t.Fatalf("expected one member_added item, got %+v", activity.Msg.Items)
	}
	item := activity.Msg.Items[0]
	if item.Actor.DisplayName != "Grandma" || item.Counterparty.UserID != admin.ID {
		t.Errorf("unexpected log item: %+v", item)
	}
}

func TestRemoveMember_Authorization(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	groupID := env.createGroup(t, admin, "Office")
	env.join(t, admin, bob, groupID)
	env.join(t, admin, carol, groupID)

	tests := []struct {
		name    string
		caller  *testUser
		target  string
		code    connect.Code
		message string
	}{
		{"member cannot remove", bob, carol.ID, connect.CodePermissionDenied, "Access denied: Only admins can remove members"},
		{"admin cannot be removed", admin, admin.ID, connect.CodePermissionDenied, "Access denied: Cannot remove an admin"},
		{"target not a member", admin, "nobody", connect.CodeNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.RemoveMember(ctx, as(tt.caller, &api.RemoveMemberRequest{GroupID: groupID, UserID: tt.target}))
			connectErr := assertCode(t, err, tt.code)
			if tt.message != "" && connectErr.Message() != tt.message {
				t.Errorf("message = %q, want %q", connectErr.Message(), tt.message)
			}
		})
	}

	if _, err := env.groups.RemoveMember(ctx, as(admin, &api.RemoveMemberRequest{GroupID: groupID, UserID: carol.ID})); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	_, err := env.groups.GetGroup(ctx, as(carol, &api.GetGroupRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)
}

// Admin pays 100 split with X; after X is removed the admin's credit for
// X's share is forgiven and X's history shows as a removed user.
func TestRemoveMember_ForgivesAndKeepsHistory(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	x := env.register(t, "x@example.com", "Xavier")
	groupID := env.createGroup(t, admin, "Household")
	env.join(t, admin, x, groupID)

	if _, err := env.expenses.CreateExpense(ctx, as(admin, &api.CreateExpenseRequest{
		GroupID:      groupID,
		Description:  "Groceries",
		Amount:       dec("100.00"),
		SplitBetween: []string{admin.ID, x.ID},
	})); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	before := env.balances(t, admin, groupID)
	assertDec(t, "admin before", before[admin.ID].Net, "50")
	assertDec(t, "x before", before[x.ID].Net, "-50")
	if len(before[x.ID].OwesTo) != 1 || before[x.ID].OwesTo[0].DisplayName != "Admin" {
		t.Errorf("expected x to owe Admin, got %+v", before[x.ID].OwesTo)
	}

	if _, err := env.groups.RemoveMember(ctx, as(admin, &api.RemoveMemberRequest{GroupID: groupID, UserID: x.ID})); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	after := env.balances(t, admin, groupID)
	if len(after) != 1 {
		t.Fatalf("expected only admin in balances, got %d entries", len(after))
	}
	assertDec(t, "admin after", after[admin.ID].Net, "0")
	if len(after[admin.ID].OwedBy) != 0 {
		t.Errorf("expected no debts after removal, got %+v", after[admin.ID].OwedBy)
	}

	activity, err := env.expenses.ListActivity(ctx, as(admin, &api.ListActivityRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}
	var expense, removal *api.ActivityItem
	for _, it := range activity.Msg.Items {
		switch it.Type {
		case "expense":
			expense = it
		case "member_removed":
			removal = it
		}
	}
	if expense == nil || removal == nil {
		t.Fatalf("missing feed items: %+v", activity.Msg.Items)
	}
	if len(expense.Shares) != 2 {
		t.Fatalf("expected the historical expense to keep 2 shares, got %d", len(expense.Shares))
	}
	for _, sh := range expense.Shares {
		if sh.Person.UserID == x.ID && (sh.Person.DisplayName != ledger.RemovedUserName || !sh.Person.Removed) {
			t.Errorf("removed share shown as %+v", sh.Person)
		}
	}
	if removal.Actor.DisplayName != ledger.RemovedUserName || removal.Description != "was removed from the group" {
		t.Errorf("unexpected removal item: %+v", removal)
	}

	t.Run("re-adding restores the name and the debt", func(t *testing.T) {
		env.join(t, admin, x, groupID)

		activity, err := env.expenses.ListActivity(ctx, as(admin, &api.ListActivityRequest{GroupID: groupID}))
		if err != nil {
			t.Fatalf("ListActivity failed: %v", err)
		}
		for _, it := range activity.Msg.Items {
			if it.Type != "expense" {
				continue
			}
			for _, sh := range it.Shares {
				if sh.Person.UserID == x.ID && sh.Person.DisplayName != "Xavier" {
					t.Errorf("expected name restored, got %q", sh.Person.DisplayName)
				}
			}
		}

		balances := env.balances(t, admin, groupID)
		assertDec(t, "admin re-added", balances[admin.ID].Net, "50")
	})
}

func TestGetGroupReport(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com", "Admin")
	bob := env.register(t, "bob@example.com", "Bob")
	groupID := env.createGroup(t, admin, "Cabin")
	env.join(t, admin, bob, groupID)

	if _, err := env.expenses.CreateExpense(ctx, as(bob, &api.CreateExpenseRequest{
		GroupID:     groupID,
		Description: "Firewood",
		Amount:      dec("20.00"),
	})); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	resp, err := env.groups.GetGroupReport(ctx, as(admin, &api.GetGroupReportRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupReport failed: %v", err)
	}
	report := resp.Msg

	if report.Group.ID != groupID || report.Group.Name != "Cabin" {
		t.Errorf("unexpected group: %+v", report.Group)
	}
	if len(report.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(report.Balances))
	}
	for _, b := range report.Balances {
		switch b.UserID {
		case admin.ID:
			assertDec(t, "admin", b.Net, "-10")
			if len(b.OwesTo) != 1 || b.OwesTo[0].UserID != bob.ID || b.OwesTo[0].DisplayName != "Bob" {
				t.Errorf("unexpected admin debts: %+v", b.OwesTo)
			}
		case bob.ID:
			assertDec(t, "bob", b.Net, "10")
		}
	}

	types := map[string]int{}
	for _, it := range report.Activity {
		types[it.Type]++
	}
	if types["expense"] != 1 || types["member_added"] != 1 || len(report.Activity) != 2 {
		t.Errorf("unexpected activity: %v", types)
	}

	t.Run("non-member is denied", func(t *testing.T) {
		eve := env.register(t, "eve@example.com", "Eve")
		_, err := env.groups.GetGroupReport(ctx, as(eve, &api.GetGroupReportRequest{GroupID: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})
}
