package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// Ensure GroupService implements the handler interface
var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store   storage.Store
	metrics *metrics.Metrics
	ledger  ledgerReader
}

// NewGroupService creates a new GroupService. m may be nil.
func NewGroupService(store storage.Store, m *metrics.Metrics) *GroupService {
	return &GroupService{
		store:   store,
		metrics: m,
		ledger:  ledgerReader{store: store, metrics: m},
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
	}
}

func toAPIMember(m models.Membership, u *models.User) *api.Member {
	member := &api.Member{
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
	if u == nil {
		member.DisplayName = ledger.UnknownUserName
		return member
	}
	member.DisplayName = u.DisplayName
	member.Email = u.Email
	member.AvatarURL = u.AvatarURL
	member.IsGhost = u.IsGhost
	return member
}

func toAPIInvitation(inv *models.Invitation) *api.Invitation {
	return &api.Invitation{
		ID:          inv.ID,
		GroupID:     inv.GroupID,
		Email:       inv.Email,
		InvitedByID: inv.InvitedByID,
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt,
	}
}

// CreateGroup creates a group with the caller as its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrGroupNameRequired)
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
	}
	if err := s.store.CreateGroup(ctx, group, userID); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		if errors.Is(err, storage.ErrConflict) {
			return nil, connect.NewError(connect.CodeAlreadyExists, ErrGroupNameTaken)
		}
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup returns a group and its active members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroup request received", "group_id", groupID)

	if _, err := groupAccess(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	memberships, err := s.store.ListMemberships(ctx, groupID)
	if err != nil {
		slog.Error("GetGroup failed - could not list members", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	ids := make([]string, len(memberships))
	for i, m := range memberships {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Error("GetGroup failed - could not load users", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	members := make([]*api.Member, len(memberships))
	for i, m := range memberships {
		members[i] = toAPIMember(m, users[m.UserID])
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "members", len(members))
	return connect.NewResponse(&api.GetGroupResponse{
		Group:   toAPIGroup(group),
		Members: members,
	}), nil
}

// ListGroups returns the caller's groups with the caller's net balance in
// each.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	summaries := make([]*api.GroupSummary, 0, len(groups))
	for _, g := range groups {
		summary, err := compute(ctx, s.ledger, g.ID, metrics.OpBalances, func(snap *ledger.Snapshot) (*api.GroupSummary, error) {
			balances, err := ledger.NetBalances(snap)
			if err != nil {
				return nil, err
			}
			out := &api.GroupSummary{
				Group:       toAPIGroup(g),
				MemberCount: snap.Active().Len(),
				Balance:     decimal.Zero,
			}
			for _, m := range snap.Memberships {
				if m.UserID == userID {
					out.Role = string(m.Role)
				}
			}
			for _, b := range balances {
				if b.MemberID == userID {
					out.Balance = b.Amount
				}
			}
			return out, nil
		})
		if err != nil {
			// One broken group must not hide the others.
			slog.Error("ListGroups could not compute balance", "group_id", g.ID, "error", err)
			if summary, err = s.summaryWithoutBalance(ctx, g, userID); err != nil {
				return nil, toConnectError(err)
			}
		}
		summaries = append(summaries, summary)
	}

	slog.Info("ListGroups successful", "count", len(summaries))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: summaries}), nil
}

func (s *GroupService) summaryWithoutBalance(ctx context.Context, g *models.Group, userID string) (*api.GroupSummary, error) {
	memberships, err := s.store.ListMemberships(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	out := &api.GroupSummary{
		Group:              toAPIGroup(g),
		MemberCount:        ledger.ActiveMembers(g.ID, memberships).Len(),
		Balance:            decimal.Zero,
		BalanceUnavailable: true,
	}
	for _, m := range memberships {
		if m.UserID == userID {
			out.Role = string(m.Role)
		}
	}
	return out, nil
}

// AddGhostMember creates a placeholder user without a login and adds it to
// the group.
func (s *GroupService) AddGhostMember(ctx context.Context, req *connect.Request[api.AddGhostMemberRequest]) (*connect.Response[api.AddGhostMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("AddGhostMember request received", "group_id", groupID, "display_name", req.Msg.DisplayName)

	if _, err := groupAccess(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.DisplayName)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrDisplayName)
	}

	ghost := models.NewGhostUser(name)
	membership := &models.Membership{GroupID: groupID, Role: models.RoleMember}
	log := &models.ActivityLog{GroupID: groupID, Action: models.ActionMemberAdded, ActorID: userID}
	if err := s.store.CreateGhostMember(ctx, ghost, membership, log); err != nil {
		slog.Error("AddGhostMember failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Ghost member added", "group_id", groupID, "user_id", ghost.ID)
	return connect.NewResponse(&api.AddGhostMemberResponse{
		Member: toAPIMember(*membership, ghost),
	}), nil
}

// InviteMember records a pending invitation for an email address. Delivery
// happens out of band.
func (s *GroupService) InviteMember(ctx context.Context, req *connect.Request[api.InviteMemberRequest]) (*connect.Response[api.InviteMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	email := auth.NormalizeEmail(req.Msg.Email)
	slog.Info("InviteMember request received", "group_id", groupID, "email", email)

	if _, err := groupAccess(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidEmail)
	}

	// Inviting someone who is already in the group is a no-op error.
	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil {
		if _, err := s.store.GetMembership(ctx, groupID, existing.ID); err == nil {
			return nil, connect.NewError(connect.CodeAlreadyExists, ErrAlreadyMember)
		}
	}

	inv := &models.Invitation{GroupID: groupID, Email: email, InvitedByID: userID}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		slog.Error("InviteMember failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Invitation created", "invitation_id", inv.ID, "group_id", groupID)
	return connect.NewResponse(&api.InviteMemberResponse{Invitation: toAPIInvitation(inv)}), nil
}

// RespondToInvitation accepts or declines an invitation addressed to the
// caller's email.
func (s *GroupService) RespondToInvitation(ctx context.Context, req *connect.Request[api.RespondToInvitationRequest]) (*connect.Response[api.RespondToInvitationResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RespondToInvitation request received", "invitation_id", req.Msg.InvitationID, "accept", req.Msg.Accept)

	inv, err := s.store.GetInvitation(ctx, req.Msg.InvitationID)
	if err != nil {
		return nil, toConnectError(err)
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if auth.NormalizeEmail(user.Email) != auth.NormalizeEmail(inv.Email) {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrInvitationMismatch)
	}
	if inv.Status != models.InvitationPending {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("invitation already %s", inv.Status))
	}

	resp := &api.RespondToInvitationResponse{}
	if !req.Msg.Accept {
		if err := s.store.DeclineInvitation(ctx, inv.ID); err != nil {
			return nil, toConnectError(err)
		}
		inv.Status = models.InvitationDeclined
		resp.Invitation = toAPIInvitation(inv)
		slog.Info("Invitation declined", "invitation_id", inv.ID)
		return connect.NewResponse(resp), nil
	}

	membership := &models.Membership{GroupID: inv.GroupID, UserID: userID, Role: models.RoleMember}
	log := &models.ActivityLog{GroupID: inv.GroupID, Action: models.ActionMemberAdded, SubjectID: userID, ActorID: userID}
	if err := s.store.AcceptInvitation(ctx, inv.ID, membership, log); err != nil {
		slog.Error("AcceptInvitation failed", "invitation_id", inv.ID, "error", err)
		if errors.Is(err, storage.ErrConflict) {
			return nil, connect.NewError(connect.CodeAlreadyExists, ErrAlreadyMember)
		}
		return nil, toConnectError(err)
	}
	inv.Status = models.InvitationAccepted
	resp.Invitation = toAPIInvitation(inv)
	resp.Member = toAPIMember(*membership, user)

	slog.Info("Invitation accepted", "invitation_id", inv.ID, "group_id", inv.GroupID, "user_id", userID)
	return connect.NewResponse(resp), nil
}

// RemoveMember deletes a membership. Only admins may remove, and admins
// cannot be removed. History is kept; the ledger drops the member from
// balances from now on.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID, targetID := req.Msg.GroupID, req.Msg.UserID
	slog.Info("RemoveMember request received", "group_id", groupID, "target_id", targetID, "user_id", userID)

	caller, err := groupAccess(ctx, s.store, groupID, userID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrOnlyAdminsRemove)
	}

	target, err := s.store.GetMembership(ctx, groupID, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, ErrNotActiveMember)
		}
		return nil, toConnectError(err)
	}
	if target.Role == models.RoleAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrCannotRemoveAdmin)
	}

	log := &models.ActivityLog{GroupID: groupID, Action: models.ActionMemberRemoved, SubjectID: targetID, ActorID: userID}
	if err := s.store.RemoveMember(ctx, groupID, targetID, log); err != nil {
		slog.Error("RemoveMember failed", "group_id", groupID, "target_id", targetID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.MemberRemoved()

	slog.Info("Member removed", "group_id", groupID, "target_id", targetID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// GetBalances returns every active member's net balance with who they owe
// and who owes them.
func (s *GroupService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetBalances request received", "group_id", groupID)

	if _, err := groupAccess(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}

	balances, err := compute(ctx, s.ledger, groupID, metrics.OpDebts, buildBalances)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("GetBalances successful", "group_id", groupID, "members", len(balances))
	return connect.NewResponse(&api.GetBalancesResponse{Balances: balances}), nil
}

// GetGroupReport returns the group with balances and activity derived from
// a single snapshot.
func (s *GroupService) GetGroupReport(ctx context.Context, req *connect.Request[api.GetGroupReportRequest]) (*connect.Response[api.GetGroupReportResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupReport request received", "group_id", groupID)

	if _, err := groupAccess(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp, err := compute(ctx, s.ledger, groupID, metrics.OpReport, func(snap *ledger.Snapshot) (*api.GetGroupReportResponse, error) {
		report, err := ledger.Compute(snap)
		if err != nil {
			return nil, err
		}
		return &api.GetGroupReportResponse{
			Group:    toAPIGroup(group),
			Balances: toAPIBalances(report.Balances, report.Debts, directory(snap)),
			Activity: toAPIActivity(report.Activity),
		}, nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("GetGroupReport successful", "group_id", groupID, "activity", len(resp.Activity))
	return connect.NewResponse(resp), nil
}

func buildBalances(snap *ledger.Snapshot) ([]*api.MemberBalance, error) {
	nets, err := ledger.NetBalances(snap)
	if err != nil {
		return nil, err
	}
	debts, err := ledger.PairwiseDebts(snap)
	if err != nil {
		return nil, err
	}
	return toAPIBalances(nets, debts, directory(snap)), nil
}

func toAPIBalances(nets []ledger.NetBalance, debts []ledger.MemberDebts, dir ledger.Directory) []*api.MemberBalance {
	toDebts := func(in []ledger.Debt) []*api.Debt {
		out := make([]*api.Debt, len(in))
		for i, d := range in {
			out[i] = &api.Debt{
				UserID:      d.MemberID,
				DisplayName: dir.Resolve(d.MemberID).DisplayName(),
				Amount:      d.Amount,
			}
		}
		return out
	}

	byMember := make(map[string]ledger.MemberDebts, len(debts))
	for _, d := range debts {
		byMember[d.MemberID] = d
	}

	out := make([]*api.MemberBalance, len(nets))
	for i, n := range nets {
		p := dir.Resolve(n.MemberID)
		d := byMember[n.MemberID]
		out[i] = &api.MemberBalance{
			UserID:      n.MemberID,
			DisplayName: p.DisplayName(),
			AvatarURL:   p.AvatarURL(),
			Paid:        n.Paid,
			Owed:        n.Owed,
			Net:         n.Amount,
			OwesTo:      toDebts(d.OwesTo),
			OwedBy:      toDebts(d.OwedBy),
		}
	}
	return out
}
