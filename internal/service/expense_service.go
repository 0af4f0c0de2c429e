package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// Ensure ExpenseService implements the handler interface
var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService: expenses,
// settlements and the activity feed.
type ExpenseService struct {
	store   storage.Store
	metrics *metrics.Metrics
	ledger  ledgerReader
}

// NewExpenseService creates a new ExpenseService. m may be nil.
func NewExpenseService(store storage.Store, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{
		store:   store,
		metrics: m,
		ledger:  ledgerReader{store: store, metrics: m},
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	splits := make([]*api.Split, len(e.Splits))
	for i, sp := range e.Splits {
		splits[i] = &api.Split{UserID: sp.UserID, Amount: sp.Amount}
	}
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidByID:    e.PaidByID,
		Category:    e.Category,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
		Splits:      splits,
	}
}

func toAPISettlement(st *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:          st.ID,
		GroupID:     st.GroupID,
		FromUserID:  st.FromUserID,
		ToUserID:    st.ToUserID,
		Amount:      st.Amount,
		Method:      string(st.Method),
		Status:      string(st.Status),
		Notes:       st.Notes,
		CreatedBy:   st.CreatedBy,
		CreatedAt:   st.CreatedAt,
		ConfirmedAt: st.ConfirmedAt,
	}
}

func toShareInputs(in []*api.Share) []ledger.ShareInput {
	out := make([]ledger.ShareInput, 0, len(in))
	for _, s := range in {
		if s == nil {
			continue
		}
		out = append(out, ledger.ShareInput{UserID: s.UserID, Value: s.Value})
	}
	return out
}

// splitsFor builds the splits for req against the group's active members.
func splitsFor(req *api.CreateExpenseRequest, active ledger.MemberSet) ([]models.ExpenseSplit, error) {
	splitType := ledger.SplitType(strings.ToLower(req.SplitType))
	if splitType == "" {
		splitType = ledger.SplitEqual
	}

	var (
		splits []models.ExpenseSplit
		err    error
	)
	switch splitType {
	case ledger.SplitEqual:
		members := req.SplitBetween
		if len(members) == 0 {
			members = active.IDs()
		}
		splits, err = ledger.EqualSplit(req.Amount, members)
	case ledger.SplitCustom:
		splits, err = ledger.ExactSplit(req.Amount, toShareInputs(req.CustomSplits))
	case ledger.SplitPercentage:
		splits, err = ledger.PercentageSplit(req.Amount, toShareInputs(req.Percentages))
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrUnknownSplitType)
	}
	if err != nil {
		return nil, err
	}

	for _, sp := range splits {
		if sp.Amount.IsNegative() {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s for %s", ledger.ErrNegativeAmount, sp.Amount, sp.UserID))
		}
		if !active.Contains(sp.UserID) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s", ErrNotActiveMember, sp.UserID))
		}
	}
	return splits, nil
}

// CreateExpense records an expense paid by an active member and split among
// active members.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount.String(),
		"split_type", msg.SplitType,
	)

	if _, err := groupAccess(ctx, s.store, msg.GroupID, userID); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("description is required"))
	}
	if !msg.Amount.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrPositiveAmount)
	}
	if !msg.Amount.Equal(msg.Amount.Truncate(2)) {
		return nil, connect.NewError(connect.CodeInvalidArgument, ledger.ErrSubCentAmount)
	}

	memberships, err := s.store.ListMemberships(ctx, msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	active := ledger.ActiveMembers(msg.GroupID, memberships)

	paidBy := msg.PaidByID
	if paidBy == "" {
		paidBy = userID
	}
	if !active.Contains(paidBy) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("payer: %w", ErrNotActiveMember))
	}

	splits, err := splitsFor(msg, active)
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	now := time.Now().Unix()
	date := msg.Date
	if date == 0 {
		date = now
	}
	expense := &models.Expense{
		GroupID:     msg.GroupID,
		Description: description,
		Amount:      msg.Amount,
		PaidByID:    paidBy,
		Category:    strings.TrimSpace(msg.Category),
		Date:        date,
		CreatedAt:   now,
		Splits:      splits,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ExpenseCreated()

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID, "splits", len(splits))
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

func toAPIPerson(p ledger.Person) *api.Person {
	return &api.Person{
		UserID:      p.ID,
		DisplayName: p.Name,
		AvatarURL:   p.AvatarURL,
		Removed:     p.Removed,
	}
}

func toAPIActivity(items []ledger.ActivityItem) []*api.ActivityItem {
	out := make([]*api.ActivityItem, len(items))
	for i, it := range items {
		item := &api.ActivityItem{
			Type:        string(it.Type),
			ID:          it.ID,
			Description: it.Description,
			Category:    it.Category,
			Amount:      it.Amount,
			Actor:       toAPIPerson(it.Actor),
			Status:      it.Status,
			Timestamp:   it.Timestamp,
		}
		if it.Counterparty != nil {
			item.Counterparty = toAPIPerson(*it.Counterparty)
		}
		for _, sh := range it.Shares {
			item.Shares = append(item.Shares, &api.ActivityShare{
				Person: toAPIPerson(sh.Person),
				Amount: sh.Amount,
			})
		}
		out[i] = item
	}
	return out
}

// ListActivity returns the group's merged feed, newest first.
func (s *ExpenseService) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("ListActivity request received", "group_id", groupID)

	if _, err := groupAccess(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}

	items, err := compute(ctx, s.ledger, groupID, metrics.OpActivity, ledger.Activity)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := toAPIActivity(items)
	slog.Info("ListActivity successful", "group_id", groupID, "count", len(out))
	return connect.NewResponse(&api.ListActivityResponse{Items: out}), nil
}

// CreateSettlement records a payment from the caller to another active
// member.
func (s *ExpenseService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateSettlement request received",
		"group_id", msg.GroupID,
		"to_user_id", msg.ToUserID,
		"amount", msg.Amount.String(),
	)

	if _, err := groupAccess(ctx, s.store, msg.GroupID, userID); err != nil {
		return nil, err
	}
	if msg.ToUserID == userID {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrSelfSettlement)
	}
	if !msg.Amount.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrPositiveAmount)
	}
	method := models.SettlementMethod(strings.ToLower(msg.Method))
	if method == "" {
		method = models.MethodOther
	}
	if !method.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrUnknownMethod)
	}
	if _, err := s.store.GetMembership(ctx, msg.GroupID, msg.ToUserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("payee: %w", ErrNotActiveMember))
		}
		return nil, toConnectError(err)
	}

	settlement := &models.Settlement{
		GroupID:    msg.GroupID,
		FromUserID: userID,
		ToUserID:   msg.ToUserID,
		Amount:     msg.Amount,
		Method:     method,
		Notes:      strings.TrimSpace(msg.Notes),
		CreatedBy:  userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.SettlementCreated()

	slog.Info("Settlement created", "settlement_id", settlement.ID, "group_id", settlement.GroupID)
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ConfirmSettlement lets the payee confirm or dispute a pending settlement.
// Balances are unaffected either way.
func (s *ExpenseService) ConfirmSettlement(ctx context.Context, req *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ConfirmSettlement request received", "settlement_id", req.Msg.SettlementID, "dispute", req.Msg.Dispute)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := groupAccess(ctx, s.store, settlement.GroupID, userID); err != nil {
		return nil, err
	}
	if settlement.ToUserID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrSettlementConfirm)
	}
	if settlement.Status != models.SettlementPending {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("settlement already %s", settlement.Status))
	}

	status := models.SettlementConfirmed
	if req.Msg.Dispute {
		status = models.SettlementDisputed
	}
	now := time.Now().Unix()
	if err := s.store.SetSettlementStatus(ctx, settlement.ID, status, now); err != nil {
		slog.Error("ConfirmSettlement failed", "settlement_id", settlement.ID, "error", err)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("settlement is no longer pending: %w", err))
		}
		return nil, toConnectError(err)
	}
	settlement.Status = status
	settlement.ConfirmedAt = now

	slog.Info("Settlement status updated", "settlement_id", settlement.ID, "status", status)
	return connect.NewResponse(&api.ConfirmSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// DeleteSettlement removes a settlement. Allowed for its creator and for
// group admins.
func (s *ExpenseService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}
	caller, err := groupAccess(ctx, s.store, settlement.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if settlement.CreatedBy != userID && caller.Role != models.RoleAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrSettlementDelete)
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}
