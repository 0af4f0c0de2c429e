// Package service implements the Connect RPC services on top of the store
// and the ledger engine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var tracer = otel.Tracer("github.com/mmynk/splitledger/internal/service")

// Errors surfaced to clients. The wording of the access errors is shown
// verbatim in the UI.
var (
	ErrNotMember          = errors.New("You are not a member of this group")
	ErrOnlyAdminsRemove   = errors.New("Access denied: Only admins can remove members")
	ErrCannotRemoveAdmin  = errors.New("Access denied: Cannot remove an admin")
	ErrGroupIDRequired    = errors.New("group_id required")
	ErrGroupNameRequired  = errors.New("Group name is required")
	ErrGroupNameTaken     = errors.New("a group with that name already exists")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrInvitationMismatch = errors.New("invitation was sent to a different email")
	ErrNotActiveMember    = errors.New("user is not an active member of this group")
	ErrSelfSettlement     = errors.New("cannot settle with yourself")
	ErrPositiveAmount     = errors.New("amount must be greater than zero")
	ErrUnknownSplitType   = errors.New("split_type must be equal, custom or percentage")
	ErrUnknownMethod      = errors.New("method must be venmo, paypal, cash, bank or other")
	ErrSettlementDelete   = errors.New("only the creator or a group admin can delete a settlement")
	ErrSettlementConfirm  = errors.New("only the payee can confirm a settlement")
)

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// toConnectError maps store and engine errors onto Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrNoParticipants),
		errors.Is(err, ledger.ErrDuplicateMember),
		errors.Is(err, ledger.ErrInvalidExactAmounts),
		errors.Is(err, ledger.ErrInvalidPercentages),
		errors.Is(err, ledger.ErrSubCentAmount):
		// A negative amount inside a stored snapshot is corrupt data, not
		// bad input, and is caught by the snapshot check below first.
		if errors.Is(err, ledger.ErrInvalidSnapshot) {
			return connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// groupAccess loads the caller's membership, distinguishing a missing group
// from a group the caller is not in.
func groupAccess(ctx context.Context, store storage.Store, groupID, userID string) (*models.Membership, error) {
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrGroupIDRequired)
	}
	if _, err := store.GetGroup(ctx, groupID); err != nil {
		return nil, toConnectError(err)
	}
	m, err := store.GetMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodePermissionDenied, ErrNotMember)
		}
		return nil, toConnectError(err)
	}
	return m, nil
}

// ledgerReader loads snapshots and runs the engine with tracing and timing.
type ledgerReader struct {
	store   storage.Store
	metrics *metrics.Metrics
}

func (r ledgerReader) snapshot(ctx context.Context, groupID string) (*ledger.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "store.LoadSnapshot", trace.WithAttributes(attribute.String("group.id", groupID)))
	defer span.End()

	snap, err := r.store.LoadSnapshot(ctx, groupID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load snapshot")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("ledger.members", len(snap.Memberships)),
		attribute.Int("ledger.expenses", len(snap.Expenses)),
		attribute.Int("ledger.settlements", len(snap.Settlements)),
	)
	return snap, nil
}

// compute runs fn against a fresh snapshot of groupID under a span named
// after operation.
func compute[T any](ctx context.Context, r ledgerReader, groupID, operation string, fn func(*ledger.Snapshot) (T, error)) (T, error) {
	var zero T
	snap, err := r.snapshot(ctx, groupID)
	if err != nil {
		return zero, err
	}

	_, span := tracer.Start(ctx, "ledger."+operation, trace.WithAttributes(attribute.String("group.id", groupID)))
	defer span.End()

	start := time.Now()
	out, err := fn(snap)
	r.metrics.ObserveCompute(operation, start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, operation)
		slog.ErrorContext(ctx, "Ledger computation failed", "group_id", groupID, "operation", operation, "error", err)
		return zero, err
	}
	return out, nil
}

// directory resolves display names for the active members of snap.
func directory(snap *ledger.Snapshot) ledger.Directory {
	return ledger.NewDirectory(snap.Active(), snap.Users)
}
