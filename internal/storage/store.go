// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("already exists")
)

// Store defines the persistence operations used by the service layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// Users

	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs omits IDs that do not exist.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Groups and membership

	// CreateGroup persists the group and makes creator its admin.
	CreateGroup(ctx context.Context, group *models.Group, creatorID string) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsForUser returns the groups userID is currently a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	// GetMembership returns ErrNotFound when the user is not an active member.
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)
	ListMemberships(ctx context.Context, groupID string) ([]models.Membership, error)
	// AddMember inserts the membership and a member_added log in one
	// transaction. Returns ErrConflict if already a member.
	AddMember(ctx context.Context, m *models.Membership, log *models.ActivityLog) error
	// CreateGhostMember inserts a ghost user, its membership and a
	// member_added log in one transaction.
	CreateGhostMember(ctx context.Context, user *models.User, m *models.Membership, log *models.ActivityLog) error
	// RemoveMember deletes the membership and inserts a member_removed log in
	// one transaction. Returns ErrNotFound if the user is not a member.
	RemoveMember(ctx context.Context, groupID, userID string, log *models.ActivityLog) error

	// Invitations

	CreateInvitation(ctx context.Context, inv *models.Invitation) error
	GetInvitation(ctx context.Context, id string) (*models.Invitation, error)
	// AcceptInvitation marks the invitation accepted and adds the member with
	// its log in one transaction.
	AcceptInvitation(ctx context.Context, invitationID string, m *models.Membership, log *models.ActivityLog) error
	DeclineInvitation(ctx context.Context, invitationID string) error

	// Expenses and settlements

	// CreateExpense persists the expense with its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// SetSettlementStatus moves a pending settlement to status. Returns
	// ErrNotFound if it is missing or no longer pending.
	SetSettlementStatus(ctx context.Context, settlementID string, status models.SettlementStatus, at int64) error
	DeleteSettlement(ctx context.Context, settlementID string) error

	// LoadSnapshot reads every row the ledger needs for a group inside one
	// read transaction.
	LoadSnapshot(ctx context.Context, groupID string) (*ledger.Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
