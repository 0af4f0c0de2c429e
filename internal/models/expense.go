package models

import "github.com/shopspring/decimal"

// Expense is a payment made by one member on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total paid. Splits need not sum to it for custom
	// splits; equal splits always do.
	Amount decimal.Decimal

	// PaidByID is the user who paid. May reference a removed member.
	PaidByID string

	// Category is an optional grouping label (e.g., "Food").
	Category string

	// Date is the Unix timestamp the expense happened.
	Date int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// Splits are the per-member shares of this expense.
	Splits []ExpenseSplit
}

// ExpenseSplit is one member's share of an expense.
// There is at most one split per (expense, user).
type ExpenseSplit struct {
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
}

// ActivityAction is a membership change recorded in the activity log.
type ActivityAction string

const (
	ActionMemberAdded   ActivityAction = "member_added"
	ActionMemberRemoved ActivityAction = "member_removed"
)

// ActivityLog records a membership change.
type ActivityLog struct {
	ID      string
	GroupID string
	Action  ActivityAction

	// SubjectID is the user who was added or removed.
	SubjectID string

	// ActorID is the user who performed the action. Equal to SubjectID
	// when someone joins by accepting an invitation.
	ActorID string

	CreatedAt int64
}
