package models

import "github.com/shopspring/decimal"

// SettlementMethod is how a settlement was paid outside the app.
type SettlementMethod string

const (
	MethodVenmo  SettlementMethod = "venmo"
	MethodPayPal SettlementMethod = "paypal"
	MethodCash   SettlementMethod = "cash"
	MethodBank   SettlementMethod = "bank"
	MethodOther  SettlementMethod = "other"
)

// Valid reports whether m is a known settlement method.
func (m SettlementMethod) Valid() bool {
	switch m {
	case MethodVenmo, MethodPayPal, MethodCash, MethodBank, MethodOther:
		return true
	}
	return false
}

// SettlementStatus tracks the payee's acknowledgement of a settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementConfirmed SettlementStatus = "confirmed"
	SettlementDisputed  SettlementStatus = "disputed"
)

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount. Never negative.
	Amount decimal.Decimal

	// Method records how the money moved.
	Method SettlementMethod

	// Status starts pending. It is informational only; every recorded
	// settlement counts toward balances.
	Status SettlementStatus

	// Notes is an optional description for the settlement.
	Notes string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// ConfirmedAt is when the payee confirmed or disputed it, zero while
	// pending.
	ConfirmedAt int64
}
