package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	IsGhost     bool   `json:"isGhost,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Groups

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// Member is an active member of a group.
type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	IsGhost     bool   `json:"isGhost,omitempty"`
	Role        string `json:"role"`
	JoinedAt    int64  `json:"joinedAt"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group   *Group    `json:"group"`
	Members []*Member `json:"members"`
}

type ListGroupsRequest struct{}

// GroupSummary is a group as seen by one member, with that member's net
// balance.
//
// BalanceUnavailable is set when the group's ledger could not be computed;
// Balance is then zero and should not be shown.
type GroupSummary struct {
	Group              *Group          `json:"group"`
	Role               string          `json:"role"`
	MemberCount        int             `json:"memberCount"`
	Balance            decimal.Decimal `json:"balance"`
	BalanceUnavailable bool            `json:"balanceUnavailable,omitempty"`
}

type ListGroupsResponse struct {
	Groups []*GroupSummary `json:"groups"`
}

type AddGhostMemberRequest struct {
	GroupID     string `json:"groupId"`
	DisplayName string `json:"displayName"`
}

type AddGhostMemberResponse struct {
	Member *Member `json:"member"`
}

type Invitation struct {
	ID          string `json:"id"`
	GroupID     string `json:"groupId"`
	Email       string `json:"email"`
	InvitedByID string `json:"invitedById"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
}

type InviteMemberRequest struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email"`
}

type InviteMemberResponse struct {
	Invitation *Invitation `json:"invitation"`
}

type RespondToInvitationRequest struct {
	InvitationID string `json:"invitationId"`
	Accept       bool   `json:"accept"`
}

type RespondToInvitationResponse struct {
	Invitation *Invitation `json:"invitation"`
	// Member is set when the invitation was accepted.
	Member *Member `json:"member,omitempty"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct{}

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

// Debt is an amount owed to or by a counterpart, with their display name.
type Debt struct {
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	Amount      decimal.Decimal `json:"amount"`
}

// MemberBalance is an active member's position in a group. Positive Net
// means the group owes them.
type MemberBalance struct {
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	AvatarURL   string          `json:"avatarUrl,omitempty"`
	Paid        decimal.Decimal `json:"paid"`
	Owed        decimal.Decimal `json:"owed"`
	Net         decimal.Decimal `json:"net"`
	OwesTo      []*Debt         `json:"owesTo"`
	OwedBy      []*Debt         `json:"owedBy"`
}

type GetBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
}

type GetGroupReportRequest struct {
	GroupID string `json:"groupId"`
}

// GetGroupReportResponse carries balances and the feed computed from one
// snapshot, so the two always agree.
type GetGroupReportResponse struct {
	Group    *Group           `json:"group"`
	Balances []*MemberBalance `json:"balances"`
	Activity []*ActivityItem  `json:"activity"`
}

// Expenses

// Share is a requested share: an exact amount for custom splits, a
// percentage for percentage splits.
type Share struct {
	UserID string          `json:"userId"`
	Value  decimal.Decimal `json:"value"`
}

type Split struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidByID    string          `json:"paidById"`
	Category    string          `json:"category,omitempty"`
	Date        int64           `json:"date"`
	CreatedAt   int64           `json:"createdAt"`
	Splits      []*Split        `json:"splits"`
}

// CreateExpenseRequest records an expense. SplitType is "equal" (uses
// SplitBetween, or every active member when empty), "custom" (uses
// CustomSplits) or "percentage" (uses Percentages).
type CreateExpenseRequest struct {
	GroupID      string          `json:"groupId"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	PaidByID     string          `json:"paidById"`
	SplitType    string          `json:"splitType"`
	SplitBetween []string        `json:"splitBetween,omitempty"`
	CustomSplits []*Share        `json:"customSplits,omitempty"`
	Percentages  []*Share        `json:"percentages,omitempty"`
	Category     string          `json:"category,omitempty"`
	Date         int64           `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListActivityRequest struct {
	GroupID string `json:"groupId"`
}

// Person is display information for someone in the feed. Removed people
// carry the placeholder name and no avatar.
type Person struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Removed     bool   `json:"removed,omitempty"`
}

type ActivityShare struct {
	Person *Person         `json:"person"`
	Amount decimal.Decimal `json:"amount"`
}

// ActivityItem is one entry of the group feed. Type is one of "expense",
// "payment", "member_added", "member_removed". Status is set for payments.
type ActivityItem struct {
	Type         string           `json:"type"`
	ID           string           `json:"id"`
	Description  string           `json:"description"`
	Category     string           `json:"category,omitempty"`
	Amount       decimal.Decimal  `json:"amount"`
	Actor        *Person          `json:"actor"`
	Counterparty *Person          `json:"counterparty,omitempty"`
	Shares       []*ActivityShare `json:"shares,omitempty"`
	Status       string           `json:"status,omitempty"`
	Timestamp    int64            `json:"timestamp"`
}

type ListActivityResponse struct {
	Items []*ActivityItem `json:"items"`
}

// Settlements

// Settlement is a recorded payment. Status is "pending" until the payee
// confirms or disputes it; balances count it either way.
type Settlement struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	FromUserID  string          `json:"fromUserId"`
	ToUserID    string          `json:"toUserId"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   int64           `json:"createdAt"`
	ConfirmedAt int64           `json:"confirmedAt,omitempty"`
}

// CreateSettlementRequest records a payment from the caller to ToUserID.
type CreateSettlementRequest struct {
	GroupID  string          `json:"groupId"`
	ToUserID string          `json:"toUserId"`
	Amount   decimal.Decimal `json:"amount"`
	Method   string          `json:"method,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

// ConfirmSettlementRequest is sent by the payee. Dispute marks the
// settlement disputed instead of confirmed.
type ConfirmSettlementRequest struct {
	SettlementID string `json:"settlementId"`
	Dispute      bool   `json:"dispute,omitempty"`
}

type ConfirmSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}
