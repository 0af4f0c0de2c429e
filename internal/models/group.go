package models

// Role is a member's permission level within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Group represents a set of people sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates"). Unique.
	Name string

	// Description is optional free text.
	Description string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership records that a user is currently in a group.
//
// There is no "removed" state: deleting the row is the removal. Historical
// expenses and settlements keep referencing the user ID.
type Membership struct {
	GroupID string
	UserID  string
	Role    Role

	// JoinedAt is the Unix timestamp when the user joined.
	JoinedAt int64
}

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation asks the owner of an email address to join a group.
type Invitation struct {
	ID          string
	GroupID     string
	Email       string
	InvitedByID string
	Status      InvitationStatus
	CreatedAt   int64
}
