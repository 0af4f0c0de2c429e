package ledger

import "github.com/mmynk/splitledger/internal/models"

// RemovedUserName replaces the display name of anyone who is no longer an
// active member.
const RemovedUserName = "Removed User"

// UnknownUserName is shown for an active member missing from the directory.
const UnknownUserName = "Unknown User"

// MemberSet is the set of active member IDs of a group, in first-seen order.
type MemberSet struct {
	ids   []string
	index map[string]struct{}
}

// ActiveMembers builds the active set for groupID from membership rows.
// Rows of other groups are ignored and duplicates collapse.
func ActiveMembers(groupID string, rows []models.Membership) MemberSet {
	set := MemberSet{index: make(map[string]struct{}, len(rows))}
	for _, r := range rows {
		if r.GroupID != groupID {
			continue
		}
		if _, ok := set.index[r.UserID]; ok {
			continue
		}
		set.index[r.UserID] = struct{}{}
		set.ids = append(set.ids, r.UserID)
	}
	return set
}

// Contains reports whether id is an active member.
func (m MemberSet) Contains(id string) bool {
	_, ok := m.index[id]
	return ok
}

// IDs returns the member IDs in first-seen order.
func (m MemberSet) IDs() []string {
	return append([]string(nil), m.ids...)
}

func (m MemberSet) Len() int { return len(m.ids) }

// Participant is a user as seen from the activity feed: either an
// ActiveMember or a HistoricalMember.
type Participant interface {
	UserID() string
	DisplayName() string
	AvatarURL() string
	participant()
}

// ActiveMember is a current member with full display information.
type ActiveMember struct {
	ID     string
	Name   string
	Avatar string
}

func (a ActiveMember) UserID() string      { return a.ID }
func (a ActiveMember) DisplayName() string { return a.Name }
func (a ActiveMember) AvatarURL() string   { return a.Avatar }
func (ActiveMember) participant()          {}

// HistoricalMember is someone referenced by past records who is no longer
// in the group. Only the ID survives.
type HistoricalMember struct {
	ID string
}

func (h HistoricalMember) UserID() string    { return h.ID }
func (HistoricalMember) DisplayName() string { return RemovedUserName }
func (HistoricalMember) AvatarURL() string   { return "" }
func (HistoricalMember) participant()        {}

// Directory resolves user IDs to participants against an active set.
type Directory struct {
	active MemberSet
	users  map[string]models.User
}

// NewDirectory returns a Directory over the given active set and users.
func NewDirectory(active MemberSet, users map[string]models.User) Directory {
	return Directory{active: active, users: users}
}

// Resolve returns an ActiveMember for current members and a
// HistoricalMember for everyone else.
func (d Directory) Resolve(id string) Participant {
	if !d.active.Contains(id) {
		return HistoricalMember{ID: id}
	}
	u, ok := d.users[id]
	if !ok {
		return ActiveMember{ID: id, Name: UnknownUserName}
	}
	return ActiveMember{ID: id, Name: u.DisplayName, Avatar: u.AvatarURL}
}
