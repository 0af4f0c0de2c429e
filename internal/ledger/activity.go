package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ActivityType tags an item of the merged feed.
type ActivityType string

const (
	ActivityExpense       ActivityType = "expense"
	ActivityPayment       ActivityType = "payment"
	ActivityMemberAdded   ActivityType = "member_added"
	ActivityMemberRemoved ActivityType = "member_removed"
)

// typeRank breaks timestamp ties.
var typeRank = map[ActivityType]int{
	ActivityExpense:       0,
	ActivityPayment:       1,
	ActivityMemberAdded:   2,
	ActivityMemberRemoved: 3,
}

const (
	logCategory            = "Log"
	paymentDescription     = "Payment"
	memberAddedDescription = "joined the group"
	memberRemovedDesc      = "was removed from the group"
)

// Person is display information for a participant. Removed is set when the
// underlying user is no longer an active member.
type Person struct {
	ID        string
	Name      string
	AvatarURL string
	Removed   bool
}

func personOf(p Participant) Person {
	_, historical := p.(HistoricalMember)
	return Person{
		ID:        p.UserID(),
		Name:      p.DisplayName(),
		AvatarURL: p.AvatarURL(),
		Removed:   historical,
	}
}

// Share is one participant's portion of an expense, for display.
type Share struct {
	Person Person
	Amount decimal.Decimal
}

// ActivityItem is one display-ready entry of the group feed.
//
// Actor is the payer for expenses and payments, and the member whose
// membership changed for log entries. Counterparty is the payee of a payment
// or the user who performed a membership change. Status is the settlement
// status for payments.
type ActivityItem struct {
	Type         ActivityType
	ID           string
	Description  string
	Category     string
	Amount       decimal.Decimal
	Actor        Person
	Counterparty *Person
	Shares       []Share
	Status       string
	Timestamp    int64
}

// Activity merges expenses, settlements and membership logs into one feed,
// newest first. Anyone not in the active set is shown as RemovedUserName;
// stored IDs are reported unchanged.
func Activity(snap *Snapshot) ([]ActivityItem, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return activity(snap, NewDirectory(snap.Active(), snap.Users)), nil
}

func activity(snap *Snapshot, dir Directory) []ActivityItem {
	items := make([]ActivityItem, 0, len(snap.Expenses)+len(snap.Settlements)+len(snap.Logs))

	for _, e := range snap.Expenses {
		shares := make([]Share, len(e.Splits))
		for i, sp := range e.Splits {
			shares[i] = Share{Person: personOf(dir.Resolve(sp.UserID)), Amount: sp.Amount}
		}
		ts := e.Date
		if ts == 0 {
			ts = e.CreatedAt
		}
		items = append(items, ActivityItem{
			Type:        ActivityExpense,
			ID:          e.ID,
			Description: e.Description,
			Category:    e.Category,
			Amount:      e.Amount,
			Actor:       personOf(dir.Resolve(e.PaidByID)),
			Shares:      shares,
			Timestamp:   ts,
		})
	}

	for _, s := range snap.Settlements {
		payee := personOf(dir.Resolve(s.ToUserID))
		desc := s.Notes
		if desc == "" {
			desc = paymentDescription
		}
		items = append(items, ActivityItem{
			Type:         ActivityPayment,
			ID:           s.ID,
			Description:  desc,
			Category:     string(s.Method),
			Amount:       s.Amount,
			Actor:        personOf(dir.Resolve(s.FromUserID)),
			Counterparty: &payee,
			Status:       string(s.Status),
			Timestamp:    s.CreatedAt,
		})
	}

	for _, l := range snap.Logs {
		var typ ActivityType
		var desc string
		switch l.Action {
		case models.ActionMemberAdded:
			typ, desc = ActivityMemberAdded, memberAddedDescription
		case models.ActionMemberRemoved:
			typ, desc = ActivityMemberRemoved, memberRemovedDesc
		default:
			continue
		}
		actor := personOf(dir.Resolve(l.ActorID))
		items = append(items, ActivityItem{
			Type:         typ,
			ID:           l.ID,
			Description:  desc,
			Category:     logCategory,
			Amount:       decimal.Zero,
			Actor:        personOf(dir.Resolve(l.SubjectID)),
			Counterparty: &actor,
			Timestamp:    l.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		if typeRank[a.Type] != typeRank[b.Type] {
			return typeRank[a.Type] < typeRank[b.Type]
		}
		return a.ID < b.ID
	})
	return items
}
