package ledger

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// Snapshot is a consistent read of one group's rows.
//
// Memberships hold only current members. Users is the display directory and
// may include people who are no longer members.
type Snapshot struct {
	GroupID     string
	Memberships []models.Membership
	Expenses    []models.Expense
	Settlements []models.Settlement
	Logs        []models.ActivityLog
	Users       map[string]models.User
}

// Validate checks the structural invariants the calculators rely on.
// Errors wrap ErrInvalidSnapshot.
func (s *Snapshot) Validate() error {
	for _, e := range s.Expenses {
		if e.GroupID != "" && e.GroupID != s.GroupID {
			return fmt.Errorf("%w: expense %s belongs to group %s", ErrInvalidSnapshot, e.ID, e.GroupID)
		}
		if e.Amount.IsNegative() {
			return fmt.Errorf("%w: expense %s: %w", ErrInvalidSnapshot, e.ID, ErrNegativeAmount)
		}
		seen := make(map[string]bool, len(e.Splits))
		for _, sp := range e.Splits {
			if sp.ExpenseID != "" && sp.ExpenseID != e.ID {
				return fmt.Errorf("%w: split for expense %s listed under expense %s", ErrInvalidSnapshot, sp.ExpenseID, e.ID)
			}
			if sp.Amount.IsNegative() {
				return fmt.Errorf("%w: split of %s in expense %s: %w", ErrInvalidSnapshot, sp.UserID, e.ID, ErrNegativeAmount)
			}
			if seen[sp.UserID] {
				return fmt.Errorf("%w: duplicate split for %s in expense %s", ErrInvalidSnapshot, sp.UserID, e.ID)
			}
			seen[sp.UserID] = true
		}
	}
	for _, st := range s.Settlements {
		if st.GroupID != "" && st.GroupID != s.GroupID {
			return fmt.Errorf("%w: settlement %s belongs to group %s", ErrInvalidSnapshot, st.ID, st.GroupID)
		}
		if st.Amount.IsNegative() {
			return fmt.Errorf("%w: settlement %s: %w", ErrInvalidSnapshot, st.ID, ErrNegativeAmount)
		}
	}
	for _, l := range s.Logs {
		if l.GroupID != "" && l.GroupID != s.GroupID {
			return fmt.Errorf("%w: log %s belongs to group %s", ErrInvalidSnapshot, l.ID, l.GroupID)
		}
	}
	return nil
}

// Active resolves the snapshot's current member set.
func (s *Snapshot) Active() MemberSet {
	return ActiveMembers(s.GroupID, s.Memberships)
}

// AttachSplits groups flat split rows under their expenses, preserving the
// order of both inputs. The expenses are copied; the input slice is not
// modified.
func AttachSplits(expenses []models.Expense, splits []models.ExpenseSplit) ([]models.Expense, error) {
	out := make([]models.Expense, len(expenses))
	index := make(map[string]int, len(expenses))
	for i, e := range expenses {
		e.Splits = nil
		out[i] = e
		index[e.ID] = i
	}
	for _, sp := range splits {
		i, ok := index[sp.ExpenseID]
		if !ok {
			return nil, fmt.Errorf("%w: %s (member %s)", ErrUnknownExpense, sp.ExpenseID, sp.UserID)
		}
		out[i].Splits = append(out[i].Splits, sp)
	}
	return out, nil
}
