package ledger

import "github.com/shopspring/decimal"

// NetBalance is one active member's position in the group.
type NetBalance struct {
	MemberID string
	Paid     decimal.Decimal // Credited from expenses paid and settlements sent
	Owed     decimal.Decimal // Own expense shares and settlements received
	Amount   decimal.Decimal // Paid - Owed. Positive = group owes them, Negative = they owe the group
}

// NetBalances computes one NetBalance per active member, in MemberSet order.
//
// Algorithm:
//   - For each expense with an active payer: the payer is credited with the
//     sum of splits held by active members; each active participant owes
//     their split.
//   - Expenses with an inactive payer are skipped entirely.
//   - For each settlement between two active members: the sender's paid
//     increases, the receiver's owed increases.
//   - Amount = paid - owed.
//
// Because the payer is only credited with shares of active members, the
// amounts always sum to zero, including when inactive members' shares were
// dropped.
func NetBalances(snap *Snapshot) ([]NetBalance, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return netBalances(snap, snap.Active()), nil
}

func netBalances(snap *Snapshot, active MemberSet) []NetBalance {
	// Track balances per member
	balances := make(map[string]*NetBalance, active.Len())
	for _, id := range active.ids {
		balances[id] = &NetBalance{MemberID: id, Paid: decimal.Zero, Owed: decimal.Zero}
	}

	for _, e := range snap.Expenses {
		payer, ok := balances[e.PaidByID]
		if !ok {
			continue
		}
		for _, sp := range e.Splits {
			member, ok := balances[sp.UserID]
			if !ok {
				continue
			}
			payer.Paid = payer.Paid.Add(sp.Amount)
			member.Owed = member.Owed.Add(sp.Amount)
		}
	}

	for _, s := range snap.Settlements {
		from, okFrom := balances[s.FromUserID]
		to, okTo := balances[s.ToUserID]
		if !okFrom || !okTo {
			continue
		}
		from.Paid = from.Paid.Add(s.Amount)
		to.Owed = to.Owed.Add(s.Amount)
	}

	out := make([]NetBalance, 0, active.Len())
	for _, id := range active.ids {
		b := balances[id]
		b.Amount = b.Paid.Sub(b.Owed)
		out = append(out, *b)
	}
	return out
}
