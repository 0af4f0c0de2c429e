package ledger

import "github.com/shopspring/decimal"

// Tolerance absorbs rounding noise: pairwise nets within one cent of zero
// are treated as settled.
var Tolerance = decimal.New(1, -2)

// Debt is an amount owed to or by one counterpart. Amount is always positive.
type Debt struct {
	MemberID string
	Amount   decimal.Decimal
}

// MemberDebts lists who a member owes and who owes them.
// For any counterpart at most one of OwesTo/OwedBy has an entry.
type MemberDebts struct {
	MemberID string
	OwesTo   []Debt
	OwedBy   []Debt
}

// pairLedger accumulates directional amounts: gross[a][b] is what a owes b
// before netting against the reverse direction.
type pairLedger map[string]map[string]decimal.Decimal

func (p pairLedger) add(from, to string, amount decimal.Decimal) {
	row, ok := p[from]
	if !ok {
		row = make(map[string]decimal.Decimal)
		p[from] = row
	}
	row[to] = row[to].Add(amount)
}

func (p pairLedger) get(from, to string) decimal.Decimal {
	return p[from][to]
}

// PairwiseDebts computes, for every active member, the netted directional
// debts against every other active member.
//
// Algorithm, for each pair (M, N) of distinct active members:
//   - mOwesN = M's splits in expenses paid by N, minus settlements M paid N
//   - nOwesM = N's splits in expenses paid by M, minus settlements N paid M
//   - net = mOwesN - nOwesM
//   - net > Tolerance: M owes N; net < -Tolerance: N owes M; otherwise settled.
//
// Counterparts appear in MemberSet order.
func PairwiseDebts(snap *Snapshot) ([]MemberDebts, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return pairwiseDebts(snap, snap.Active()), nil
}

func pairwiseDebts(snap *Snapshot, active MemberSet) []MemberDebts {
	owes := make(pairLedger)
	for _, e := range snap.Expenses {
		if !active.Contains(e.PaidByID) {
			continue
		}
		for _, sp := range e.Splits {
			if sp.UserID == e.PaidByID || !active.Contains(sp.UserID) {
				continue
			}
			owes.add(sp.UserID, e.PaidByID, sp.Amount)
		}
	}

	paid := make(pairLedger)
	for _, s := range snap.Settlements {
		if s.FromUserID == s.ToUserID || !active.Contains(s.FromUserID) || !active.Contains(s.ToUserID) {
			continue
		}
		paid.add(s.FromUserID, s.ToUserID, s.Amount)
	}

	negTolerance := Tolerance.Neg()
	out := make([]MemberDebts, 0, active.Len())
	for _, m := range active.ids {
		debts := MemberDebts{MemberID: m}
		for _, n := range active.ids {
			if m == n {
				continue
			}
			mOwesN := owes.get(m, n).Sub(paid.get(m, n))
			nOwesM := owes.get(n, m).Sub(paid.get(n, m))
			net := mOwesN.Sub(nOwesM)

			switch {
			case net.GreaterThan(Tolerance):
				debts.OwesTo = append(debts.OwesTo, Debt{MemberID: n, Amount: net})
			case net.LessThan(negTolerance):
				debts.OwedBy = append(debts.OwedBy, Debt{MemberID: n, Amount: net.Abs()})
			}
		}
		out = append(out, debts)
	}
	return out
}
