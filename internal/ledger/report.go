package ledger

// Report bundles every view the engine computes for a group.
type Report struct {
	Balances []NetBalance
	Debts    []MemberDebts
	Activity []ActivityItem
}

// Compute validates the snapshot once and derives balances, pairwise debts
// and the activity feed from the same active set.
func Compute(snap *Snapshot) (*Report, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	active := snap.Active()
	return &Report{
		Balances: netBalances(snap, active),
		Debts:    pairwiseDebts(snap, active),
		Activity: activity(snap, NewDirectory(active, snap.Users)),
	}, nil
}
