package ledger

import "errors"

var (
	// ErrInvalidSnapshot wraps every structural problem found in a Snapshot.
	ErrInvalidSnapshot = errors.New("invalid ledger snapshot")

	// ErrUnknownExpense is returned when a split references an expense that
	// is not part of the snapshot.
	ErrUnknownExpense = errors.New("split references unknown expense")

	ErrNegativeAmount      = errors.New("amounts cannot be negative")
	ErrNoParticipants      = errors.New("at least one participant is required")
	ErrDuplicateMember     = errors.New("participant listed more than once")
	ErrInvalidExactAmounts = errors.New("exact amounts must sum to total amount")
	ErrInvalidPercentages  = errors.New("percentages must sum to 100")
	ErrSubCentAmount       = errors.New("amounts cannot have more than two decimal places")
)
