package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
	cent    = decimal.New(1, -2)
)

// SplitType selects how an expense is divided.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitCustom     SplitType = "custom"
	SplitPercentage SplitType = "percentage"
)

// ShareInput is a requested share for one member: an exact amount for
// custom splits or a percentage for percentage splits.
type ShareInput struct {
	UserID string
	Value  decimal.Decimal
}

// EqualSplit divides total among members to the cent. Every share is
// truncated to cents and the whole remainder goes to the first member, so
// the shares always sum to total: 100.00 / 3 = 33.34, 33.33, 33.33.
func EqualSplit(total decimal.Decimal, memberIDs []string) ([]models.ExpenseSplit, error) {
	if len(memberIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if total.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if err := checkCents(total); err != nil {
		return nil, err
	}
	if err := checkUnique(memberIDs); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(len(memberIDs)))
	share := total.Div(n).Truncate(2)
	remainder := total.Sub(share.Mul(n))

	splits := make([]models.ExpenseSplit, len(memberIDs))
	for i, id := range memberIDs {
		amount := share
		if i == 0 {
			amount = amount.Add(remainder)
		}
		splits[i] = models.ExpenseSplit{UserID: id, Amount: amount}
	}
	return splits, nil
}

// ExactSplit uses the given amounts, which must be whole cents and sum
// exactly to total.
func ExactSplit(total decimal.Decimal, shares []ShareInput) ([]models.ExpenseSplit, error) {
	if err := validateShares(total, shares); err != nil {
		return nil, err
	}
	sum := decimal.Zero
	splits := make([]models.ExpenseSplit, len(shares))
	for i, s := range shares {
		if err := checkCents(s.Value); err != nil {
			return nil, fmt.Errorf("%w: %s for %s", err, s.Value, s.UserID)
		}
		sum = sum.Add(s.Value)
		splits[i] = models.ExpenseSplit{UserID: s.UserID, Amount: s.Value}
	}
	if !sum.Equal(total) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrInvalidExactAmounts, sum.StringFixed(2), total.StringFixed(2))
	}
	return splits, nil
}

// PercentageSplit divides total by percentages summing to 100. Each share is
// truncated to the cent, then the leftover cents go one each to the members
// with the largest truncated fractions, earlier members first on ties. No
// share can go negative and the shares always sum to total.
func PercentageSplit(total decimal.Decimal, shares []ShareInput) ([]models.ExpenseSplit, error) {
	if err := validateShares(total, shares); err != nil {
		return nil, err
	}
	pct := decimal.Zero
	for _, s := range shares {
		if s.Value.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: %s%% for %s", ErrInvalidPercentages, s.Value, s.UserID)
		}
		pct = pct.Add(s.Value)
	}
	if !pct.Equal(hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidPercentages, pct)
	}

	sum := decimal.Zero
	splits := make([]models.ExpenseSplit, len(shares))
	fractions := make([]decimal.Decimal, len(shares))
	for i, s := range shares {
		exact := total.Mul(s.Value).Div(hundred)
		amount := exact.Truncate(2)
		fractions[i] = exact.Sub(amount)
		sum = sum.Add(amount)
		splits[i] = models.ExpenseSplit{UserID: s.UserID, Amount: amount}
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]].GreaterThan(fractions[order[b]])
	})
	// Fewer leftover cents than members: each truncation loses under a cent.
	leftover := total.Sub(sum).Div(cent).IntPart()
	for i := int64(0); i < leftover; i++ {
		sp := &splits[order[i]]
		sp.Amount = sp.Amount.Add(cent)
	}
	return splits, nil
}

func validateShares(total decimal.Decimal, shares []ShareInput) error {
	if len(shares) == 0 {
		return ErrNoParticipants
	}
	if total.IsNegative() {
		return ErrNegativeAmount
	}
	if err := checkCents(total); err != nil {
		return err
	}
	ids := make([]string, len(shares))
	for i, s := range shares {
		if s.Value.IsNegative() {
			return ErrNegativeAmount
		}
		ids[i] = s.UserID
	}
	return checkUnique(ids)
}

func checkUnique(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, id)
		}
		seen[id] = true
	}
	return nil
}

func checkCents(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(2)) {
		return ErrSubCentAmount
	}
	return nil
}
