package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func sumSplits(splits []models.ExpenseSplit) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		members []string
		want    []string
	}{
		{"three way", "100.00", []string{"a", "b", "c"}, []string{"33.34", "33.33", "33.33"}},
		{"even", "45.00", []string{"a", "b"}, []string{"22.50", "22.50"}},
		{"single", "12.34", []string{"a"}, []string{"12.34"}},
		{"large remainder", "0.06", []string{"a", "b", "c", "d", "e", "f", "g"}, []string{"0.06", "0", "0", "0", "0", "0", "0"}},
		{"seven way", "10.00", []string{"a", "b", "c", "d", "e", "f", "g"}, []string{"1.48", "1.42", "1.42", "1.42", "1.42", "1.42", "1.42"}},
		{"zero", "0", []string{"a", "b"}, []string{"0", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := EqualSplit(dec(tt.total), tt.members)
			if err != nil {
				t.Fatalf("EqualSplit() error = %v", err)
			}
			for i, s := range splits {
				if s.UserID != tt.members[i] {
					t.Errorf("splits[%d].UserID = %s, want %s", i, s.UserID, tt.members[i])
				}
				assertDec(t, s.UserID, s.Amount, tt.want[i])
			}
			assertDec(t, "sum", sumSplits(splits), tt.total)
		})
	}
}

func TestEqualSplit_Errors(t *testing.T) {
	if _, err := EqualSplit(dec("10"), nil); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("no members: error = %v", err)
	}
	if _, err := EqualSplit(dec("-10"), []string{"a"}); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative total: error = %v", err)
	}
	if _, err := EqualSplit(dec("10"), []string{"a", "a"}); !errors.Is(err, ErrDuplicateMember) {
		t.Errorf("duplicate member: error = %v", err)
	}
	if _, err := EqualSplit(dec("10.001"), []string{"a"}); !errors.Is(err, ErrSubCentAmount) {
		t.Errorf("sub-cent total: error = %v", err)
	}
}

func TestExactSplit(t *testing.T) {
	splits, err := ExactSplit(dec("50.00"), []ShareInput{
		{UserID: "a", Value: dec("20.00")},
		{UserID: "b", Value: dec("30.00")},
	})
	if err != nil {
		t.Fatalf("ExactSplit() error = %v", err)
	}
	assertDec(t, "a", splits[0].Amount, "20")
	assertDec(t, "b", splits[1].Amount, "30")

	_, err = ExactSplit(dec("50.00"), []ShareInput{
		{UserID: "a", Value: dec("20.00")},
		{UserID: "b", Value: dec("29.99")},
	})
	if !errors.Is(err, ErrInvalidExactAmounts) {
		t.Errorf("mismatched sum: error = %v", err)
	}

	_, err = ExactSplit(dec("10"), []ShareInput{{UserID: "a", Value: dec("-1")}, {UserID: "b", Value: dec("11")}})
	if !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative share: error = %v", err)
	}

	_, err = ExactSplit(dec("100.00"), []ShareInput{
		{UserID: "a", Value: dec("33.335")},
		{UserID: "b", Value: dec("66.665")},
	})
	if !errors.Is(err, ErrSubCentAmount) {
		t.Errorf("sub-cent shares: error = %v", err)
	}
}

func TestPercentageSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		shares  []ShareInput
		want    []string
		wantErr error
	}{
		{
			name:  "halves",
			total: "80",
			shares: []ShareInput{
				{UserID: "a", Value: dec("50")},
				{UserID: "b", Value: dec("50")},
			},
			want: []string{"40", "40"},
		},
		{
			name:  "leftover cent goes to largest fraction",
			total: "100.00",
			shares: []ShareInput{
				{UserID: "a", Value: dec("33.335")},
				{UserID: "b", Value: dec("33.335")},
				{UserID: "c", Value: dec("33.33")},
			},
			want: []string{"33.34", "33.33", "33.33"},
		},
		{
			name:  "thirds of ten",
			total: "10.00",
			shares: []ShareInput{
				{UserID: "a", Value: dec("33.33")},
				{UserID: "b", Value: dec("66.67")},
			},
			want: []string{"3.33", "6.67"},
		},
		{
			name:  "small total never goes negative",
			total: "0.10",
			shares: []ShareInput{
				{UserID: "a", Value: dec("15")},
				{UserID: "b", Value: dec("15")},
				{UserID: "c", Value: dec("15")},
				{UserID: "d", Value: dec("15")},
				{UserID: "e", Value: dec("15")},
				{UserID: "f", Value: dec("15")},
				{UserID: "g", Value: dec("10")},
			},
			want: []string{"0.02", "0.02", "0.02", "0.01", "0.01", "0.01", "0.01"},
		},
		{
			name:    "sub-cent total",
			total:   "10.005",
			shares:  []ShareInput{{UserID: "a", Value: dec("100")}},
			wantErr: ErrSubCentAmount,
		},
		{
			name:  "does not sum to 100",
			total: "10",
			shares: []ShareInput{
				{UserID: "a", Value: dec("50")},
				{UserID: "b", Value: dec("40")},
			},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:    "over 100",
			total:   "10",
			shares:  []ShareInput{{UserID: "a", Value: dec("150")}, {UserID: "b", Value: dec("-50")}},
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := PercentageSplit(dec(tt.total), tt.shares)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("PercentageSplit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PercentageSplit() error = %v", err)
			}
			for i, s := range splits {
				assertDec(t, s.UserID, s.Amount, tt.want[i])
			}
			assertDec(t, "sum", sumSplits(splits), tt.total)
		})
	}
}

func TestPercentageSplit_SharesStayWholeAndNonNegative(t *testing.T) {
	percentSets := [][]string{
		{"15", "15", "15", "15", "15", "15", "10"},
		{"33.33", "33.33", "33.34"},
		{"99.99", "0.01"},
		{"12.5", "12.5", "25", "50"},
		{"1", "1", "1", "1", "1", "95"},
	}
	totals := []string{"0", "0.01", "0.07", "0.10", "0.99", "1.00", "3.33", "10.00", "99.99", "1234.56"}

	for _, pcts := range percentSets {
		shares := make([]ShareInput, len(pcts))
		for i, p := range pcts {
			shares[i] = ShareInput{UserID: string(rune('a' + i)), Value: dec(p)}
		}
		for _, total := range totals {
			splits, err := PercentageSplit(dec(total), shares)
			if err != nil {
				t.Fatalf("PercentageSplit(%s, %v) error = %v", total, pcts, err)
			}
			for _, sp := range splits {
				if sp.Amount.IsNegative() {
					t.Errorf("PercentageSplit(%s, %v): %s got %s", total, pcts, sp.UserID, sp.Amount)
				}
				if !sp.Amount.Equal(sp.Amount.Truncate(2)) {
					t.Errorf("PercentageSplit(%s, %v): %s got sub-cent %s", total, pcts, sp.UserID, sp.Amount)
				}
			}
			assertDec(t, "sum "+total, sumSplits(splits), total)
		}
	}
}
