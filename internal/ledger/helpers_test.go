package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

const testGroup = "g1"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func members(ids ...string) []models.Membership {
	rows := make([]models.Membership, len(ids))
	for i, id := range ids {
		rows[i] = models.Membership{GroupID: testGroup, UserID: id, Role: models.RoleMember}
	}
	return rows
}

func expense(id, payer, amount string, shares ...string) models.Expense {
	e := models.Expense{ID: id, GroupID: testGroup, PaidByID: payer, Amount: dec(amount), Description: id}
	for i := 0; i+1 < len(shares); i += 2 {
		e.Splits = append(e.Splits, models.ExpenseSplit{ExpenseID: id, UserID: shares[i], Amount: dec(shares[i+1])})
	}
	return e
}

func settlement(id, from, to, amount string) models.Settlement {
	return models.Settlement{ID: id, GroupID: testGroup, FromUserID: from, ToUserID: to, Amount: dec(amount)}
}

func balanceOf(t *testing.T, balances []NetBalance, id string) decimal.Decimal {
	t.Helper()
	for _, b := range balances {
		if b.MemberID == id {
			return b.Amount
		}
	}
	t.Fatalf("no balance for %s", id)
	return decimal.Zero
}

func assertDec(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}
