package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

func detail(allocs ...models.AllocationDetail) *models.TransactionDetail {
	return &models.TransactionDetail{Allocations: allocs}
}

func TestNetBalances(t *testing.T) {
	details := []*models.TransactionDetail{
		detail(
			models.AllocationDetail{UserID: "a", UserName: "Alice", Lent: d("60"), Borrow: d("20")},
			models.AllocationDetail{UserID: "b", UserName: "Bob", Lent: d("0"), Borrow: d("20")},
			models.AllocationDetail{UserID: "c", UserName: "Carol", Lent: d("0"), Borrow: d("20")},
		),
		detail(
			models.AllocationDetail{UserID: "b", UserName: "Bob", Lent: d("15"), Borrow: d("7.5")},
			models.AllocationDetail{UserID: "c", UserName: "Carol", Lent: d("0"), Borrow: d("7.5")},
		),
		detail(),
	}

	balances := NetBalances(details)
	if len(balances) != 3 {
		t.Fatalf("len(balances) = %d, want 3", len(balances))
	}

	want := map[string]string{"Alice": "40", "Bob": "-12.5", "Carol": "-27.5"}
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		b := balances[i]
		if b.UserName != name {
			t.Errorf("balances[%d] = %s, want %s", i, b.UserName, name)
			continue
		}
		if !b.Net.Equal(d(want[name])) {
			t.Errorf("%s net = %s, want %s", name, b.Net, want[name])
		}
	}
	if !balances[1].TotalLent.Equal(d("15")) || !balances[1].TotalBorrow.Equal(d("27.5")) {
		t.Errorf("Bob totals = %s/%s, want 15/27.5", balances[1].TotalLent, balances[1].TotalBorrow)
	}

	if got := NetBalances(nil); got == nil || len(got) != 0 {
		t.Errorf("NetBalances(nil) = %#v, want empty slice", got)
	}
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name          string
		nets          map[string]string
		wantTransfers int
	}{
		{"already settled", map[string]string{"a": "0", "b": "0"}, 0},
		{"one debtor", map[string]string{"a": "30", "b": "-30"}, 1},
		{"one creditor many debtors", map[string]string{"a": "40", "b": "-12.5", "c": "-27.5"}, 2},
		{"two and two", map[string]string{"a": "50", "b": "10", "c": "-35", "d": "-25"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var balances []MemberBalance
			for id, net := range tt.nets {
				balances = append(balances, MemberBalance{UserID: id, Net: d(net)})
			}

			transfers := SimplifyDebts(balances)
			if len(transfers) != tt.wantTransfers {
				t.Errorf("len(transfers) = %d, want %d: %+v", len(transfers), tt.wantTransfers, transfers)
			}

			remaining := make(map[string]decimal.Decimal)
			for id, net := range tt.nets {
				remaining[id] = d(net)
			}
			for _, tr := range transfers {
				if !tr.Amount.IsPositive() {
					t.Errorf("transfer %+v has non-positive amount", tr)
				}
				remaining[tr.FromUserID] = remaining[tr.FromUserID].Add(tr.Amount)
				remaining[tr.ToUserID] = remaining[tr.ToUserID].Sub(tr.Amount)
			}
			for id, v := range remaining {
				if !v.IsZero() {
					t.Errorf("%s left with %s after transfers", id, v)
				}
			}
		})
	}
}

func TestSimplifyDebtsImbalanced(t *testing.T) {
	// Lent exceeds borrow by 10 overall; the surplus stays with the creditor.
	transfers := SimplifyDebts([]MemberBalance{
		{UserID: "a", Net: d("30")},
		{UserID: "b", Net: d("-20")},
	})
	if len(transfers) != 1 || !transfers[0].Amount.Equal(d("20")) {
		t.Errorf("transfers = %+v, want one transfer of 20", transfers)
	}
}
