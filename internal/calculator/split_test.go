package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sumBorrow(allocs []models.Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Borrow)
	}
	return total
}

func TestEvenSplit(t *testing.T) {
	tests := []struct {
		name         string
		amount       decimal.Decimal
		payer        string
		participants []string
		wantErr      bool
		validateFunc func(t *testing.T, allocs []models.Allocation)
	}{
		{
			name:         "payer among participants",
			amount:       d("30"),
			payer:        "alice",
			participants: []string{"alice", "bob", "carol"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				if len(allocs) != 3 {
					t.Fatalf("len(allocs) = %d, want 3", len(allocs))
				}
				for _, a := range allocs {
					if !a.Borrow.Equal(d("10")) {
						t.Errorf("%s borrow = %s, want 10", a.UserID, a.Borrow)
					}
				}
				if !allocs[0].Lent.Equal(d("30")) {
					t.Errorf("alice lent = %s, want 30", allocs[0].Lent)
				}
				if !allocs[1].Lent.IsZero() || !allocs[2].Lent.IsZero() {
					t.Error("non-payers should lend nothing")
				}
			},
		},
		{
			name:         "leftover cents go to the first participants",
			amount:       d("10"),
			payer:        "bob",
			participants: []string{"alice", "bob", "carol"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				// 10 / 3 = 3.33 each with one cent left over
				want := []string{"3.34", "3.33", "3.33"}
				for i, a := range allocs {
					if !a.Borrow.Equal(d(want[i])) {
						t.Errorf("%s borrow = %s, want %s", a.UserID, a.Borrow, want[i])
					}
				}
				if !sumBorrow(allocs).Equal(d("10")) {
					t.Errorf("total borrow = %s, want 10", sumBorrow(allocs))
				}
			},
		},
		{
			name:         "payer not a participant",
			amount:       d("20"),
			payer:        "carol",
			participants: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				if len(allocs) != 3 {
					t.Fatalf("len(allocs) = %d, want 3", len(allocs))
				}
				payer := allocs[2]
				if payer.UserID != "carol" || !payer.Lent.Equal(d("20")) || !payer.Borrow.IsZero() {
					t.Errorf("payer allocation = %+v", payer)
				}
			},
		},
		{
			name:         "sub-cent amounts stay exact",
			amount:       d("10.005"),
			payer:        "alice",
			participants: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				if !sumBorrow(allocs).Equal(d("10.005")) {
					t.Errorf("total borrow = %s, want 10.005", sumBorrow(allocs))
				}
			},
		},
		{
			name:         "zero amount should error",
			amount:       decimal.Zero,
			payer:        "alice",
			participants: []string{"alice"},
			wantErr:      true,
		},
		{
			name:         "negative amount should error",
			amount:       d("-5"),
			payer:        "alice",
			participants: []string{"alice"},
			wantErr:      true,
		},
		{
			name:         "no payer should error",
			amount:       d("5"),
			participants: []string{"alice"},
			wantErr:      true,
		},
		{
			name:         "no participants should error",
			amount:       d("5"),
			payer:        "alice",
			participants: []string{},
			wantErr:      true,
		},
		{
			name:         "duplicate participant should error",
			amount:       d("5"),
			payer:        "alice",
			participants: []string{"alice", "alice"},
			wantErr:      true,
		},
		{
			name:         "empty participant should error",
			amount:       d("5"),
			payer:        "alice",
			participants: []string{"alice", ""},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocs, err := EvenSplit(tt.amount, tt.payer, tt.participants)
			if (err != nil) != tt.wantErr {
				t.Errorf("EvenSplit() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, allocs)
			}
		})
	}
}
