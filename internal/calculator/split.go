package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

var cent = decimal.New(1, -2)

// EvenSplit builds the allocations for a payer covering amount on behalf of
// participants in equal shares.
//
// The payer lends the whole amount. Each participant borrows amount/n rounded
// down to the cent; leftover cents go one each to the first participants so
// that total borrow equals amount exactly. A payer who is not a participant
// gets an allocation with zero borrow.
func EvenSplit(amount decimal.Decimal, payerID string, participants []string) ([]models.Allocation, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if payerID == "" {
		return nil, fmt.Errorf("payer is required")
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, fmt.Errorf("participant id cannot be empty")
		}
		if seen[p] {
			return nil, fmt.Errorf("duplicate participant %s", p)
		}
		seen[p] = true
	}

	n := decimal.NewFromInt(int64(len(participants)))
	share := amount.Div(n).RoundDown(2)
	remainder := amount.Sub(share.Mul(n))

	// Whole cents left over after the even share.
	extraCents := remainder.Div(cent).IntPart()
	// Anything below a cent (amounts with more than two decimals).
	dust := remainder.Sub(cent.Mul(decimal.NewFromInt(extraCents)))

	allocs := make([]models.Allocation, 0, len(participants)+1)
	for i, p := range participants {
		borrow := share
		if int64(i) < extraCents {
			borrow = borrow.Add(cent)
		}
		if i == 0 {
			borrow = borrow.Add(dust)
		}
		a := models.Allocation{UserID: p, Lent: decimal.Zero, Borrow: borrow}
		if p == payerID {
			a.Lent = amount
		}
		allocs = append(allocs, a)
	}

	if !seen[payerID] {
		allocs = append(allocs, models.Allocation{UserID: payerID, Lent: amount, Borrow: decimal.Zero})
	}

	return allocs, nil
}
