// Package calculator holds pure functions over stored allocations: even
// splits, per-member net balances and settlement transfers. Nothing here
// touches storage.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

// MemberBalance represents the balance information for one trip member.
type MemberBalance struct {
	UserID      string          `json:"user_id"`
	UserName    string          `json:"name"`
	TotalLent   decimal.Decimal `json:"total_lent"`
	TotalBorrow decimal.Decimal `json:"total_borrow"`
	// Net is TotalLent - TotalBorrow. Positive = is owed money, negative = owes money.
	Net decimal.Decimal `json:"net"`
}

// Transfer is one payment that moves a debtor towards zero.
type Transfer struct {
	FromUserID string          `json:"from_user_id"` // Person who owes
	ToUserID   string          `json:"to_user_id"`   // Person who is owed
	Amount     decimal.Decimal `json:"amount"`
}

// NetBalances aggregates allocations across transactions into one balance per
// user, ordered by name then id.
func NetBalances(details []*models.TransactionDetail) []MemberBalance {
	balances := make(map[string]*MemberBalance)

	for _, d := range details {
		for _, a := range d.Allocations {
			bal, ok := balances[a.UserID]
			if !ok {
				bal = &MemberBalance{
					UserID:      a.UserID,
					UserName:    a.UserName,
					TotalLent:   decimal.Zero,
					TotalBorrow: decimal.Zero,
				}
				balances[a.UserID] = bal
			}
			bal.TotalLent = bal.TotalLent.Add(a.Lent)
			bal.TotalBorrow = bal.TotalBorrow.Add(a.Borrow)
		}
	}

	out := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.Net = bal.TotalLent.Sub(bal.TotalBorrow)
		out = append(out, *bal)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserName != out[j].UserName {
			return out[i].UserName < out[j].UserName
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// SimplifyDebts proposes transfers that bring every balance to zero.
//
// Greedy matching: largest debtor pays largest creditor the smaller of the
// two amounts, repeat. This yields at most n-1 transfers. When the balances
// do not sum to zero (imbalanced transactions), whatever is left over after
// matching stays unsettled.
func SimplifyDebts(balances []MemberBalance) []Transfer {
	type party struct {
		id     string
		amount decimal.Decimal
	}

	var debtors, creditors []party
	for _, b := range balances {
		switch b.Net.Sign() {
		case -1:
			debtors = append(debtors, party{b.UserID, b.Net.Neg()})
		case 1:
			creditors = append(creditors, party{b.UserID, b.Net})
		}
	}

	byAmountDesc := func(ps []party) {
		sort.Slice(ps, func(i, j int) bool {
			if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
				return c > 0
			}
			return ps[i].id < ps[j].id
		})
	}
	byAmountDesc(debtors)
	byAmountDesc(creditors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		transfers = append(transfers, Transfer{
			FromUserID: debtors[i].id,
			ToUserID:   creditors[j].id,
			Amount:     amount,
		})

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if debtors[i].amount.IsZero() {
			i++
		}
		if creditors[j].amount.IsZero() {
			j++
		}
	}

	return transfers
}
