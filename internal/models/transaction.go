package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single monetary event scoped to one trip.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// TripID is the trip this transaction belongs to.
	TripID string `json:"trip_id"`

	// Amount is signed; negative amounts are structurally permitted.
	Amount decimal.Decimal `json:"amount"`

	// Note is a free-form description (e.g., "hotel").
	Note string `json:"note"`

	// Date is when the transaction was recorded.
	Date time.Time `json:"date"`
}

// Allocation is one participant's stake in one transaction.
// At most one allocation exists per (TransactionID, UserID).
type Allocation struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Lent          decimal.Decimal `json:"lent"`
	Borrow        decimal.Decimal `json:"borrow"`
}

// AllocationDetail is an allocation joined with the participating user's name.
type AllocationDetail struct {
	UserID   string          `json:"id"`
	UserName string          `json:"name"`
	Lent     decimal.Decimal `json:"lent"`
	Borrow   decimal.Decimal `json:"borrow"`
}

// TransactionDetail is the read-side aggregate returned per transaction:
// the transaction row plus every allocation made against it.
type TransactionDetail struct {
	Transaction
	Allocations    []AllocationDetail `json:"users"`
	Reconciliation Reconciliation     `json:"reconciliation"`
}

// Reconciliation summarizes whether a transaction's allocations form a
// closed split (total lent equals total borrowed).
type Reconciliation struct {
	TotalLent   decimal.Decimal `json:"total_lent"`
	TotalBorrow decimal.Decimal `json:"total_borrow"`
	// Imbalance is TotalLent - TotalBorrow.
	Imbalance decimal.Decimal `json:"imbalance"`
	Balanced  bool            `json:"balanced"`
}

// Reconcile computes the reconciliation of a set of allocations.
func Reconcile(allocs []AllocationDetail) Reconciliation {
	lent, borrow := decimal.Zero, decimal.Zero
	for _, a := range allocs {
		lent = lent.Add(a.Lent)
		borrow = borrow.Add(a.Borrow)
	}
	imbalance := lent.Sub(borrow)
	return Reconciliation{
		TotalLent:   lent,
		TotalBorrow: borrow,
		Imbalance:   imbalance,
		Balanced:    imbalance.IsZero(),
	}
}
