package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

// BalancePolicy decides what happens when a transaction's allocations do not
// form a closed split (sum(lent) - sum(borrow) != 0).
type BalancePolicy string

const (
	// PolicyWarn accepts the write, logs a warning and reports the imbalance.
	PolicyWarn BalancePolicy = "warn"
	// PolicyReject refuses the write with a validation error.
	PolicyReject BalancePolicy = "reject"
	// PolicyIgnore accepts the write silently.
	PolicyIgnore BalancePolicy = "ignore"
)

// ParseBalancePolicy parses "warn", "reject" or "ignore" (case-insensitive).
func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch p := BalancePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyWarn, PolicyReject, PolicyIgnore:
		return p, nil
	case "":
		return PolicyWarn, nil
	default:
		return "", fmt.Errorf("unknown balance policy %q", s)
	}
}

// checkAllocations validates the shape of a batch of allocations: user ids
// present, amounts non-negative, one allocation per user.
func checkAllocations(op string, allocs []models.Allocation) error {
	seen := make(map[string]bool, len(allocs))
	for _, a := range allocs {
		if a.UserID == "" {
			return validationError(op, "allocation user_id is required")
		}
		if err := checkAmounts(op, a.Lent, a.Borrow); err != nil {
			return err
		}
		if seen[a.UserID] {
			return conflict(op, "duplicate allocation for user %s", a.UserID)
		}
		seen[a.UserID] = true
	}
	return nil
}

func checkAmounts(op string, lent, borrow decimal.Decimal) error {
	if lent.IsNegative() {
		return validationError(op, "lent cannot be negative")
	}
	if borrow.IsNegative() {
		return validationError(op, "borrow cannot be negative")
	}
	return nil
}

// applyPolicy evaluates the zero-sum invariant for a batch about to be
// written. Under PolicyReject an imbalanced batch is refused here; under
// PolicyWarn the returned reconciliation is reported by reportImbalance once
// the batch has been committed.
func (g *Gateway) applyPolicy(op string, allocs []models.Allocation) (models.Reconciliation, error) {
	details := make([]models.AllocationDetail, len(allocs))
	for i, a := range allocs {
		details[i] = models.AllocationDetail{UserID: a.UserID, Lent: a.Lent, Borrow: a.Borrow}
	}
	rec := models.Reconcile(details)
	if !rec.Balanced && g.policy == PolicyReject {
		return rec, validationError(op, "allocations do not balance: lent %s, borrow %s",
			rec.TotalLent, rec.TotalBorrow)
	}
	return rec, nil
}

func (g *Gateway) reportImbalance(op string, rec models.Reconciliation) {
	if rec.Balanced || g.policy != PolicyWarn {
		return
	}
	g.metrics.ObserveImbalance()
	g.logger.Warn("Imbalanced allocations accepted",
		"op", op,
		"total_lent", rec.TotalLent.String(),
		"total_borrow", rec.TotalBorrow.String(),
		"imbalance", rec.Imbalance.String(),
	)
}
