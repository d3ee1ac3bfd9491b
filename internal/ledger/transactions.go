package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/calculator"
	"github.com/prathap24reddy/billsplit-complete/internal/events"
	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// EvenSplit asks the gateway to derive allocations: PayerID lends the whole
// amount and every participant borrows an equal share.
type EvenSplit struct {
	PayerID        string   `json:"payer_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

// RecordInput is a transaction together with its allocations.
// Exactly one of Allocations and Split should be set.
type RecordInput struct {
	TripID      string
	Amount      decimal.Decimal
	Note        string
	Allocations []models.Allocation
	Split       *EvenSplit
}

// RecordTransaction writes a transaction without allocations.
// Prefer RecordTransactionWithAllocations, which is atomic.
func (g *Gateway) RecordTransaction(ctx context.Context, tripID string, amount decimal.Decimal, note string) (_ *models.Transaction, err error) {
	const op = "RecordTransaction"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "trip_id", tripID); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{TripID: tripID, Amount: amount, Note: note, Date: g.clock()}
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		if _, err := getTrip(ctx, q, op, tripID); err != nil {
			return err
		}
		if err := g.requireMember(ctx, q, op, tripID, actorID); err != nil {
			return err
		}
		return q.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Transaction recorded", "transaction_id", tx.ID, "trip_id", tripID)
	g.publish(ctx, events.Event{Type: events.TransactionRecorded, TripID: tripID, TransactionID: tx.ID})
	return tx, nil
}

// AddAllocation records one user's stake in an existing transaction.
func (g *Gateway) AddAllocation(ctx context.Context, transactionID, userID string, lent, borrow decimal.Decimal) (_ *models.Allocation, err error) {
	const op = "AddAllocation"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "transaction_id", transactionID, "user_id", userID); err != nil {
		return nil, err
	}
	if err := checkAmounts(op, lent, borrow); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	a := models.Allocation{TransactionID: transactionID, UserID: userID, Lent: lent, Borrow: borrow}
	var tripID string
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		tx, err := getTransaction(ctx, q, op, transactionID)
		if err != nil {
			return err
		}
		tripID = tx.TripID
		if err := g.requireMember(ctx, q, op, tripID, actorID); err != nil {
			return err
		}
		return writeAllocations(ctx, q, op, tripID, []models.Allocation{a})
	})
	if err != nil {
		return nil, err
	}

	g.publish(ctx, events.Event{Type: events.AllocationAdded, TripID: tripID, TransactionID: transactionID, UserID: userID})
	return &a, nil
}

// RecordTransactionWithAllocations writes a transaction and all of its
// allocations in one unit of work. Either everything is stored or nothing is.
func (g *Gateway) RecordTransactionWithAllocations(ctx context.Context, in RecordInput) (_ *models.TransactionDetail, err error) {
	const op = "RecordTransactionWithAllocations"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "trip_id", in.TripID); err != nil {
		return nil, err
	}
	if len(in.Allocations) > 0 && in.Split != nil {
		return nil, validationError(op, "set either allocations or split, not both")
	}
	allocs := append([]models.Allocation(nil), in.Allocations...)
	if len(allocs) == 0 && in.Split != nil {
		allocs, err = calculator.EvenSplit(in.Amount, in.Split.PayerID, in.Split.ParticipantIDs)
		if err != nil {
			return nil, validationError(op, "%v", err)
		}
	}
	if len(allocs) == 0 {
		return nil, validationError(op, "at least one allocation is required")
	}
	if err := checkAllocations(op, allocs); err != nil {
		return nil, err
	}
	rec, err := g.applyPolicy(op, allocs)
	if err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{TripID: in.TripID, Amount: in.Amount, Note: in.Note, Date: g.clock()}
	var detail *models.TransactionDetail
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		if _, err := getTrip(ctx, q, op, in.TripID); err != nil {
			return err
		}
		if err := g.requireMember(ctx, q, op, in.TripID, actorID); err != nil {
			return err
		}
		if err := q.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		for i := range allocs {
			allocs[i].TransactionID = tx.ID
		}
		if err := writeAllocations(ctx, q, op, in.TripID, allocs); err != nil {
			return err
		}
		d, err := loadDetail(ctx, q, tx)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Transaction recorded",
		"transaction_id", tx.ID,
		"trip_id", in.TripID,
		"allocations", len(allocs),
	)
	g.reportImbalance(op, rec)
	g.publish(ctx, events.Event{Type: events.TransactionRecorded, TripID: in.TripID, TransactionID: tx.ID})
	return detail, nil
}

// GetTransactionsForTrip returns every transaction of tripID once, most recent
// first, each with its allocations and reconciliation.
func (g *Gateway) GetTransactionsForTrip(ctx context.Context, tripID string) (_ []*models.TransactionDetail, err error) {
	const op = "GetTransactionsForTrip"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "trip_id", tripID); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if _, err := getTrip(ctx, g.store, op, tripID); err != nil {
		return nil, err
	}
	if err := g.requireMember(ctx, g.store, op, tripID, actorID); err != nil {
		return nil, err
	}
	details, err := g.store.ListTransactionsForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []*models.TransactionDetail{}
	}
	for _, d := range details {
		d.Reconciliation = models.Reconcile(d.Allocations)
	}
	return details, nil
}

// UpdateTransaction replaces the trip, amount and note of a transaction.
// The date is kept. Allocations are not touched.
func (g *Gateway) UpdateTransaction(ctx context.Context, transactionID, tripID string, amount decimal.Decimal, note string) (_ *models.Transaction, err error) {
	const op = "UpdateTransaction"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "transaction_id", transactionID, "trip_id", tripID); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	var updated *models.Transaction
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		current, err := getTransaction(ctx, q, op, transactionID)
		if err != nil {
			return err
		}
		if err := g.requireMember(ctx, q, op, current.TripID, actorID); err != nil {
			return err
		}
		if tripID != current.TripID {
			if _, err := getTrip(ctx, q, op, tripID); err != nil {
				return err
			}
			if err := g.requireMember(ctx, q, op, tripID, actorID); err != nil {
				return err
			}
		}
		updated = &models.Transaction{
			ID:     transactionID,
			TripID: tripID,
			Amount: amount,
			Note:   note,
			Date:   current.Date,
		}
		return q.UpdateTransaction(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Transaction updated", "transaction_id", transactionID, "trip_id", tripID)
	g.publish(ctx, events.Event{Type: events.TransactionUpdated, TripID: tripID, TransactionID: transactionID})
	return updated, nil
}

// DeleteTransaction removes a transaction and its allocations in one unit of
// work. An unknown id is reported as not found and nothing changes.
func (g *Gateway) DeleteTransaction(ctx context.Context, transactionID string) (err error) {
	const op = "DeleteTransaction"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "transaction_id", transactionID); err != nil {
		return err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return err
	}

	var tripID string
	var removed int64
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		tx, err := getTransaction(ctx, q, op, transactionID)
		if err != nil {
			return err
		}
		tripID = tx.TripID
		if err := g.requireMember(ctx, q, op, tripID, actorID); err != nil {
			return err
		}
		if removed, err = q.DeleteAllocations(ctx, transactionID); err != nil {
			return err
		}
		err = q.DeleteTransaction(ctx, transactionID)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(op, "transaction", transactionID)
		}
		return err
	})
	if err != nil {
		return err
	}

	g.logger.Info("Transaction deleted", "transaction_id", transactionID, "allocations", removed)
	g.publish(ctx, events.Event{Type: events.TransactionDeleted, TripID: tripID, TransactionID: transactionID})
	return nil
}

// DeleteAllocationsForTransaction removes every allocation of a transaction
// and returns how many were removed. Repeating it returns 0.
func (g *Gateway) DeleteAllocationsForTransaction(ctx context.Context, transactionID string) (_ int64, err error) {
	const op = "DeleteAllocationsForTransaction"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "transaction_id", transactionID); err != nil {
		return 0, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return 0, err
	}

	var tripID string
	var removed int64
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		tx, err := getTransaction(ctx, q, op, transactionID)
		if err != nil {
			return err
		}
		tripID = tx.TripID
		if err := g.requireMember(ctx, q, op, tripID, actorID); err != nil {
			return err
		}
		removed, err = q.DeleteAllocations(ctx, transactionID)
		return err
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		g.publish(ctx, events.Event{Type: events.AllocationsDeleted, TripID: tripID, TransactionID: transactionID})
	}
	return removed, nil
}

// ReplaceAllocations swaps the allocations of a transaction for a new set in
// one unit of work.
func (g *Gateway) ReplaceAllocations(ctx context.Context, transactionID string, allocs []models.Allocation) (_ *models.TransactionDetail, err error) {
	const op = "ReplaceAllocations"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "transaction_id", transactionID); err != nil {
		return nil, err
	}
	if len(allocs) == 0 {
		return nil, validationError(op, "at least one allocation is required")
	}
	if err := checkAllocations(op, allocs); err != nil {
		return nil, err
	}
	rec, err := g.applyPolicy(op, allocs)
	if err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	allocs = append([]models.Allocation(nil), allocs...)
	for i := range allocs {
		allocs[i].TransactionID = transactionID
	}

	var detail *models.TransactionDetail
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		tx, err := getTransaction(ctx, q, op, transactionID)
		if err != nil {
			return err
		}
		if err := g.requireMember(ctx, q, op, tx.TripID, actorID); err != nil {
			return err
		}
		if _, err := q.DeleteAllocations(ctx, transactionID); err != nil {
			return err
		}
		if err := writeAllocations(ctx, q, op, tx.TripID, allocs); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, q, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	g.reportImbalance(op, rec)
	g.publish(ctx, events.Event{Type: events.AllocationsReplaced, TripID: detail.TripID, TransactionID: transactionID})
	return detail, nil
}

// writeAllocations checks that every user exists and belongs to tripID, then
// inserts the allocations.
func writeAllocations(ctx context.Context, q storage.Queries, op, tripID string, allocs []models.Allocation) error {
	for _, a := range allocs {
		if _, err := getUser(ctx, q, op, a.UserID); err != nil {
			return err
		}
		ok, err := q.IsMember(ctx, tripID, a.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return validationError(op, "user %s is not a member of the trip", a.UserID)
		}
		err = q.CreateAllocation(ctx, a)
		if errors.Is(err, storage.ErrConflict) {
			return conflict(op, "user %s already has an allocation on this transaction", a.UserID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func loadDetail(ctx context.Context, q storage.Queries, tx *models.Transaction) (*models.TransactionDetail, error) {
	allocs, err := q.ListAllocations(ctx, tx.ID)
	if err != nil {
		return nil, err
	}
	if allocs == nil {
		allocs = []models.AllocationDetail{}
	}
	return &models.TransactionDetail{
		Transaction:    *tx,
		Allocations:    allocs,
		Reconciliation: models.Reconcile(allocs),
	}, nil
}
