package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/calculator"
)

// Balances is the read-only settlement view of a trip.
type Balances struct {
	TripID    string                     `json:"trip_id"`
	Members   []calculator.MemberBalance `json:"members"`
	Transfers []calculator.Transfer      `json:"transfers"`
	// Balanced is false when imbalanced transactions leave the nets summing
	// to something other than zero; Transfers then cannot settle everyone.
	Balanced bool `json:"balanced"`
}

// TripBalances computes each member's net position across the trip and the
// transfers that would settle it. Nothing is persisted.
func (g *Gateway) TripBalances(ctx context.Context, tripID string) (_ *Balances, err error) {
	const op = "TripBalances"
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

	members := calculator.NetBalances(details)
	total := decimal.Zero
	for _, m := range members {
		total = total.Add(m.Net)
	}
	transfers := calculator.SimplifyDebts(members)
	if transfers == nil {
		transfers = []calculator.Transfer{}
	}

	return &Balances{
		TripID:    tripID,
		Members:   members,
		Transfers: transfers,
		Balanced:  total.IsZero(),
	}, nil
}
