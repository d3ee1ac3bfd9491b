// Package events defines the ledger events published after a unit of work
// commits, and the Publisher abstraction that delivers them.
package events

import (
	"context"
	"time"
)

// Type names a ledger event.
type Type string

const (
	TripCreated         Type = "trip.created"
	MembershipAdded     Type = "membership.added"
	TransactionRecorded Type = "transaction.recorded"
	TransactionUpdated  Type = "transaction.updated"
	TransactionDeleted  Type = "transaction.deleted"
	AllocationAdded     Type = "allocation.added"
	AllocationsReplaced Type = "allocations.replaced"
	AllocationsDeleted  Type = "allocations.deleted"
)

// Event describes a committed change to the ledger.
type Event struct {
	Type          Type      `json:"type"`
	TripID        string    `json:"trip_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
