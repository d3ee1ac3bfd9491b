// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

// Errors returned by every Store implementation. Backends translate their
// driver-specific failures into these so callers never inspect driver errors.
var (
	// ErrNotFound is returned when a lookup, update or delete matches no row.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned on unique/primary key violations.
	ErrConflict = errors.New("storage: conflict")
	// ErrReference is returned on foreign key violations.
	ErrReference = errors.New("storage: referenced row does not exist")
)

// Queries are the ledger operations a Store can run either directly or inside
// a unit of work (see Store.InTx).
type Queries interface {
	// CreateUser inserts a new user. Duplicate email returns ErrConflict.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUser retrieves a user by ID, including the credential hash.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// GetUserByEmail retrieves a user by email, including the credential hash.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers returns all users ordered by name, without credential hashes.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateTrip persists a trip. The trip.ID field is populated by the store
	// when empty.
	CreateTrip(ctx context.Context, trip *models.Trip) error
	// GetTrip retrieves a trip by ID.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	// AddMembership links a user to a trip. An existing pairing returns ErrConflict.
	AddMembership(ctx context.Context, m models.Membership) error
	// IsMember reports whether the user participates in the trip.
	IsMember(ctx context.Context, tripID, userID string) (bool, error)
	// ListTripsForUser returns the distinct trips a user belongs to, most recent first.
	ListTripsForUser(ctx context.Context, userID string) ([]*models.Trip, error)
	// ListMembers returns the members of a trip ordered by name.
	ListMembers(ctx context.Context, tripID string) ([]models.Member, error)

	// CreateTransaction persists a transaction. The tx.ID field is populated
	// by the store when empty.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	// GetTransaction retrieves a transaction by ID.
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)
	// UpdateTransaction replaces trip, amount and note. Unknown IDs return ErrNotFound.
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	// DeleteTransaction removes the transaction row only. Unknown IDs return ErrNotFound.
	DeleteTransaction(ctx context.Context, transactionID string) error
	// CreateAllocation inserts an allocation. A duplicate (transaction, user)
	// returns ErrConflict.
	CreateAllocation(ctx context.Context, a models.Allocation) error
	// DeleteAllocations removes every allocation of a transaction and returns
	// how many were removed.
	DeleteAllocations(ctx context.Context, transactionID string) (int64, error)
	// ListAllocations returns the allocations of one transaction joined with user names.
	ListAllocations(ctx context.Context, transactionID string) ([]models.AllocationDetail, error)
	// ListTransactionsForTrip returns each transaction of the trip exactly once,
	// most recent first, with its allocations nested.
	ListTransactionsForTrip(ctx context.Context, tripID string) ([]*models.TransactionDetail, error)
}

// Store defines the interface for ledger storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the gateway.
type Store interface {
	Queries

	// InTx runs fn inside a single unit of work. The unit commits when fn
	// returns nil and rolls back otherwise; the rollback has completed by the
	// time InTx returns. A ctx that is already done fails before anything is
	// written. Once the unit has started, fn receives a context detached from
	// ctx and bounded by the store's transaction timeout, so cancelling ctx
	// does not abort it. fn must run its queries on that context.
	InTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error

	// Close releases any resources held by the store.
	Close() error
}
