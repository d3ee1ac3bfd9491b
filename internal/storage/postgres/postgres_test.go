package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// newTestStore connects to TEST_DATABASE_URL, skipping when it is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := New(context.Background(), Config{DatabaseURL: url, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newUser(t *testing.T, store *Store, name string) *models.User {
	t.Helper()
	u := models.NewUser(name, uuid.NewString()+"@example.com", "hash")
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := newUser(t, store, "Alice")
	bob := newUser(t, store, "Bob")

	trip := &models.Trip{Name: "Iceland"}
	require.NoError(t, store.CreateTrip(ctx, trip))
	require.NoError(t, store.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: alice.ID}))
	require.NoError(t, store.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: bob.ID}))

	err := store.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: bob.ID})
	require.ErrorIs(t, err, storage.ErrConflict)

	tx := &models.Transaction{TripID: trip.ID, Amount: decimal.RequireFromString("12.50"), Note: "taxi"}
	require.NoError(t, store.CreateTransaction(ctx, tx))
	require.NoError(t, store.CreateAllocation(ctx, models.Allocation{
		TransactionID: tx.ID, UserID: alice.ID, Lent: decimal.RequireFromString("12.50"), Borrow: decimal.RequireFromString("6.25"),
	}))
	require.NoError(t, store.CreateAllocation(ctx, models.Allocation{
		TransactionID: tx.ID, UserID: bob.ID, Lent: decimal.Zero, Borrow: decimal.RequireFromString("6.25"),
	}))

	details, err := store.ListTransactionsForTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Len(t, details[0].Allocations, 2)
	require.Equal(t, "Alice", details[0].Allocations[0].UserName)
	require.True(t, details[0].Amount.Equal(tx.Amount))

	trips, err := store.ListTripsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, trips, 1)

	n, err := store.DeleteAllocations(ctx, tx.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.NoError(t, store.DeleteTransaction(ctx, tx.ID))
	require.ErrorIs(t, store.DeleteTransaction(ctx, tx.ID), storage.ErrNotFound)

	_, err = store.GetUser(ctx, uuid.NewString())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trip := &models.Trip{Name: "Doomed"}
	err := store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		if err := q.CreateTrip(ctx, trip); err != nil {
			return err
		}
		return q.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: uuid.NewString()})
	})
	require.True(t, errors.Is(err, storage.ErrReference), "got %v", err)

	_, err = store.GetTrip(ctx, trip.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
