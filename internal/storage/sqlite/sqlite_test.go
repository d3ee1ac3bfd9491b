package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustUser(t *testing.T, store *SQLiteStore, name, email string) *models.User {
	t.Helper()
	u := models.NewUser(name, email, "hash")
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustUser(t, store, "Alice", "alice@example.com")
	bob := mustUser(t, store, "Bob", "bob@example.com")

	t.Run("users round trip", func(t *testing.T) {
		got, err := store.GetUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Name != "Alice" || got.CredentialHash != "hash" {
			t.Errorf("Unexpected user %+v", got)
		}
		if !got.CreatedAt.Equal(alice.CreatedAt) {
			t.Errorf("CreatedAt mismatch: %v != %v", got.CreatedAt, alice.CreatedAt)
		}

		byEmail, err := store.GetUserByEmail(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != bob.ID {
			t.Errorf("Expected Bob, got %s", byEmail.Name)
		}

		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) != 2 || users[0].Name != "Alice" || users[0].CredentialHash != "" {
			t.Errorf("Unexpected user list %+v", users)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("Other", "alice@example.com", "hash"))
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("missing rows", func(t *testing.T) {
		if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUser: expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetTrip(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetTrip: expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetTransaction(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetTransaction: expected ErrNotFound, got %v", err)
		}
		err := store.UpdateTransaction(ctx, &models.Transaction{ID: "missing", TripID: "x"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateTransaction: expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteTransaction(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteTransaction: expected ErrNotFound, got %v", err)
		}
	})

	trip := &models.Trip{Name: "Iceland"}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	t.Run("trip defaults", func(t *testing.T) {
		if trip.ID == "" {
			t.Error("Expected trip ID to be generated")
		}
		got, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if got.Name != "Iceland" || !got.StartDate.Equal(trip.StartDate) {
			t.Errorf("Unexpected trip %+v", got)
		}
	})

	t.Run("memberships", func(t *testing.T) {
		if err := store.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: alice.ID}); err != nil {
			t.Fatalf("AddMembership failed: %v", err)
		}
		err := store.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: alice.ID})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict for duplicate membership, got %v", err)
		}
		err = store.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: "ghost"})
		if !errors.Is(err, storage.ErrReference) {
			t.Errorf("Expected ErrReference for unknown user, got %v", err)
		}

		ok, err := store.IsMember(ctx, trip.ID, alice.ID)
		if err != nil || !ok {
			t.Errorf("Expected Alice to be a member, got %v, %v", ok, err)
		}
		ok, err = store.IsMember(ctx, trip.ID, bob.ID)
		if err != nil || ok {
			t.Errorf("Expected Bob not to be a member, got %v, %v", ok, err)
		}
	})

	t.Run("transactions and allocations", func(t *testing.T) {
		tx := &models.Transaction{TripID: trip.ID, Amount: decimal.RequireFromString("12.34"), Note: "taxi"}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if tx.ID == "" || tx.Date.IsZero() {
			t.Errorf("Expected ID and date to be set, got %+v", tx)
		}

		got, err := store.GetTransaction(ctx, tx.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if !got.Amount.Equal(tx.Amount) || got.Note != "taxi" {
			t.Errorf("Unexpected transaction %+v", got)
		}

		a := models.Allocation{TransactionID: tx.ID, UserID: alice.ID,
			Lent: decimal.RequireFromString("12.34"), Borrow: decimal.RequireFromString("12.34")}
		if err := store.CreateAllocation(ctx, a); err != nil {
			t.Fatalf("CreateAllocation failed: %v", err)
		}
		if err := store.CreateAllocation(ctx, a); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict for duplicate allocation, got %v", err)
		}

		allocs, err := store.ListAllocations(ctx, tx.ID)
		if err != nil {
			t.Fatalf("ListAllocations failed: %v", err)
		}
		if len(allocs) != 1 || allocs[0].UserName != "Alice" || !allocs[0].Lent.Equal(a.Lent) {
			t.Errorf("Unexpected allocations %+v", allocs)
		}

		n, err := store.DeleteAllocations(ctx, tx.ID)
		if err != nil || n != 1 {
			t.Errorf("Expected 1 deleted, got %d, %v", n, err)
		}
		n, err = store.DeleteAllocations(ctx, tx.ID)
		if err != nil || n != 0 {
			t.Errorf("Expected 0 deleted, got %d, %v", n, err)
		}

		if err := store.DeleteTransaction(ctx, tx.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
	})
}

func TestListTransactionsForTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustUser(t, store, "Alice", "alice@example.com")
	bob := mustUser(t, store, "Bob", "bob@example.com")
	trip := &models.Trip{Name: "Iceland"}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := &models.Transaction{TripID: trip.ID, Amount: decimal.NewFromInt(40), Note: "dinner", Date: base}
	newer := &models.Transaction{TripID: trip.ID, Amount: decimal.NewFromInt(5), Note: "pending", Date: base.Add(time.Hour)}
	for _, tx := range []*models.Transaction{older, newer} {
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}
	for _, a := range []models.Allocation{
		{TransactionID: older.ID, UserID: bob.ID, Lent: decimal.Zero, Borrow: decimal.NewFromInt(20)},
		{TransactionID: older.ID, UserID: alice.ID, Lent: decimal.NewFromInt(40), Borrow: decimal.NewFromInt(20)},
	} {
		if err := store.CreateAllocation(ctx, a); err != nil {
			t.Fatalf("CreateAllocation failed: %v", err)
		}
	}

	details, err := store.ListTransactionsForTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListTransactionsForTrip failed: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(details))
	}
	if details[0].ID != newer.ID {
		t.Errorf("Expected newest transaction first, got %q", details[0].Note)
	}
	if len(details[0].Allocations) != 0 {
		t.Errorf("Expected no allocations on pending transaction, got %+v", details[0].Allocations)
	}
	if len(details[1].Allocations) != 2 {
		t.Fatalf("Expected 2 allocations, got %d", len(details[1].Allocations))
	}
	if details[1].Allocations[0].UserName != "Alice" || details[1].Allocations[1].UserName != "Bob" {
		t.Errorf("Expected allocations ordered by name, got %+v", details[1].Allocations)
	}
	if !details[1].Date.Equal(base) {
		t.Errorf("Expected date %v, got %v", base, details[1].Date)
	}
}

func TestListTripsForUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, store, "Alice", "alice@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"First", "Second"} {
		trip := &models.Trip{Name: name, StartDate: base.AddDate(0, i, 0)}
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if err := store.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: alice.ID}); err != nil {
			t.Fatalf("AddMembership failed: %v", err)
		}
	}

	trips, err := store.ListTripsForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListTripsForUser failed: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("Expected 2 trips, got %d", len(trips))
	}
	if trips[0].Name != "Second" || trips[1].Name != "First" {
		t.Errorf("Expected most recent first, got %s, %s", trips[0].Name, trips[1].Name)
	}
}

func TestInTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, store, "Alice", "alice@example.com")

	t.Run("rolls back on error", func(t *testing.T) {
		trip := &models.Trip{Name: "Doomed"}
		err := store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
			if err := q.CreateTrip(ctx, trip); err != nil {
				return err
			}
			return q.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: "ghost"})
		})
		if !errors.Is(err, storage.ErrReference) {
			t.Fatalf("Expected ErrReference, got %v", err)
		}
		if _, err := store.GetTrip(ctx, trip.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected trip to be rolled back, got %v", err)
		}
	})

	t.Run("commits on success", func(t *testing.T) {
		trip := &models.Trip{Name: "Kept"}
		err := store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
			if err := q.CreateTrip(ctx, trip); err != nil {
				return err
			}
			return q.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: alice.ID})
		})
		if err != nil {
			t.Fatalf("InTx failed: %v", err)
		}
		ok, err := store.IsMember(ctx, trip.ID, alice.ID)
		if err != nil || !ok {
			t.Errorf("Expected committed membership, got %v, %v", ok, err)
		}
	})

	t.Run("runs after caller cancels", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		trip := &models.Trip{Name: "Detached"}
		err := store.InTx(cctx, func(ctx context.Context, q storage.Queries) error {
			cancel()
			if err := q.CreateTrip(ctx, trip); err != nil {
				return err
			}
			return q.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: alice.ID})
		})
		if err != nil {
			t.Fatalf("InTx failed: %v", err)
		}
		if _, err := store.GetTrip(ctx, trip.ID); err != nil {
			t.Errorf("Expected trip to be committed, got %v", err)
		}
	})

	t.Run("fails when already cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := store.InTx(cctx, func(ctx context.Context, q storage.Queries) error {
			called = true
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if called {
			t.Error("Expected fn not to run")
		}
	})
}

func TestTransactionReferencesTrip(t *testing.T) {
	store := newTestStore(t)
	err := store.CreateTransaction(context.Background(), &models.Transaction{TripID: "missing", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, storage.ErrReference) {
		t.Errorf("Expected ErrReference, got %v", err)
	}
}
