package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations run in order on startup; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS trips (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    start_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS trip_users (
    trip_id TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (trip_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    trip_id TEXT NOT NULL REFERENCES trips(id),
    amount NUMERIC NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    date TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS transaction_users (
    transaction_id TEXT NOT NULL REFERENCES transactions(id),
    user_id TEXT NOT NULL REFERENCES users(id),
    borrow NUMERIC NOT NULL,
    lent NUMERIC NOT NULL,
    PRIMARY KEY (transaction_id, user_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_trip_users_user_id ON trip_users(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_trip_id ON transactions(trip_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_users_user_id ON transaction_users(user_id)`,
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
