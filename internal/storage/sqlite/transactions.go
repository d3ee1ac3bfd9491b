package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// CreateTransaction persists a new transaction.
func (q *queries) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO transactions (id, trip_id, amount, note, date) VALUES (?, ?, ?, ?, ?)",
		tx.ID, tx.TripID, tx.Amount.String(), tx.Note, toUnix(tx.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", classify(err))
	}

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (q *queries) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var date int64

	err := q.db.QueryRowContext(ctx,
		"SELECT id, trip_id, amount, note, date FROM transactions WHERE id = ?",
		transactionID,
	).Scan(&tx.ID, &tx.TripID, &tx.Amount, &tx.Note, &date)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	tx.Date = fromUnix(date)

	return tx, nil
}

// UpdateTransaction replaces the trip, amount and note of a transaction.
func (q *queries) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE transactions SET trip_id = ?, amount = ?, note = ? WHERE id = ?",
		tx.TripID, tx.Amount.String(), tx.Note, tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", classify(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteTransaction removes a transaction row. Allocations must already be gone.
func (q *queries) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", classify(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}

	return nil
}

// CreateAllocation inserts one participant's stake in a transaction.
func (q *queries) CreateAllocation(ctx context.Context, a models.Allocation) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO transaction_users (transaction_id, user_id, borrow, lent) VALUES (?, ?, ?, ?)",
		a.TransactionID, a.UserID, a.Borrow.String(), a.Lent.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", classify(err))
	}
	return nil
}

// DeleteAllocations removes every allocation of a transaction.
func (q *queries) DeleteAllocations(ctx context.Context, transactionID string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		"DELETE FROM transaction_users WHERE transaction_id = ?",
		transactionID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete allocations: %w", classify(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// ListAllocations returns the allocations of one transaction with user names.
func (q *queries) ListAllocations(ctx context.Context, transactionID string) ([]models.AllocationDetail, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT tu.user_id, u.name, tu.lent, tu.borrow
		FROM transaction_users tu
		JOIN users u ON u.id = tu.user_id
		WHERE tu.transaction_id = ?
		ORDER BY u.name, u.id`,
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	allocs := []models.AllocationDetail{}
	for rows.Next() {
		var a models.AllocationDetail
		if err := rows.Scan(&a.UserID, &a.UserName, &a.Lent, &a.Borrow); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocs = append(allocs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}

	return allocs, nil
}

// ListTransactionsForTrip retrieves every transaction of a trip with its
// allocations. The join yields one row per allocation; rows are folded back
// into one TransactionDetail per transaction.
func (q *queries) ListTransactionsForTrip(ctx context.Context, tripID string) ([]*models.TransactionDetail, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.trip_id, t.amount, t.note, t.date,
		       tu.user_id, u.name, tu.lent, tu.borrow
		FROM transactions t
		LEFT JOIN transaction_users tu ON tu.transaction_id = t.id
		LEFT JOIN users u ON u.id = tu.user_id
		WHERE t.trip_id = ?
		ORDER BY t.date DESC, t.id, u.name, tu.user_id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var details []*models.TransactionDetail
	byID := make(map[string]*models.TransactionDetail)

	for rows.Next() {
		var (
			tx           models.Transaction
			date         int64
			userID, name sql.NullString
			lent, borrow decimal.NullDecimal
		)
		if err := rows.Scan(&tx.ID, &tx.TripID, &tx.Amount, &tx.Note, &date,
			&userID, &name, &lent, &borrow); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Date = fromUnix(date)

		detail, ok := byID[tx.ID]
		if !ok {
			detail = &models.TransactionDetail{
				Transaction: tx,
				Allocations: []models.AllocationDetail{},
			}
			byID[tx.ID] = detail
			details = append(details, detail)
		}

		// LEFT JOIN: a transaction without allocations yields one NULL row.
		if !userID.Valid {
			continue
		}
		detail.Allocations = append(detail.Allocations, models.AllocationDetail{
			UserID:   userID.String,
			UserName: name.String,
			Lent:     lent.Decimal,
			Borrow:   borrow.Decimal,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return details, nil
}
