package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// Money crosses the wire as text so NUMERIC values keep their exact scale.

func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Email, user.CredentialHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	return nil
}

func (q *queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return q.getUserWhere(ctx, "id = $1", userID)
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.getUserWhere(ctx, "email = $1", email)
}

func (q *queries) getUserWhere(ctx context.Context, cond, arg string) (*models.User, error) {
	user := &models.User{}
	err := q.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE `+cond, arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.CredentialHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (q *queries) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, email, created_at FROM users ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (q *queries) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.StartDate.IsZero() {
		trip.StartDate = time.Now().UTC()
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO trips (id, name, start_date) VALUES ($1, $2, $3)`,
		trip.ID, trip.Name, trip.StartDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", classify(err))
	}
	return nil
}

func (q *queries) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	err := q.db.QueryRow(ctx,
		`SELECT id, name, start_date FROM trips WHERE id = $1`, tripID,
	).Scan(&trip.ID, &trip.Name, &trip.StartDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

func (q *queries) AddMembership(ctx context.Context, m models.Membership) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO trip_users (trip_id, user_id) VALUES ($1, $2)`, m.TripID, m.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", classify(err))
	}
	return nil
}

func (q *queries) IsMember(ctx context.Context, tripID, userID string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trip_users WHERE trip_id = $1 AND user_id = $2)`,
		tripID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (q *queries) ListTripsForUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	rows, err := q.db.Query(ctx, `
SELECT DISTINCT t.id, t.name, t.start_date
FROM trips t
JOIN trip_users tu ON t.id = tu.trip_id
WHERE tu.user_id = $1
ORDER BY t.start_date DESC, t.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips for user: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.StartDate); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func (q *queries) ListMembers(ctx context.Context, tripID string) ([]models.Member, error) {
	rows, err := q.db.Query(ctx, `
SELECT u.id, u.name
FROM users u
JOIN trip_users tu ON u.id = tu.user_id
WHERE tu.trip_id = $1
ORDER BY u.name, u.id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (q *queries) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO transactions (id, trip_id, amount, note, date) VALUES ($1, $2, $3::numeric, $4, $5)`,
		tx.ID, tx.TripID, tx.Amount.String(), tx.Note, tx.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", classify(err))
	}
	return nil
}

func (q *queries) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var amount string
	err := q.db.QueryRow(ctx,
		`SELECT id, trip_id, amount::text, note, date FROM transactions WHERE id = $1`, transactionID,
	).Scan(&tx.ID, &tx.TripID, &amount, &tx.Note, &tx.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	return tx, nil
}

func (q *queries) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE transactions SET trip_id = $1, amount = $2::numeric, note = $3 WHERE id = $4`,
		tx.TripID, tx.Amount.String(), tx.Note, tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, storage.ErrNotFound)
	}
	return nil
}

func (q *queries) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	return nil
}

func (q *queries) CreateAllocation(ctx context.Context, a models.Allocation) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO transaction_users (transaction_id, user_id, borrow, lent) VALUES ($1, $2, $3::numeric, $4::numeric)`,
		a.TransactionID, a.UserID, a.Borrow.String(), a.Lent.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", classify(err))
	}
	return nil
}

func (q *queries) DeleteAllocations(ctx context.Context, transactionID string) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM transaction_users WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete allocations: %w", classify(err))
	}
	return tag.RowsAffected(), nil
}

func (q *queries) ListAllocations(ctx context.Context, transactionID string) ([]models.AllocationDetail, error) {
	rows, err := q.db.Query(ctx, `
SELECT tu.user_id, u.name, tu.lent::text, tu.borrow::text
FROM transaction_users tu
JOIN users u ON u.id = tu.user_id
WHERE tu.transaction_id = $1
ORDER BY u.name, u.id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	allocs := []models.AllocationDetail{}
	for rows.Next() {
		var a models.AllocationDetail
		var lent, borrow string
		if err := rows.Scan(&a.UserID, &a.UserName, &lent, &borrow); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		if a.Lent, a.Borrow, err = parsePair(lent, borrow); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// ListTransactionsForTrip folds the allocation join back into one detail per
// transaction, keeping the date-descending order of the query.
func (q *queries) ListTransactionsForTrip(ctx context.Context, tripID string) ([]*models.TransactionDetail, error) {
	rows, err := q.db.Query(ctx, `
SELECT t.id, t.trip_id, t.amount::text, t.note, t.date,
       tu.user_id, u.name, tu.lent::text, tu.borrow::text
FROM transactions t
LEFT JOIN transaction_users tu ON tu.transaction_id = t.id
LEFT JOIN users u ON u.id = tu.user_id
WHERE t.trip_id = $1
ORDER BY t.date DESC, t.id, u.name, tu.user_id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var details []*models.TransactionDetail
	byID := make(map[string]*models.TransactionDetail)

	for rows.Next() {
		var (
			tx                         models.Transaction
			amount                     string
			userID, name, lent, borrow *string
		)
		if err := rows.Scan(&tx.ID, &tx.TripID, &amount, &tx.Note, &tx.Date,
			&userID, &name, &lent, &borrow); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		detail, ok := byID[tx.ID]
		if !ok {
			if tx.Amount, err = decimal.NewFromString(amount); err != nil {
				return nil, fmt.Errorf("failed to parse amount: %w", err)
			}
			detail = &models.TransactionDetail{Transaction: tx, Allocations: []models.AllocationDetail{}}
			byID[tx.ID] = detail
			details = append(details, detail)
		}
		if userID == nil {
			continue
		}

		a := models.AllocationDetail{UserID: *userID}
		if name != nil {
			a.UserName = *name
		}
		if a.Lent, a.Borrow, err = parsePair(deref(lent), deref(borrow)); err != nil {
			return nil, err
		}
		detail.Allocations = append(detail.Allocations, a)
	}
	return details, rows.Err()
}

func parsePair(lent, borrow string) (decimal.Decimal, decimal.Decimal, error) {
	l, err := decimal.NewFromString(lent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse lent: %w", err)
	}
	b, err := decimal.NewFromString(borrow)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse borrow: %w", err)
	}
	return l, b, nil
}

func deref(s *string) string {
	if s == nil {
		return "0"
	}
	return *s
}
