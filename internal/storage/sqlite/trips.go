package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// CreateTrip persists a new trip to the database.
func (q *queries) CreateTrip(ctx context.Context, trip *models.Trip) error {
	// Generate ID if not set
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.StartDate.IsZero() {
		trip.StartDate = time.Now().UTC()
	}

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO trips (id, name, start_date) VALUES (?, ?, ?)",
		trip.ID, trip.Name, toUnix(trip.StartDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", classify(err))
	}

	return nil
}

// GetTrip retrieves a trip by ID.
func (q *queries) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	var startDate int64

	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, start_date FROM trips WHERE id = ?",
		tripID,
	).Scan(&trip.ID, &trip.Name, &startDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	trip.StartDate = fromUnix(startDate)

	return trip, nil
}

// AddMembership links a user to a trip.
func (q *queries) AddMembership(ctx context.Context, m models.Membership) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO trip_users (trip_id, user_id) VALUES (?, ?)",
		m.TripID, m.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", classify(err))
	}
	return nil
}

// IsMember reports whether userID participates in tripID.
func (q *queries) IsMember(ctx context.Context, tripID, userID string) (bool, error) {
	var exists int
	err := q.db.QueryRowContext(ctx,
		"SELECT 1 FROM trip_users WHERE trip_id = ? AND user_id = ?",
		tripID, userID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// ListTripsForUser retrieves the trips a user belongs to, most recent first.
func (q *queries) ListTripsForUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT DISTINCT t.id, t.name, t.start_date
		FROM trips t
		JOIN trip_users tu ON t.id = tu.trip_id
		WHERE tu.user_id = ?
		ORDER BY t.start_date DESC, t.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips for user: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		var startDate int64
		if err := rows.Scan(&trip.ID, &trip.Name, &startDate); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trip.StartDate = fromUnix(startDate)
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	return trips, nil
}

// ListMembers retrieves the id and name of every member of a trip.
func (q *queries) ListMembers(ctx context.Context, tripID string) ([]models.Member, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT u.id, u.name
		FROM users u
		JOIN trip_users tu ON u.id = tu.user_id
		WHERE tu.trip_id = ?
		ORDER BY u.name, u.id`,
		tripID,
	)
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
