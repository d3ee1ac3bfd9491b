package models

import "time"

// Trip groups a set of users and their shared transactions.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string `json:"id"`

	// Name is the display name of the trip (e.g., "Iceland").
	Name string `json:"name"`

	// StartDate is set when the trip is created and never changes.
	StartDate time.Time `json:"start_date"`
}

// Membership asserts that a user participates in a trip.
type Membership struct {
	TripID string `json:"trip_id"`
	UserID string `json:"user_id"`
}
