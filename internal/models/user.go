package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// CredentialHash is the bcrypt hash of the user's password.
	// It is owned by the identity store and is never serialized.
	CredentialHash string `json:"-"`

	// CreatedAt is when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a User with a fresh ID and creation time.
func NewUser(name, email, credentialHash string) *User {
	return &User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		CredentialHash: credentialHash,
		CreatedAt:      time.Now().UTC(),
	}
}

// Member is the public view of a user inside a trip.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
