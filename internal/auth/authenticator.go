// Package auth owns user credentials: bcrypt password hashing for signup and
// login, and the signed JWTs that identify a caller afterwards.
package auth

import (
	"context"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the transport code.
type Authenticator interface {
	// Register creates a new user account with the given email, name and credential.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, email, name, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
