package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// memUsers is an in-memory UserStorage.
type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	// raced makes CreateUser report a conflict, as when a concurrent signup wins.
	raced bool
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok || m.raced {
		return storage.ErrConflict
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	a := NewPasswordAuthenticator(users).WithCost(bcrypt.MinCost)

	user, err := a.Register(ctx, "  Alice@Example.com ", " Alice ", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("register normalizes and hashes", func(t *testing.T) {
		if user.Email != "alice@example.com" || user.Name != "Alice" {
			t.Errorf("Unexpected user %+v", user)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CredentialHash == "correct-horse" {
			t.Error("Expected password to be hashed")
		}
	})

	t.Run("authenticate", func(t *testing.T) {
		got, err := a.Authenticate(ctx, "ALICE@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("Expected %s, got %s", user.ID, got.ID)
		}
	})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	t.Run("register errors", func(t *testing.T) {
		if _, err := a.Register(ctx, "alice@example.com", "Alice", "another-password"); !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
		if _, err := a.Register(ctx, "bob@example.com", "Bob", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Expected ErrWeakPassword, got %v", err)
		}
		if _, err := a.Register(ctx, "", "Bob", "long-enough"); !errors.Is(err, ErrMissingFields) {
			t.Errorf("Expected ErrMissingFields, got %v", err)
		}
		if _, err := a.Register(ctx, "bob@example.com", "  ", "long-enough"); !errors.Is(err, ErrMissingFields) {
			t.Errorf("Expected ErrMissingFields, got %v", err)
		}
	})

	t.Run("lost signup race", func(t *testing.T) {
		raced := newMemUsers()
		raced.raced = true
		_, err := NewPasswordAuthenticator(raced).WithCost(bcrypt.MinCost).Register(ctx, "carol@example.com", "Carol", "long-enough")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})
}
