package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// CreateUser inserts a new user into the database.
func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := q.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.CredentialHash,
		toUnix(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}

	return nil
}

// GetUser retrieves a user by their ID.
func (q *queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return q.getUserWhere(ctx, "id = ?", userID)
}

// GetUserByEmail retrieves a user by their email address.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.getUserWhere(ctx, "email = ?", email)
}

func (q *queries) getUserWhere(ctx context.Context, cond string, arg string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE ` + cond

	user := &models.User{}
	var createdAt int64
	err := q.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CredentialHash,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = fromUnix(createdAt)

	return user, nil
}

// ListUsers returns every user ordered by name. Credential hashes are not read.
func (q *queries) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, email, created_at FROM users ORDER BY name, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var createdAt int64
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.CreatedAt = fromUnix(createdAt)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
