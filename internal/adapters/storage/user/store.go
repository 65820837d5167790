package user

import (
	"context"

	domain "gameshelf/internal/domain/user"
)

// Store persists users.
type Store interface {
	// Save inserts or updates a user.
	// PRE: u is valid
	// POST: user is persisted
	Save(ctx context.Context, u domain.User) error

	// GetByID retrieves a user by ID.
	// PRE: id is non-empty
	// POST: returns the user or error if not found
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByUsername retrieves a user by exact username.
	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// List returns all users ordered by username.
	List(ctx context.Context) ([]domain.User, error)

	// UsernameExists reports whether a username is taken by a user other
	// than excludeID. Pass an empty excludeID for registration checks.
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)

	// EmailExists reports whether an email is taken by a user other than
	// excludeID. The comparison uses the normalized (lowercased) form.
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)

	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error
}
