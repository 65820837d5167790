package game

import (
	"context"

	domain "gameshelf/internal/domain/game"
)

// Store persists catalog games.
type Store interface {
	// Save inserts or updates a game.
	// PRE: g is valid
	// POST: game is persisted
	Save(ctx context.Context, g domain.Game) error

	// GetByID retrieves a game by ID.
	// PRE: id is non-empty
	// POST: returns the game or error if not found
	GetByID(ctx context.Context, id string) (domain.Game, error)

	// List returns all games ordered by name.
	List(ctx context.Context) ([]domain.Game, error)

	// ListAvailable returns games currently available for loan, ordered by name.
	ListAvailable(ctx context.Context) ([]domain.Game, error)

	// Delete removes a game by ID.
	Delete(ctx context.Context, id string) error
}
