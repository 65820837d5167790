package gamesession

import (
	"context"

	domain "gameshelf/internal/domain/gamesession"
)

// Store persists game sessions.
type Store interface {
	// Save inserts or updates a session.
	// PRE: s is valid
	// POST: session is persisted
	Save(ctx context.Context, s domain.Session) error

	// GetByID retrieves a session by ID.
	// PRE: id is non-empty
	// POST: returns the session or error if not found
	GetByID(ctx context.Context, id string) (domain.Session, error)

	// List returns all sessions ordered by start date descending.
	List(ctx context.Context) ([]domain.Session, error)

	// ListUpcomingByGame returns scheduled sessions for a library game starting
	// on or after fromDate (YYYY-MM-DD), ordered by start date ascending.
	ListUpcomingByGame(ctx context.Context, gameID, fromDate string) ([]domain.Session, error)

	// Delete removes a session by ID.
	Delete(ctx context.Context, id string) error
}
