package loan

import (
	"context"

	domain "gameshelf/internal/domain/loan"
)

// Store persists loans.
type Store interface {
	// Save inserts or updates a loan.
	// PRE: l is valid
	// POST: loan is persisted
	Save(ctx context.Context, l domain.Loan) error

	// GetByID retrieves a loan by ID.
	// PRE: id is non-empty
	// POST: returns the loan or error if not found
	GetByID(ctx context.Context, id string) (domain.Loan, error)

	// List returns all loans ordered by loan date descending.
	List(ctx context.Context) ([]domain.Loan, error)

	// ListByUser returns a user's loans ordered by loan date descending.
	ListByUser(ctx context.Context, userID string) ([]domain.Loan, error)

	// ListActive returns all loans that have not been returned yet.
	ListActive(ctx context.Context) ([]domain.Loan, error)

	// ListActiveByGame returns active loans for a game. At most one should
	// exist; the slice form keeps the check cheap without a uniqueness index.
	ListActiveByGame(ctx context.Context, gameID string) ([]domain.Loan, error)
}
