package loan

import (
	"context"
	"database/sql"
	"time"

	"gameshelf/internal/adapters/storage"
	domain "gameshelf/internal/domain/loan"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

const loanColumns = `id, user_id, game_id, loan_date, estimated_return_date, actual_return_date, status`

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new loan store.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a loan.
// PRE: l is a valid Loan (Validate() returns nil)
// POST: loan is persisted
func (s *SQLiteStore) Save(ctx context.Context, l domain.Loan) error {
	var actual any
	if !l.ActualReturnDate.IsZero() {
		actual = l.ActualReturnDate.Format(timestampLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loan (`+loanColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   estimated_return_date=excluded.estimated_return_date,
		   actual_return_date=excluded.actual_return_date, status=excluded.status`,
		l.ID, l.UserID, l.GameID, l.LoanDate.Format(timestampLayout),
		l.EstimatedReturnDate.Format(timestampLayout), actual, l.Status)
	return err
}

// GetByID retrieves a loan by ID.
// PRE: id is non-empty
// POST: returns the loan or error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Loan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loan WHERE id = ?`, id)
	return scanLoan(row)
}

// List returns all loans ordered by loan date descending.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loan ORDER BY loan_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

// ListByUser returns a user's loans ordered by loan date descending.
// PRE: userID is non-empty
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loan WHERE user_id = ? ORDER BY loan_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

// ListActive returns all loans that have not been returned yet.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loan WHERE status = ? ORDER BY estimated_return_date ASC`,
		domain.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

// ListActiveByGame returns active loans for a game.
// PRE: gameID is non-empty
func (s *SQLiteStore) ListActiveByGame(ctx context.Context, gameID string) ([]domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loan WHERE game_id = ? AND status = ?`,
		gameID, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

func scanLoan(row *sql.Row) (domain.Loan, error) {
	var l domain.Loan
	var loanDate, estimated string
	var actual sql.NullString
	err := row.Scan(&l.ID, &l.UserID, &l.GameID, &loanDate, &estimated, &actual, &l.Status)
	if err != nil {
		return domain.Loan{}, err
	}
	l.LoanDate = parseTimestamp(loanDate)
	l.EstimatedReturnDate = parseTimestamp(estimated)
	if actual.Valid {
		l.ActualReturnDate = parseTimestamp(actual.String)
	}
	return l, nil
}

func scanLoans(rows *sql.Rows) ([]domain.Loan, error) {
	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		var loanDate, estimated string
		var actual sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.GameID, &loanDate, &estimated, &actual, &l.Status); err != nil {
			return nil, err
		}
		l.LoanDate = parseTimestamp(loanDate)
		l.EstimatedReturnDate = parseTimestamp(estimated)
		if actual.Valid {
			l.ActualReturnDate = parseTimestamp(actual.String)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timestampLayout, s)
	return t
}
