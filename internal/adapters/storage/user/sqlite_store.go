package user

import (
	"context"
	"database/sql"
	"time"

	"gameshelf/internal/adapters/storage"
	domain "gameshelf/internal/domain/user"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

const userColumns = `id, username, email, password_hash, first_name, last_name, registration_date, role, profile_photo_path`

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new user store.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a user. Email is stored normalized.
// PRE: u is a valid User (Validate() returns nil)
// POST: user is persisted
func (s *SQLiteStore) Save(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   username=excluded.username, email=excluded.email, password_hash=excluded.password_hash,
		   first_name=excluded.first_name, last_name=excluded.last_name,
		   role=excluded.role, profile_photo_path=excluded.profile_photo_path`,
		u.ID, u.Username, domain.NormalizeEmail(u.Email), u.PasswordHash,
		u.FirstName, u.LastName, u.RegistrationDate.Format(timestampLayout),
		u.Role, u.ProfilePhotoPath)
	return err
}

// GetByID retrieves a user by ID.
// PRE: id is non-empty
// POST: returns the user or error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM user WHERE id = ?`, id)
	return scanUser(row)
}

// GetByUsername retrieves a user by exact username.
// PRE: username is non-empty
// POST: returns the user or error if not found
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM user WHERE username = ?`, username)
	return scanUser(row)
}

// List returns all users ordered by username.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM user ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var registered string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
			&u.LastName, &registered, &u.Role, &u.ProfilePhotoPath); err != nil {
			return nil, err
		}
		u.RegistrationDate = parseTimestamp(registered)
		users = append(users, u)
	}
	return users, rows.Err()
}

// UsernameExists reports whether a username is taken by a user other than excludeID.
// PRE: username is non-empty
func (s *SQLiteStore) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user WHERE username = ? AND id != ?`, username, excludeID).Scan(&count)
	return count > 0, err
}

// EmailExists reports whether an email is taken by a user other than excludeID.
// PRE: email is non-empty
func (s *SQLiteStore) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user WHERE email = ? AND id != ?`,
		domain.NormalizeEmail(email), excludeID).Scan(&count)
	return count > 0, err
}

// Delete removes a user by ID.
// PRE: id is non-empty
// POST: user is removed from storage
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, id)
	return err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var registered string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
		&u.LastName, &registered, &u.Role, &u.ProfilePhotoPath)
	if err != nil {
		return domain.User{}, err
	}
	u.RegistrationDate = parseTimestamp(registered)
	return u, nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timestampLayout, s)
	return t
}
