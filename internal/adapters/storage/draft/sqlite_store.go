package draft

import (
	"context"
	"time"

	"gameshelf/internal/adapters/storage"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new draft store.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a user's draft for a form.
// PRE: userID and form are non-empty
// POST: returns the draft or error if not found
func (s *SQLiteStore) Get(ctx context.Context, userID, form string) (Draft, error) {
	var d Draft
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, form, payload, updated_at FROM form_draft WHERE user_id = ? AND form = ?`,
		userID, form).Scan(&d.UserID, &d.Form, &d.Payload, &updated)
	if err != nil {
		return Draft{}, err
	}
	d.UpdatedAt, _ = time.Parse(timestampLayout, updated)
	return d, nil
}

// Put inserts or replaces a draft.
// PRE: d.UserID and d.Form are non-empty
// POST: the draft is persisted, replacing any previous one
func (s *SQLiteStore) Put(ctx context.Context, d Draft) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO form_draft (user_id, form, payload, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, form) DO UPDATE SET
		   payload=excluded.payload, updated_at=excluded.updated_at`,
		d.UserID, d.Form, d.Payload, d.UpdatedAt.Format(timestampLayout))
	return err
}

// Delete removes a user's draft for a form.
// PRE: userID and form are non-empty
// POST: no draft remains for the pair
func (s *SQLiteStore) Delete(ctx context.Context, userID, form string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM form_draft WHERE user_id = ? AND form = ?`, userID, form)
	return err
}
