package gamesession

import (
	"context"
	"database/sql"

	"gameshelf/internal/adapters/storage"
	domain "gameshelf/internal/domain/gamesession"
)

const sessionColumns = `id, creator_id, game_id, custom_game_name, custom_game_description, custom_game_image_path, title, start_date, start_time, end_date, end_time, max_players, description, status`

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a session. GameID is stored as NULL when the
// session describes a player-owned game.
// PRE: s is a valid Session (Validate() returns nil)
// POST: session is persisted
func (s *SQLiteStore) Save(ctx context.Context, sess domain.Session) error {
	var gameID any
	if sess.GameID != "" {
		gameID = sess.GameID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game_session (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   game_id=excluded.game_id, custom_game_name=excluded.custom_game_name,
		   custom_game_description=excluded.custom_game_description,
		   custom_game_image_path=excluded.custom_game_image_path,
		   title=excluded.title, start_date=excluded.start_date, start_time=excluded.start_time,
		   end_date=excluded.end_date, end_time=excluded.end_time,
		   max_players=excluded.max_players, description=excluded.description, status=excluded.status`,
		sess.ID, sess.CreatorID, gameID, sess.CustomGameName, sess.CustomGameDescription,
		sess.CustomGameImagePath, sess.Title, sess.StartDate, sess.StartTime,
		sess.EndDate, sess.EndTime, sess.MaxPlayers, sess.Description, sess.Status)
	return err
}

// GetByID retrieves a session by ID.
// PRE: id is non-empty
// POST: returns the session or error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM game_session WHERE id = ?`, id)
	return scanSession(row)
}

// List returns all sessions ordered by start date descending.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM game_session ORDER BY start_date DESC, start_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListUpcomingByGame returns scheduled sessions for a library game starting on
// or after fromDate, ordered by start date ascending. Lexicographic comparison
// on YYYY-MM-DD strings matches chronological order.
// PRE: gameID is non-empty, fromDate is YYYY-MM-DD
// POST: returns only sessions with status scheduled
func (s *SQLiteStore) ListUpcomingByGame(ctx context.Context, gameID, fromDate string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM game_session
		 WHERE game_id = ? AND status = ? AND start_date >= ?
		 ORDER BY start_date ASC, start_time ASC`,
		gameID, domain.StatusScheduled, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// Delete removes a session by ID.
// PRE: id is non-empty
// POST: session is removed from storage
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM game_session WHERE id = ?`, id)
	return err
}

func scanSession(row *sql.Row) (domain.Session, error) {
	var sess domain.Session
	var gameID sql.NullString
	err := row.Scan(&sess.ID, &sess.CreatorID, &gameID, &sess.CustomGameName,
		&sess.CustomGameDescription, &sess.CustomGameImagePath, &sess.Title,
		&sess.StartDate, &sess.StartTime, &sess.EndDate, &sess.EndTime,
		&sess.MaxPlayers, &sess.Description, &sess.Status)
	if err != nil {
		return domain.Session{}, err
	}
	sess.GameID = gameID.String
	return sess, nil
}

func scanSessions(rows *sql.Rows) ([]domain.Session, error) {
	var sessions []domain.Session
	for rows.Next() {
		var sess domain.Session
		var gameID sql.NullString
		if err := rows.Scan(&sess.ID, &sess.CreatorID, &gameID, &sess.CustomGameName,
			&sess.CustomGameDescription, &sess.CustomGameImagePath, &sess.Title,
			&sess.StartDate, &sess.StartTime, &sess.EndDate, &sess.EndTime,
			&sess.MaxPlayers, &sess.Description, &sess.Status); err != nil {
			return nil, err
		}
		sess.GameID = gameID.String
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
