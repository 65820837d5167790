package game

import (
	"context"
	"database/sql"
	"time"

	"gameshelf/internal/adapters/storage"
	domain "gameshelf/internal/domain/game"
)

const dateLayout = "2006-01-02"

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new game store.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a game.
// PRE: g is a valid Game (Validate() returns nil)
// POST: game is persisted
func (s *SQLiteStore) Save(ctx context.Context, g domain.Game) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game (id, name, description, category, min_players, max_players, duration_minutes, available, acquisition_date, state, image_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description, category=excluded.category,
		   min_players=excluded.min_players, max_players=excluded.max_players,
		   duration_minutes=excluded.duration_minutes, available=excluded.available,
		   acquisition_date=excluded.acquisition_date, state=excluded.state, image_path=excluded.image_path`,
		g.ID, g.Name, g.Description, g.Category, g.MinPlayers, g.MaxPlayers,
		g.DurationMinutes, boolToInt(g.Available), g.AcquisitionDate.Format(dateLayout),
		g.State, g.ImagePath)
	return err
}

// GetByID retrieves a game by ID.
// PRE: id is non-empty
// POST: returns the game or error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, category, min_players, max_players, duration_minutes, available, acquisition_date, state, image_path
		 FROM game WHERE id = ?`, id)
	return scanGame(row)
}

// List returns all games ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, category, min_players, max_players, duration_minutes, available, acquisition_date, state, image_path
		 FROM game ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

// ListAvailable returns games currently available for loan, ordered by name.
func (s *SQLiteStore) ListAvailable(ctx context.Context) ([]domain.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, category, min_players, max_players, duration_minutes, available, acquisition_date, state, image_path
		 FROM game WHERE available = 1 ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

// Delete removes a game by ID.
// PRE: id is non-empty
// POST: game is removed from storage
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM game WHERE id = ?`, id)
	return err
}

func scanGame(row *sql.Row) (domain.Game, error) {
	var g domain.Game
	var available int
	var acquired string
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.MinPlayers, &g.MaxPlayers,
		&g.DurationMinutes, &available, &acquired, &g.State, &g.ImagePath)
	if err != nil {
		return domain.Game{}, err
	}
	g.Available = available != 0
	g.AcquisitionDate = parseDate(acquired)
	return g, nil
}

func scanGames(rows *sql.Rows) ([]domain.Game, error) {
	var games []domain.Game
	for rows.Next() {
		var g domain.Game
		var available int
		var acquired string
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.MinPlayers, &g.MaxPlayers,
			&g.DurationMinutes, &available, &acquired, &g.State, &g.ImagePath); err != nil {
			return nil, err
		}
		g.Available = available != 0
		g.AcquisitionDate = parseDate(acquired)
		games = append(games, g)
	}
	return games, rows.Err()
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
