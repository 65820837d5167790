package storage

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// migrations is the ordered list of schema migrations. Index 0 is version 1.
// Never modify an existing entry after it has shipped; append a new one.
var migrations = []func(tx *sql.Tx) error{
	migrateV1Baseline,
}

// LatestSchemaVersion returns the schema version the code expects.
func LatestSchemaVersion() int {
	return len(migrations)
}

// SchemaVersion returns the current schema version of the database,
// 0 when no migration has been applied yet.
// PRE: db is a valid database connection
// POST: returns the highest applied version
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check schema_version table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var version int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// MigrateDB brings the database schema up to the latest version. Each pending
// migration runs in its own transaction. For file-backed databases a backup
// copy is written before the first pending migration is applied.
// PRE: db is a valid database connection, dsn is the path it was opened from
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dsn string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if err := backupBeforeMigration(dsn); err != nil {
		return err
	}

	for v := current + 1; v <= LatestSchemaVersion(); v++ {
		if err := applyMigration(db, v); err != nil {
			return fmt.Errorf("migration %d failed: %w", v, err)
		}
		slog.Info("migration_applied", "version", v)
	}
	return nil
}

// applyMigration runs a single migration and records its version, atomically.
func applyMigration(db *sql.DB, version int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := migrations[version-1](tx); err != nil {
		return err
	}
	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return err
	}
	return tx.Commit()
}

// backupBeforeMigration copies a file-backed database aside before migrating.
// In-memory and missing files are skipped.
func backupBeforeMigration(dsn string) error {
	if dsn == "" || dsn == ":memory:" {
		return nil
	}
	if _, err := os.Stat(dsn); err != nil {
		return nil
	}
	src, err := os.Open(dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer src.Close()

	backupPath := dsn + ".pre-migration"
	dst, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	slog.Info("migration_backup", "path", backupPath)
	return nil
}

// migrateV1Baseline creates the initial schema.
func migrateV1Baseline(tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS user (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		registration_date TEXT NOT NULL,
		role TEXT NOT NULL,
		profile_photo_path TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS game (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		min_players INTEGER NOT NULL,
		max_players INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		available INTEGER NOT NULL DEFAULT 1,
		acquisition_date TEXT NOT NULL,
		state TEXT NOT NULL,
		image_path TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS game_session (
		id TEXT PRIMARY KEY,
		creator_id TEXT NOT NULL,
		game_id TEXT,
		custom_game_name TEXT NOT NULL,
		custom_game_description TEXT NOT NULL DEFAULT '',
		custom_game_image_path TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		start_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_date TEXT NOT NULL,
		end_time TEXT NOT NULL DEFAULT '',
		max_players INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		FOREIGN KEY (creator_id) REFERENCES user(id)
	);

	CREATE TABLE IF NOT EXISTS loan (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		game_id TEXT NOT NULL,
		loan_date TEXT NOT NULL,
		estimated_return_date TEXT NOT NULL,
		actual_return_date TEXT,
		status TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES user(id),
		FOREIGN KEY (game_id) REFERENCES game(id)
	);

	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		actor_name TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS form_draft (
		user_id TEXT NOT NULL,
		form TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, form),
		FOREIGN KEY (user_id) REFERENCES user(id)
	);
	`
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("failed to create baseline schema: %w", err)
	}
	return nil
}
