package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database using the configured URL.
// Supported formats:
//   - sqlite3:./data.db
//   - sqlite:./data.db
//   - file:./data.db
func Open(databaseURL string) (*sql.DB, error) {
	dsn := normalizeDSN(databaseURL)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite works best with a single writer connection for WAL
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxIdleConns(1)

	if err := configurePragmas(db); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

func normalizeDSN(databaseURL string) string {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		dsn = "./data.db"
	}

	if idx := strings.Index(dsn, ":"); idx != -1 {
		prefix := dsn[:idx]
		if prefix == "sqlite3" || prefix == "sqlite" {
			dsn = dsn[idx+1:]
		}
	}

	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "./data.db"
	}

	if !strings.HasPrefix(dsn, "file:") {
		if !strings.Contains(dsn, ":/") && !strings.HasPrefix(dsn, "./") && !strings.HasPrefix(dsn, "/") {
			dsn = "./" + dsn
		}
		dsn = "file:" + filepath.Clean(dsn)
	}

	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}

	return dsn
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("configure sqlite pragma (%s): %w", pragma, err)
		}
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			image_prompt TEXT NOT NULL,
			video_prompt TEXT NOT NULL,
			audio_prompt TEXT NOT NULL,
			avatar TEXT,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS instagram_accounts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			instagram_business_id TEXT NOT NULL UNIQUE,
			access_token TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS youtube_accounts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			access_token TEXT,
			refresh_token TEXT NOT NULL,
			expiry_date TIMESTAMP NULL,
			client_id TEXT,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS publication_crons (
			id TEXT PRIMARY KEY,
			preset_id TEXT NOT NULL REFERENCES presets(id),
			title TEXT NOT NULL,
			description TEXT,
			interval TEXT,
			source_url TEXT,
			video_path TEXT,
			media_type TEXT NOT NULL,
			ai_model TEXT NOT NULL DEFAULT 'chatgpt',
			scheduled_at TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'generating',
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cron_executions (
			id TEXT PRIMARY KEY,
			cron_id TEXT NOT NULL REFERENCES publication_crons(id) ON DELETE CASCADE,
			platform TEXT NOT NULL,
			account_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			external_id TEXT,
			error_message TEXT,
			executed_at TIMESTAMP NULL,
			position INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_crons_status_scheduled ON publication_crons(status, scheduled_at);`,
		`CREATE INDEX IF NOT EXISTS idx_executions_cron ON cron_executions(cron_id, position);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
