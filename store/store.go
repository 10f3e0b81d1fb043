// Package store - Persistenz der Evaluations-Ergebnisse
//
// store.go - Kern-Datenbank-Funktionen
// Enthält: Store, Open, Close, init, Schema

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren

	"github.com/seqcache/seqcache/api"
)

// currentSchemaVersion definiert die aktuelle Datenbank-Schema-Version.
// Wird bei Schema-Änderungen erhöht, die Migrationen erfordern.
const currentSchemaVersion = 1

// Store umhüllt die SQLite-Verbindung. SQLite verwaltet sein eigenes
// Locking für konkurrierende Zugriffe (WAL-Modus, serialisierte
// Schreiber), daher braucht es keine Application-Level-Locks.
type Store struct {
	conn *sql.DB
}

// Open öffnet (oder erstellt) die Ergebnis-Datenbank unter dbPath
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verbindung testen
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{conn: conn}

	// Schema initialisieren
	if err := s.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return s, nil
}

// Close schließt die Datenbankverbindung
func (s *Store) Close() error {
	_, _ = s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return s.conn.Close()
}

// init initialisiert das Datenbankschema
func (s *Store) init() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL DEFAULT %d
	);

	INSERT OR IGNORE INTO meta (id) VALUES (1);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		theta REAL NOT NULL,
		alpha REAL NOT NULL,
		perplexity REAL NOT NULL,
		tokens INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`, currentSchemaVersion)

	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// AddRun legt einen abgeschlossenen Lauf ab und gibt ihn mit
// vergebener Id und Zeitstempel zurück
func (s *Store) AddRun(mode string, theta, alpha, perplexity float64, tokens int) (api.RunResult, error) {
	run := api.RunResult{
		ID:         uuid.NewString(),
		Mode:       mode,
		Theta:      theta,
		Alpha:      alpha,
		Perplexity: perplexity,
		Tokens:     tokens,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.conn.Exec(
		"INSERT INTO runs (id, mode, theta, alpha, perplexity, tokens, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Mode, run.Theta, run.Alpha, run.Perplexity, run.Tokens, run.CreatedAt,
	)
	if err != nil {
		return api.RunResult{}, fmt.Errorf("insert run: %w", err)
	}

	return run, nil
}

// Runs gibt die jüngsten Läufe zurück, neueste zuerst.
// limit <= 0 bedeutet alle.
func (s *Store) Runs(limit int) ([]api.RunResult, error) {
	query := "SELECT id, mode, theta, alpha, perplexity, tokens, created_at FROM runs ORDER BY created_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []api.RunResult
	for rows.Next() {
		var run api.RunResult
		if err := rows.Scan(&run.ID, &run.Mode, &run.Theta, &run.Alpha, &run.Perplexity, &run.Tokens, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SchemaVersion gibt die Schema-Version der geöffneten Datenbank zurück
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.conn.QueryRow("SELECT schema_version FROM meta").Scan(&version); err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}
