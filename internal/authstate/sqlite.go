package authstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite keeps the pending-auth slot on disk so it survives the login
// redirect round-trip across server restarts.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "data/session.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	// slot is pinned to 0: the store holds at most one pending flow.
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pending_auth (
		slot INTEGER PRIMARY KEY CHECK (slot = 0),
		app_id TEXT NOT NULL,
		secret_id TEXT NOT NULL,
		redirect_uri TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("migrate pending_auth: %w", err)
	}
	return nil
}

func (s *SQLite) Put(ctx context.Context, p Pending) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_auth (slot, app_id, secret_id, redirect_uri) VALUES (0, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   app_id = excluded.app_id,
		   secret_id = excluded.secret_id,
		   redirect_uri = excluded.redirect_uri,
		   created_at = datetime('now')`,
		p.AppID, p.SecretID, p.RedirectURI)
	if err != nil {
		return fmt.Errorf("put pending auth: %w", err)
	}
	return nil
}

func (s *SQLite) Take(ctx context.Context) (Pending, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Pending{}, false, fmt.Errorf("take pending auth: %w", err)
	}
	defer tx.Rollback()

	var p Pending
	row := tx.QueryRowContext(ctx, `SELECT app_id, secret_id, redirect_uri FROM pending_auth WHERE slot = 0`)
	if err := row.Scan(&p.AppID, &p.SecretID, &p.RedirectURI); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pending{}, false, nil
		}
		return Pending{}, false, fmt.Errorf("take pending auth: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_auth WHERE slot = 0`); err != nil {
		return Pending{}, false, fmt.Errorf("clear pending auth: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Pending{}, false, fmt.Errorf("take pending auth: %w", err)
	}
	return p, true, nil
}

func (s *SQLite) Close() error { return s.db.Close() }
