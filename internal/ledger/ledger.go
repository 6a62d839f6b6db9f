// Package ledger persists a durable (path, digest, last_seen) record set
// so the watcher can answer "what paths existed under this now-deleted
// directory" without re-walking a directory that no longer exists.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger is a SQLite-backed path ledger.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*Ledger, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS paths (
		path TEXT PRIMARY KEY,
		digest TEXT NOT NULL,
		last_seen TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_paths_path ON paths(path);
	`
	_, err := db.Exec(schema)
	return err
}

// Observe records that path currently has the given content digest.
func (l *Ledger) Observe(ctx context.Context, path, digest string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO paths (path, digest, last_seen) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET digest = excluded.digest, last_seen = excluded.last_seen`,
		path, digest, time.Now())
	return err
}

// Forget removes a single path from the ledger.
func (l *Ledger) Forget(ctx context.Context, path string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM paths WHERE path = ?`, path)
	return err
}

// PathsUnder returns every known path whose value is dir itself or lies
// beneath it, so a directory removal can be expanded into the set of
// file removals it implies.
func (l *Ledger) PathsUnder(ctx context.Context, dir string) ([]string, error) {
	prefix := dir
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT path FROM paths WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		dir, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DigestOf returns the last-known digest for path, or ok=false if unknown.
func (l *Ledger) DigestOf(ctx context.Context, path string) (digest string, ok bool, err error) {
	err = l.db.QueryRowContext(ctx, `SELECT digest FROM paths WHERE path = ?`, path).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return digest, true, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
