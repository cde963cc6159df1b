// Package sqliterecorder implements recorder.Recorder against an
// append-only SQLite table, grounded on the teacher's
// internal/infra/sqlite.Store (database/sql + modernc.org/sqlite, WAL
// journal mode, busy_timeout pragma) and on
// marmos91-dittofs/pkg/metadata/store/postgres's prepare-then-exec
// shape for a single relational write path.
package sqliterecorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/terminalhub/hub/internal/hub/recorder"
)

// Recorder appends one row per operation to operation_log.
type Recorder struct {
	db *sql.DB
}

// Open creates (or reuses) the sqlite database at path and ensures the
// operation_log schema exists.
func Open(path string) (*Recorder, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("open recorder db: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS operation_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	submodule_name TEXT NOT NULL,
	detail TEXT NOT NULL,
	recorded_at TEXT NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize operation_log schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Recorder) Record(ctx context.Context, e recorder.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operation_log (kind, submodule_name, detail, recorded_at) VALUES (?, ?, ?, ?)`,
		string(e.Kind),
		e.SubmoduleName,
		e.Detail,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert operation_log row: %w", err)
	}
	return nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}
