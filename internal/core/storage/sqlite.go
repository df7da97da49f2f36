package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cvforge/cvforge/internal/core/document"
	"github.com/cvforge/cvforge/internal/core/observability/log"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteBackend is the optional embedded engine. It reports readiness through
// Ready so the selector can route to it once the database has opened and
// migrated.
type SQLiteBackend struct {
	db     *sql.DB
	ready  atomic.Bool
	logger log.Log
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. The returned backend reports Ready only after both succeed.
func OpenSQLite(ctx context.Context, path string, logger log.Log) (*SQLiteBackend, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	b := &SQLiteBackend{db: db, logger: logger}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	b.ready.Store(true)
	logger.Debug("sqlite backend ready", log.String("path", path))
	return b, nil
}

// Ready reports whether the engine can serve calls.
func (b *SQLiteBackend) Ready() bool {
	return b.ready.Load()
}

// Close releases the database handle; the backend stops reporting ready.
func (b *SQLiteBackend) Close() error {
	b.ready.Store(false)
	return b.db.Close()
}

func (b *SQLiteBackend) List(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (b *SQLiteBackend) Get(ctx context.Context, id string) (*document.Resume, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", id, err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, &CorruptedError{ID: id, Cause: err}
	}
	return doc, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, id string, doc *document.Resume) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode resume: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents(id, data, updated_at) VALUES(?, ?, ?)`,
		id, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save document %q: %w", id, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, id string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

func (b *SQLiteBackend) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check document %q: %w", id, err)
	}
	return true, nil
}
