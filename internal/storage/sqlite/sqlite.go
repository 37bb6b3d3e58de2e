// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Every collection shares one table. A row is (collection, doc_key, body)
// where body is the record encoded as a JSON object, so records stay
// schema-less while SQLite still enforces one row per key.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aanand-mishra/chapter-api/internal/config"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Storage.Path, creates the documents
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	path := cfg.Storage.Path

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Each :memory: connection is its own database; pin the pool to one.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent, safe to run on every startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			doc_key    TEXT NOT NULL,
			body       TEXT NOT NULL,
			PRIMARY KEY (collection, doc_key)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// FetchAll scans every row of one collection.
func (s *SQLite) FetchAll(ctx context.Context, c storage.Collection) ([]types.Record, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT body FROM documents WHERE collection = ?",
	)
	if err != nil {
		return nil, fmt.Errorf("FetchAll: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, c.Name)
	if err != nil {
		return nil, fmt.Errorf("FetchAll: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty collection encodes as [] rather than null.
	records := make([]types.Record, 0)

	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("FetchAll: scan row: %w", err)
		}
		rec, err := decode(body)
		if err != nil {
			return nil, fmt.Errorf("FetchAll: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FetchAll: rows iteration: %w", err)
	}

	return records, nil
}

// GetItem fetches exactly one record matched by key.
func (s *SQLite) GetItem(ctx context.Context, c storage.Collection, key string) (types.Record, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND doc_key = ? LIMIT 1",
	)
	if err != nil {
		return nil, fmt.Errorf("GetItem: prepare: %w", err)
	}
	defer stmt.Close()

	var body string
	err = stmt.QueryRowContext(ctx, c.Name, key).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("GetItem: %s/%s: %w", c.Name, key, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("GetItem: scan: %w", err)
	}

	rec, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("GetItem: %w", err)
	}
	return rec, nil
}

// PutItem inserts the record, or replaces the whole body when the key is
// already present.
func (s *SQLite) PutItem(ctx context.Context, c storage.Collection, rec types.Record) error {
	key, err := c.KeyOf(rec)
	if err != nil {
		return fmt.Errorf("PutItem: %s: %w", c.Name, err)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("PutItem: encode: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO documents (collection, doc_key, body) VALUES (?, ?, ?)
		ON CONFLICT (collection, doc_key) DO UPDATE SET body = excluded.body
	`)
	if err != nil {
		return fmt.Errorf("PutItem: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, c.Name, key, string(body)); err != nil {
		return fmt.Errorf("PutItem: exec: %w", err)
	}

	return nil
}

// DeleteItem removes a record by key. Zero affected rows is fine.
func (s *SQLite) DeleteItem(ctx context.Context, c storage.Collection, key string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM documents WHERE collection = ? AND doc_key = ?")
	if err != nil {
		return fmt.Errorf("DeleteItem: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, c.Name, key); err != nil {
		return fmt.Errorf("DeleteItem: exec: %w", err)
	}

	return nil
}

// SetAttribute rewrites one attribute inside the stored JSON body with
// json_set, in a single UPDATE statement.
func (s *SQLite) SetAttribute(ctx context.Context, c storage.Collection, key, attr string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("SetAttribute: encode: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx, `
		UPDATE documents SET body = json_set(body, ?, json(?))
		WHERE collection = ? AND doc_key = ?
	`)
	if err != nil {
		return fmt.Errorf("SetAttribute: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, jsonPath(attr), string(raw), c.Name, key)
	if err != nil {
		return fmt.Errorf("SetAttribute: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetAttribute: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("SetAttribute: %s/%s: %w", c.Name, key, storage.ErrNotFound)
	}

	return nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// jsonPath quotes attr as a single object member: $."attr".
func jsonPath(attr string) string {
	return `$."` + strings.ReplaceAll(attr, `"`, `\"`) + `"`
}

// decode keeps numbers as json.Number so integers such as millisecond
// timestamps come back exactly as they were stored.
func decode(body string) (types.Record, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var rec types.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return rec, nil
}
