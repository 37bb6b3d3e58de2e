// Package postgres implements storage.Storage on PostgreSQL through a pgx
// connection pool. Records live in a single documents table as jsonb.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/chapter-api/internal/config"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT  NOT NULL,
	doc_key    TEXT  NOT NULL,
	body       JSONB NOT NULL,
	PRIMARY KEY (collection, doc_key)
)`

// Postgres is the pgx-backed store.
type Postgres struct {
	pool *pgxpool.Pool
}

// New opens a pool for cfg.Storage.PostgresDSN, pings it and makes sure the
// documents table exists.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	timeout := cfg.Storage.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Pool exposes the pool, mainly for test cleanup.
func (p *Postgres) Pool() *pgxpool.Pool { return p.pool }

func (p *Postgres) FetchAll(ctx context.Context, c storage.Collection) ([]types.Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT body::text FROM documents WHERE collection = $1`, c.Name)
	if err != nil {
		return nil, fmt.Errorf("FetchAll: query: %w", err)
	}
	defer rows.Close()

	records := make([]types.Record, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("FetchAll: scan: %w", err)
		}
		rec, err := decode(body)
		if err != nil {
			return nil, fmt.Errorf("FetchAll: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FetchAll: rows: %w", err)
	}
	return records, nil
}

func (p *Postgres) GetItem(ctx context.Context, c storage.Collection, key string) (types.Record, error) {
	var body string
	err := p.pool.QueryRow(ctx,
		`SELECT body::text FROM documents WHERE collection = $1 AND doc_key = $2`,
		c.Name, key,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("GetItem: %s/%s: %w", c.Name, key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetItem: scan: %w", err)
	}
	return decode(body)
}

func (p *Postgres) PutItem(ctx context.Context, c storage.Collection, rec types.Record) error {
	key, err := c.KeyOf(rec)
	if err != nil {
		return fmt.Errorf("PutItem: %s: %w", c.Name, err)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("PutItem: encode: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO documents (collection, doc_key, body) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, doc_key) DO UPDATE SET body = EXCLUDED.body`,
		c.Name, key, string(body),
	)
	if err != nil {
		return fmt.Errorf("PutItem: exec: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteItem(ctx context.Context, c storage.Collection, key string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND doc_key = $2`, c.Name, key)
	if err != nil {
		return fmt.Errorf("DeleteItem: exec: %w", err)
	}
	return nil
}

func (p *Postgres) SetAttribute(ctx context.Context, c storage.Collection, key, attr string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("SetAttribute: encode: %w", err)
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE documents SET body = jsonb_set(body, $1::text[], $2::jsonb, true)
		WHERE collection = $3 AND doc_key = $4`,
		[]string{attr}, string(raw), c.Name, key,
	)
	if err != nil {
		return fmt.Errorf("SetAttribute: exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SetAttribute: %s/%s: %w", c.Name, key, storage.ErrNotFound)
	}
	return nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func decode(body string) (types.Record, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var rec types.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return rec, nil
}
