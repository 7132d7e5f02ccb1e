// Package store keeps fetched chapter bodies in SQLite so reruns do not
// have to hit the API again.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Cache is a chapter body cache keyed by request URL.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and brings
// its schema up to date. Use ":memory:" for a throwaway cache.
func Open(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("chapter cache ready", "path", path)
	return &Cache{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, r := range results {
		slog.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// DB exposes the underlying handle for maintenance jobs.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// Get returns the cached body for url.
func (c *Cache) Get(ctx context.Context, url string) (string, bool, error) {
	var body string
	err := c.db.QueryRowContext(ctx, `SELECT body FROM chapter_cache WHERE url = ?`, url).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query chapter cache: %w", err)
	}
	return body, true, nil
}

// Put stores body for url, replacing and re-dating any earlier entry.
func (c *Cache) Put(ctx context.Context, url, body string) error {
	query := `
		INSERT INTO chapter_cache (url, body)
		VALUES (?, ?)
		ON CONFLICT(url) DO UPDATE SET
			body = excluded.body,
			created_at = CURRENT_TIMESTAMP
	`
	if _, err := c.db.ExecContext(ctx, query, url, body); err != nil {
		return fmt.Errorf("failed to save chapter cache: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
