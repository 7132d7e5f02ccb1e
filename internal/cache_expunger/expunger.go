package cache_expunger

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultMaxAge     = 28 * 24 * time.Hour
	DefaultMaxEntries = 500
)

// Expunge removes old and excess entries from the chapter_cache table.
// Entries older than maxAge go first; then, if more than maxEntries remain,
// the oldest are removed until maxEntries are left.
func Expunge(db *sql.DB, maxAge time.Duration, maxEntries int) error {
	// created_at defaults to CURRENT_TIMESTAMP, which is UTC like 'now'.
	modifier := fmt.Sprintf("-%d seconds", int64(maxAge/time.Second))
	res, err := db.Exec("DELETE FROM chapter_cache WHERE created_at < datetime('now', ?)", modifier)
	if err != nil {
		return fmt.Errorf("failed to expunge stale entries: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("expunged stale cache entries", "removed_count", n)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM chapter_cache").Scan(&count); err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}

	if count > maxEntries {
		limit := count - maxEntries
		query := `
			DELETE FROM chapter_cache
			WHERE url IN (
				SELECT url
				FROM chapter_cache
				ORDER BY created_at ASC
				LIMIT ?
			)
		`
		if _, err := db.Exec(query, limit); err != nil {
			return fmt.Errorf("failed to expunge excess entries: %w", err)
		}
		slog.Info("expunged excess cache entries", "removed_count", limit)
	}

	return nil
}
