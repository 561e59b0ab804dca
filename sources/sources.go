package sources

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrSourceNotFound is returned when no status row exists for a source name.
var ErrSourceNotFound = errors.New("source not found")

// Source is a configured feed provider.
type Source struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// DefaultSources returns the feeds fetched when no sources are configured.
func DefaultSources() []Source {
	return []Source{
		{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
		{Name: "CryptoSlate", URL: "https://cryptoslate.com/feed/"},
		{Name: "Cointelegraph", URL: "https://cointelegraph.com/rss"},
	}
}

// SourceStatus is the fetch health of a source.
type SourceStatus struct {
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	LastFetchedAt   *time.Time `json:"last_fetched_at,omitempty"`
	LastSuccessAt   *time.Time `json:"last_success_at,omitempty"`
	FetchErrorCount int        `json:"fetch_error_count"`
	LastError       *string    `json:"last_error,omitempty"`
	ArticleCount    int        `json:"article_count"`
}

// SourceStore records per-source fetch outcomes using SQLite. Articles are
// never stored here.
type SourceStore struct {
	db *sql.DB
}

// NewSourceStore creates a new source store with the given database path.
// ":memory:" keeps the status for the lifetime of the process only.
func NewSourceStore(dbPath string) (*SourceStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	store := &SourceStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the source_status table if it doesn't exist.
func (s *SourceStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS source_status (
		name TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		position INTEGER NOT NULL,
		last_fetched_at TEXT,
		last_success_at TEXT,
		fetch_error_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		article_count INTEGER NOT NULL DEFAULT 0
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SourceStore) Close() error {
	return s.db.Close()
}

// Sync makes the stored sources match the configured list. Health of sources
// that remain configured is kept; rows for removed sources are deleted.
func (s *SourceStore) Sync(sources []Source) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE source_status SET position = -1"); err != nil {
		return fmt.Errorf("failed to reset positions: %w", err)
	}

	query := `
		INSERT INTO source_status (name, url, position) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET url = excluded.url, position = excluded.position
	`
	for i, source := range sources {
		if _, err := tx.Exec(query, source.Name, source.URL, i); err != nil {
			return fmt.Errorf("failed to upsert source %s: %w", source.Name, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM source_status WHERE position = -1"); err != nil {
		return fmt.Errorf("failed to delete removed sources: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sources: %w", err)
	}
	return nil
}

// RecordSuccess marks a fetch of the named source as successful, resetting
// its consecutive error count.
func (s *SourceStore) RecordSuccess(name string, articleCount int, at time.Time) error {
	query := `
		UPDATE source_status
		SET last_fetched_at = ?, last_success_at = ?, fetch_error_count = 0,
		    last_error = NULL, article_count = ?
		WHERE name = ?
	`
	return s.update(query, formatTime(&at), formatTime(&at), articleCount, name)
}

// RecordFailure marks a fetch of the named source as failed. Articles
// contributed by the last successful fetch are no longer cached, so the
// article count drops to zero.
func (s *SourceStore) RecordFailure(name string, fetchErr error, at time.Time) error {
	query := `
		UPDATE source_status
		SET last_fetched_at = ?, fetch_error_count = fetch_error_count + 1,
		    last_error = ?, article_count = 0
		WHERE name = ?
	`
	return s.update(query, formatTime(&at), fetchErr.Error(), name)
}

func (s *SourceStore) update(query string, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update source status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSourceNotFound
	}

	return nil
}

// GetStatus retrieves the status of a source by name.
func (s *SourceStore) GetStatus(name string) (*SourceStatus, error) {
	query := `
		SELECT name, url, last_fetched_at, last_success_at,
		       fetch_error_count, last_error, article_count
		FROM source_status
		WHERE name = ?
	`

	status, err := scanStatus(s.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source status: %w", err)
	}

	return status, nil
}

// ListStatuses lists the status of every source in configured order.
func (s *SourceStore) ListStatuses() ([]SourceStatus, error) {
	query := `
		SELECT name, url, last_fetched_at, last_success_at,
		       fetch_error_count, last_error, article_count
		FROM source_status
		ORDER BY position ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query source status: %w", err)
	}
	defer rows.Close()

	statuses := []SourceStatus{}
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source status: %w", err)
		}
		statuses = append(statuses, *status)
	}

	return statuses, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStatus is a shared helper that parses a row into a SourceStatus.
func scanStatus(row rowScanner) (*SourceStatus, error) {
	var status SourceStatus
	var lastFetchedAt, lastSuccessAt, lastError sql.NullString

	err := row.Scan(
		&status.Name, &status.URL, &lastFetchedAt, &lastSuccessAt,
		&status.FetchErrorCount, &lastError, &status.ArticleCount,
	)
	if err != nil {
		return nil, err
	}

	if lastFetchedAt.Valid {
		t := parseTime(lastFetchedAt.String)
		status.LastFetchedAt = &t
	}
	if lastSuccessAt.Valid {
		t := parseTime(lastSuccessAt.String)
		status.LastSuccessAt = &t
	}
	if lastError.Valid {
		status.LastError = &lastError.String
	}

	return &status, nil
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	// Try RFC3339Nano first, fall back to RFC3339 for compatibility
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
