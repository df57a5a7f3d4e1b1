package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pricewatch/pricewatch/internal/model"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "pricewatch.db"

// Store provides SQLite-based storage for tracked items, their price
// history, and check records. It manages connection pooling and provides
// methods for CRUD operations.
//
// Design decision: We keep one database file for all tracked items
// rather than a file per host. This simplifies listing, cross-host
// queries, and backup/restore operations.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dataDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dataDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dataDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// modernc.org/sqlite uses URI-style connection options. mode=rw
	// prevents creating new files; mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections buy nothing
	// here and invite SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Tracked items keyed by document ID. The doc column holds the full
	-- item as JSON; url, host, and parser are denormalized for lookups
	-- and listing without deserializing every document.
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		host TEXT NOT NULL,
		parser TEXT NOT NULL,
		doc TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_host ON items(host);

	-- Price observations, append only
	CREATE TABLE IF NOT EXISTS prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL,
		available INTEGER NOT NULL,
		observed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_prices_item ON prices(item_id, observed_at);

	-- Check records, used to skip recently checked items
	CREATE TABLE IF NOT EXISTS checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL,
		checked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_checks_item ON checks(item_id, checked_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveItem inserts or updates a tracked item.
// Uses UPSERT keyed on the document ID, so re-tracking an already
// tracked page updates it in place.
func (s *Store) SaveItem(ctx context.Context, item *model.Item) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to serialize item: %w", err)
	}

	query := `
	INSERT INTO items (id, url, host, parser, doc)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		url = excluded.url,
		host = excluded.host,
		parser = excluded.parser,
		doc = excluded.doc,
		updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.URL,
		item.Host,
		item.Parser,
		string(doc),
	); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	return nil
}

// GetItem retrieves a tracked item by document ID.
func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM items WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	var item model.Item
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return nil, fmt.Errorf("failed to parse item: %w", err)
	}

	return &item, nil
}

// DeleteItem removes a tracked item with its price history and check
// records. The three deletes run in one transaction so a failure cannot
// leave orphaned history behind.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete price history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM checks WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete check records: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// ListItems returns all tracked items ordered by host, then by when
// they were added.
func (s *Store) ListItems(ctx context.Context) ([]*model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM items ORDER BY host, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*model.Item
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		var item model.Item
		if err := json.Unmarshal([]byte(doc), &item); err != nil {
			continue // Skip malformed documents
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

// HostCounts returns the number of tracked items per canonical host.
func (s *Store) HostCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT host, COUNT(*) FROM items GROUP BY host`)
	if err != nil {
		return nil, fmt.Errorf("failed to count items by host: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var host string
		var n int
		if err := rows.Scan(&host, &n); err != nil {
			return nil, fmt.Errorf("failed to scan host count: %w", err)
		}
		counts[host] = n
	}

	return counts, rows.Err()
}

// AppendPrice records a price observation for a tracked item.
// The item must exist; history for unknown items would be unreachable
// garbage.
func (s *Store) AppendPrice(ctx context.Context, id string, p model.PricePoint) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	observedAt := p.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now()
	}

	query := `
	INSERT INTO prices (item_id, amount, currency, available, observed_at)
	VALUES (?, ?, ?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query,
		id,
		p.Amount,
		p.Currency,
		boolToInt(p.Available),
		formatTimestamp(observedAt),
	); err != nil {
		return fmt.Errorf("failed to append price: %w", err)
	}

	return nil
}

// PriceHistory returns price observations for an item, newest first.
// A non-positive limit returns the full history.
func (s *Store) PriceHistory(ctx context.Context, id string, limit int) ([]model.PricePoint, error) {
	query := `
	SELECT amount, currency, available, observed_at
	FROM prices
	WHERE item_id = ?
	ORDER BY observed_at DESC, id DESC
	`
	args := []interface{}{id}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		var available int
		var observedAt string

		if err := rows.Scan(&p.Amount, &p.Currency, &available, &observedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}

		p.Available = available == 1
		p.ObservedAt = parseTimestamp(observedAt)
		points = append(points, p)
	}

	return points, rows.Err()
}

// LatestPrice returns the most recent price observation for an item, or
// nil when none has been recorded yet. An empty history is a normal
// state for a freshly tracked item, not an error.
func (s *Store) LatestPrice(ctx context.Context, id string) (*model.PricePoint, error) {
	query := `
	SELECT amount, currency, available, observed_at
	FROM prices
	WHERE item_id = ?
	ORDER BY observed_at DESC, id DESC
	LIMIT 1
	`

	var p model.PricePoint
	var available int
	var observedAt string

	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.Amount, &p.Currency, &available, &observedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}

	p.Available = available == 1
	p.ObservedAt = parseTimestamp(observedAt)
	return &p, nil
}

// RecordCheck records that a check ran for an item. Failed checks are
// recorded with their error detail so operators can see what happened,
// but only successful checks count for skip decisions.
func (s *Store) RecordCheck(ctx context.Context, id string, ok bool, detail string) error {
	status := "ok"
	if !ok {
		status = "error"
	}

	query := `INSERT INTO checks (item_id, status, detail) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, id, status, detail); err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// HasRecentCheck reports whether the item completed a successful check
// within the window. A non-positive window disables skipping entirely.
func (s *Store) HasRecentCheck(ctx context.Context, id string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, nil
	}

	query := `
	SELECT COUNT(*) FROM checks
	WHERE item_id = ? AND status = 'ok' AND checked_at > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(window.Seconds()))

	var count int
	if err := s.db.QueryRowContext(ctx, query, id, modifier).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check recent checks: %w", err)
	}

	return count > 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// formatTimestamp renders a time the way SQLite's CURRENT_TIMESTAMP
// does (UTC, space separator), so stored values compare consistently
// with SQLite-generated ones.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.999")
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05.999",     // SQLite with milliseconds
	"2006-01-02 15:04:05",         // SQLite default datetime format
	"2006-01-02T15:04:05Z",        // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",         // ISO 8601 without timezone
	time.RFC3339,                  // Full RFC3339 format
	time.RFC3339Nano,              // RFC3339 with nanoseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
