package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/barfriedman1/FDA-drug-recall/internal/recall"

	_ "modernc.org/sqlite"
)

// Cache holds the fetched dataset as a table in an in-memory SQLite database.
// Nothing is written to disk; the data lives as long as the process.
type Cache struct {
	db *sql.DB
}

type QueryOpts struct {
	Classification string
	Limit          int
}

func Open() (*Cache, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory db: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	c := &Cache{db: db}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS recalls (
			seq            INTEGER PRIMARY KEY,
			product        TEXT NOT NULL,
			classification TEXT NOT NULL,
			reason         TEXT NOT NULL,
			year           TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_recalls_classification ON recalls(classification);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Replace swaps the cached dataset for records, keeping their order, and
// stamps the refresh time.
func (c *Cache) Replace(records []recall.Record) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM recalls`); err != nil {
		return fmt.Errorf("clearing recalls: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO recalls (seq, product, classification, reason, year)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(i, r.Product, r.Classification, r.Reason, r.Year); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := setMeta(tx, "last_refresh", time.Now().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// Records returns cached records in fetch order. An empty or All
// classification returns every record.
func (c *Cache) Records(opts QueryOpts) ([]recall.Record, error) {
	query := "SELECT product, classification, reason, year FROM recalls"
	var args []interface{}
	if opts.Classification != "" && opts.Classification != recall.All {
		query += " WHERE classification = ?"
		args = append(args, opts.Classification)
	}
	query += " ORDER BY seq"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recalls: %w", err)
	}
	defer rows.Close()

	var records []recall.Record
	for rows.Next() {
		var r recall.Record
		if err := rows.Scan(&r.Product, &r.Classification, &r.Reason, &r.Year); err != nil {
			return nil, fmt.Errorf("scanning recall: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of cached records.
func (c *Cache) Count() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM recalls").Scan(&n)
	return n, err
}

// CountBy returns record counts per distinct value of column, which must be
// "classification", "reason" or "year".
func (c *Cache) CountBy(column string) (map[string]int, error) {
	switch column {
	case "classification", "reason", "year":
	default:
		return nil, fmt.Errorf("cannot group by %q", column)
	}
	rows, err := c.db.Query("SELECT " + column + ", COUNT(*) FROM recalls GROUP BY " + column) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("grouping by %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// Loaded reports whether a dataset has been stored.
func (c *Cache) Loaded() bool {
	_, err := c.LastRefresh()
	return err == nil
}

// NeedsRefresh reports whether the dataset is missing or older than ttl. A
// ttl of zero or less means a loaded dataset never expires.
func (c *Cache) NeedsRefresh(ttl time.Duration) bool {
	t, err := c.LastRefresh()
	if err != nil {
		return true
	}
	if ttl <= 0 {
		return false
	}
	return time.Since(t) > ttl
}

func (c *Cache) LastRefresh() (time.Time, error) {
	var value string
	err := c.db.QueryRow("SELECT value FROM meta WHERE key = 'last_refresh'").Scan(&value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, value)
}

// Invalidate drops the refresh stamp so the next load fetches again. The
// current records stay readable until then.
func (c *Cache) Invalidate() error {
	_, err := c.db.Exec("DELETE FROM meta WHERE key = 'last_refresh'")
	return err
}

func (c *Cache) SetMeta(key, value string) error {
	return setMeta(c.db, key, value)
}

func (c *Cache) Meta(key string) (string, error) {
	var value string
	err := c.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func setMeta(db execer, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
