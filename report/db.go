// Package report queries archived decision batches with DuckDB and serves
// the results as JSON.
package report

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DB keeps a DuckDB view over the parquet files under a set of roots and
// rebuilds it once it is older than the refresh rate, so new batches show up.
type DB struct {
	roots       []string
	refreshRate time.Duration
	logger      *slog.Logger

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time
}

func NewDB(roots []string, refreshRate time.Duration, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{roots: roots, refreshRate: refreshRate, logger: logger}
}

// Get returns the cached connection, refreshing if needed.
func (c *DB) Get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}
	return c.refreshLocked()
}

// Refresh forces the view to be rebuilt.
func (c *DB) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.refreshLocked()
	return err
}

func (c *DB) refreshLocked() (*sql.DB, error) {
	start := time.Now()

	newDB, err := openDuckDB(c.roots)
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	c.db = newDB
	c.lastRefresh = time.Now()

	c.logger.Debug("decision view refreshed", "roots", c.roots, "took", time.Since(start))
	return c.db, nil
}

func (c *DB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

const emptyView = `CREATE OR REPLACE VIEW decisions AS
	SELECT * FROM (
		SELECT
			NULL::VARCHAR AS game_id,
			NULL::INTEGER AS turn,
			NULL::VARCHAR AS bot_id,
			NULL::INTEGER AS width,
			NULL::INTEGER AS height,
			NULL::INTEGER AS x,
			NULL::INTEGER AS y,
			NULL::INTEGER AS base_x,
			NULL::INTEGER AS base_y,
			NULL::INTEGER AS diamonds,
			NULL::INTEGER AS score,
			NULL::INTEGER AS ticks_left,
			NULL::INTEGER AS target_x,
			NULL::INTEGER AS target_y,
			NULL::VARCHAR AS category,
			NULL::DOUBLE AS value,
			NULL::VARCHAR AS move,
			NULL::BOOLEAN AS portal_override,
			NULL::INTEGER AS pursuit_count,
			NULL::BOOLEAN AS using_portal,
			NULL::VARCHAR AS source,
			NULL::VARCHAR AS filename
	) WHERE 1=0`

// openDuckDB creates an in-memory DuckDB with a "decisions" view over every
// finished parquet batch under roots. Files under tmp/ are skipped.
func openDuckDB(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	// Basic pragmas; ignore errors for compatibility across versions.
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	filters := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" || !hasParquet(root) {
			continue
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
		filters = append(filters, finishedUnder(root))
	}

	sqlText := emptyView
	if len(globs) > 0 {
		sqlText = `CREATE OR REPLACE VIEW decisions AS
			SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
			WHERE ` + strings.Join(filters, " OR ")
	}
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// finishedUnder matches files below root that are not inside a tmp dir.
// Only the part of the path below root is checked, so a root that itself
// lives under some /tmp/ still counts.
func finishedUnder(root string) string {
	prefix := root + string(filepath.Separator)
	return fmt.Sprintf("(starts_with(filename, '%s') AND NOT contains(substr(filename, %d), '/tmp/'))",
		escapeSQLString(prefix), utf8.RuneCountInString(root)+1)
}

// hasParquet reports whether root holds at least one finished batch.
// read_parquet fails on a glob that matches nothing.
func hasParquet(root string) bool {
	found := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "tmp" {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
