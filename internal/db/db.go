// Package db persists the last raw price snapshot and the published
// profit reports in SQLite, so a restart (or a dead price feed) can
// serve the previous state instead of nothing.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Amongalen/albion-profit-calculator/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func defaultPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "calculator.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "calculator.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
// An empty path picks a default next to the working directory.
func Open(path string) (*DB, error) {
	if path == "" {
		path = defaultPath()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS price_snapshots (
				item_id        TEXT NOT NULL,
				city           INTEGER NOT NULL,
				sell_price_min REAL NOT NULL,
				avg_price_24h  REAL NOT NULL,
				items_sold     REAL NOT NULL,
				updated_at     TEXT NOT NULL,
				PRIMARY KEY (item_id, city)
			);

			CREATE TABLE IF NOT EXISTS report_batches (
				key        TEXT PRIMARY KEY,
				updated_at TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS profit_reports (
				id                      INTEGER PRIMARY KEY AUTOINCREMENT,
				batch_key               TEXT NOT NULL REFERENCES report_batches(key),
				position                INTEGER NOT NULL,
				product_id              TEXT NOT NULL,
				product_name            TEXT,
				product_tier            TEXT,
				product_subcategory     TEXT,
				subcategory_name        TEXT,
				product_quantity        INTEGER,
				recipe_kind             TEXT NOT NULL,
				production_city         TEXT NOT NULL,
				destination_city        TEXT NOT NULL,
				final_product_price     REAL,
				ingredients_total_cost  REAL,
				profit_without_journals REAL,
				profit_per_journal      REAL,
				journals_filled         REAL,
				profit_with_journals    REAL,
				profit_percentage       REAL
			);
			CREATE INDEX IF NOT EXISTS idx_reports_batch ON profit_reports(batch_key);

			CREATE TABLE IF NOT EXISTS ingredient_details (
				id                        INTEGER PRIMARY KEY AUTOINCREMENT,
				report_id                 INTEGER NOT NULL REFERENCES profit_reports(id),
				item_id                   TEXT NOT NULL,
				item_name                 TEXT,
				quantity                  INTEGER,
				source_city               TEXT,
				local_price               REAL,
				total_cost                REAL,
				total_cost_with_transport REAL,
				total_cost_with_returns   REAL
			);
			CREATE INDEX IF NOT EXISTS idx_ingredients_report ON ingredient_details(report_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}
