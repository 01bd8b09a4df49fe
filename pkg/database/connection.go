package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"pinlist/pkg/utils"
)

// Supported driver names
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// dialect holds the driver specific SQL for the key-value table
type dialect struct {
	schema string
	upsert string
}

var dialects = map[string]dialect{
	SQLite: {
		schema: `
			CREATE TABLE IF NOT EXISTS kv_store (
				kv_key TEXT PRIMARY KEY,
				kv_value TEXT NOT NULL,
				updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
		upsert: `INSERT INTO kv_store (kv_key, kv_value, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated = CURRENT_TIMESTAMP`,
	},
	Postgres: {
		schema: `
			CREATE TABLE IF NOT EXISTS kv_store (
				kv_key TEXT PRIMARY KEY,
				kv_value TEXT NOT NULL,
				updated TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`,
		upsert: `INSERT INTO kv_store (kv_key, kv_value, updated) VALUES (?, ?, now())
			ON CONFLICT (kv_key) DO UPDATE SET kv_value = EXCLUDED.kv_value, updated = now()`,
	},
	MySQL: {
		schema: `
			CREATE TABLE IF NOT EXISTS kv_store (
				kv_key VARCHAR(191) PRIMARY KEY,
				kv_value LONGTEXT NOT NULL,
				updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
		upsert: `INSERT INTO kv_store (kv_key, kv_value, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON DUPLICATE KEY UPDATE kv_value = VALUES(kv_value), updated = CURRENT_TIMESTAMP`,
	},
}

// ConnectDB opens and pings the database for the given driver
func ConnectDB(driver, dsn string) (*sqlx.DB, error) {
	if _, ok := dialects[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if driver == SQLite {
		var err error
		dsn, err = prepareSQLitePath(dsn)
		if err != nil {
			return nil, err
		}
	}

	utils.Log("Connecting to %s database", driver)
	return sqlx.Connect(driver, dsn)
}

// prepareSQLitePath expands a leading tilde and creates the parent directory.
// SQLite creates the database file itself.
func prepareSQLitePath(dbPath string) (string, error) {
	if strings.HasPrefix(dbPath, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dbPath = homeDir + dbPath[1:]
	}

	// Leave in-memory and URI style names alone
	if dbPath == ":memory:" || strings.HasPrefix(dbPath, "file:") {
		return dbPath, nil
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return "", err
		}
	}
	return dbPath, nil
}

// EnsureSchema creates the key-value table if it doesn't exist
func EnsureSchema(db *sqlx.DB) error {
	d, ok := dialects[db.DriverName()]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", db.DriverName())
	}
	_, err := db.Exec(d.schema)
	return err
}
