package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteDB is the embedded store used for local development and tests
type SQLiteDB struct {
	DB *sql.DB
}

// IsSQLiteURL reports whether a DATABASE_URL points at SQLite
func IsSQLiteURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "sqlite:") ||
		strings.HasPrefix(databaseURL, "file:") ||
		databaseURL == ":memory:"
}

// NewSQLiteDB opens the database, applies pragmas and creates the schema
func NewSQLiteDB(ctx context.Context, databaseURL string) (*SQLiteDB, error) {
	dsn := strings.TrimPrefix(databaseURL, "sqlite:")
	if dsn == "" {
		return nil, fmt.Errorf("empty SQLite path")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite serializes writers; one connection also keeps :memory: databases alive
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	sdb := &SQLiteDB{DB: db}
	if err := sdb.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return sdb, nil
}

// Migrate applies SQLiteSchema
func (db *SQLiteDB) Migrate(ctx context.Context) error {
	for _, query := range SQLiteSchema {
		if _, err := db.DB.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Drop removes the tables Migrate creates
func (db *SQLiteDB) Drop(ctx context.Context) error {
	for _, table := range []string{"activities", "reminder_groups"} {
		if _, err := db.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the database
func (db *SQLiteDB) Close() error {
	return db.DB.Close()
}

// Health checks the database connection
func (db *SQLiteDB) Health(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}
