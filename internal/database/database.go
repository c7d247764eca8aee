package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DateLayout stores calendar dates as sortable text.
const DateLayout = "2006-01-02"

var (
	ErrNotFound   = errors.New("not found")
	ErrBuildQuery = errors.New("build query")
)

// builder renders squirrel statements with sqlite placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// DB is the SQLite store for rooms, reservations and invoices.
type DB struct {
	*sql.DB
	path   string
	loc    *time.Location
	logger *zerolog.Logger
}

// NewDB opens the database and creates tables that do not exist.
func NewDB(path string, loc *time.Location, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	instance := &DB{DB: db, path: path, loc: loc, logger: logger}
	if err := instance.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			position INTEGER NOT NULL,
			number TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'Available',
			PRIMARY KEY (number, category)
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			room_number TEXT NOT NULL DEFAULT '',
			room_category TEXT NOT NULL DEFAULT '',
			guest_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			checkin TEXT NOT NULL DEFAULT '',
			checkout TEXT NOT NULL DEFAULT '',
			nights INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			adults INTEGER NOT NULL DEFAULT 0,
			children INTEGER NOT NULL DEFAULT 0,
			plan TEXT NOT NULL DEFAULT '',
			rate REAL NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_group ON reservations(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_position ON reservations(position)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			number TEXT NOT NULL,
			guest_name TEXT NOT NULL DEFAULT '',
			room_numbers TEXT NOT NULL DEFAULT '',
			invoice_date TEXT NOT NULL DEFAULT '',
			subtotal REAL NOT NULL DEFAULT 0,
			tax_amount REAL NOT NULL DEFAULT 0,
			discount REAL NOT NULL DEFAULT 0,
			grand_total REAL NOT NULL DEFAULT 0,
			paid_amount REAL NOT NULL DEFAULT 0,
			balance_due REAL NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL DEFAULT '',
			payment_status TEXT NOT NULL DEFAULT '',
			payment_notes TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_group ON invoices(group_id)`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
			id TEXT PRIMARY KEY,
			invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			service TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			room TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0,
			unit_price REAL NOT NULL DEFAULT 0,
			total REAL NOT NULL DEFAULT 0,
			item_date DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id, position)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('revision', 0)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Revision is bumped on every write to rooms or reservations. Cached
// availability is keyed by it.
func (db *DB) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'revision'`).Scan(&rev)
	return rev, err
}

func bumpRevision(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `UPDATE meta SET value = value + 1 WHERE key = 'revision'`)
	return err
}

// withTx runs fn in a transaction and commits when it returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (db *DB) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(db.loc).Format(DateLayout)
}

func (db *DB) parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, s, db.loc)
}

// Ready reports whether the database answers.
func (db *DB) Ready(ctx context.Context) error {
	return db.PingContext(ctx)
}
