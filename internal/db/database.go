package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

const (
	// DriverSQLite is the default embedded store
	DriverSQLite = "sqlite3"
	// DriverPostgres uses the pgx database/sql driver
	DriverPostgres = "pgx"
)

var (
	// ErrNotFound is returned by mutations that matched no row
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation wraps driver-specific unique constraint failures
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// Database owns the connection pool and the SQL dialect in use
type Database struct {
	db     *sql.DB
	driver string
}

// NewDatabase opens the store, verifies the connection and applies the schema
func NewDatabase(driver, dsn string) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is required")
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// One connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
		db.SetConnMaxIdleTime(30 * time.Minute)
	}

	// Verify we can actually connect to the database
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("ping failed: %w, close failed: %v", err, closeErr)
		}
		return nil, err
	}

	d := &Database{db: db, driver: driver}

	if err := d.migrate(context.Background()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("create tables failed: %w, close failed: %v", err, closeErr)
		}
		return nil, err
	}

	return d, nil
}

// GetDB exposes the underlying pool
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// Driver returns the database/sql driver name
func (d *Database) Driver() string {
	return d.driver
}

// Ping checks the store is reachable
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.db == nil {
		return errors.New("database is closed")
	}
	return d.db.PingContext(ctx)
}

// Close releases the pool
func (d *Database) Close() error {
	if d == nil {
		return errors.New("database is nil")
	}

	if d.db == nil {
		return errors.New("database already closed")
	}

	err := d.db.Close()
	d.db = nil
	return err
}

// rebind rewrites ? placeholders into $n for Postgres
func (d *Database) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *Database) migrate(ctx context.Context) error {
	if d.driver == DriverSQLite {
		if _, err := d.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	for _, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Statements are portable between SQLite and Postgres
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_groups (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		joined_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS phone_numbers (
		id TEXT PRIMARY KEY,
		phone_number TEXT NOT NULL UNIQUE,
		provider_sid TEXT,
		status TEXT NOT NULL DEFAULT 'AVAILABLE'
			CHECK (status IN ('AVAILABLE', 'ASSIGNED', 'INACTIVE')),
		group_id TEXT REFERENCES groups(id),
		created_at TIMESTAMP NOT NULL,
		assigned_at TIMESTAMP,
		CHECK (
			(status = 'ASSIGNED' AND group_id IS NOT NULL AND assigned_at IS NOT NULL)
			OR (status <> 'ASSIGNED' AND group_id IS NULL AND assigned_at IS NULL)
		)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id),
		group_id TEXT NOT NULL REFERENCES groups(id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS otp_verifications (
		id TEXT PRIMARY KEY,
		phone_number TEXT NOT NULL,
		secret TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`,
	// A group has at most one bound number
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_phone_numbers_assigned_group
		ON phone_numbers(group_id) WHERE status = 'ASSIGNED'`,
	`CREATE INDEX IF NOT EXISTS idx_phone_numbers_status ON phone_numbers(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_user_groups_group_id ON user_groups(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_group_created ON messages(group_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_otp_phone ON otp_verifications(phone_number)`,
}

// isUniqueViolation recognizes unique/primary key failures from either driver
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// wrapWriteError tags unique violations so services can map them to conflicts
func wrapWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrUniqueViolation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
