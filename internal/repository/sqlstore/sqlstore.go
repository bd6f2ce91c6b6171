// Package sqlstore implements repository.Storage on database/sql.
//
// Two dialects share one set of queries:
//
//	postgres  github.com/lib/pq       production, JSONB columns
//	sqlite    modernc.org/sqlite      local runs and tests (":memory:"), JSON as TEXT
//
// Queries are written with ? placeholders; rebind rewrites them to $1, $2, …
// for postgres. Every method is one independent round trip (two for
// ListApplicationsByOwner). There is no transaction spanning calls and no retry.
// Driver errors are wrapped and returned as they are, apart from unique-key
// violations (apperror.ErrConflict) and missing rows (apperror.ErrNotFound).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/jobboard/internal/refid"
	"github.com/sakif/jobboard/internal/repository"
)

var _ repository.Storage = (*DB)(nil)

// Dialect names a supported SQL engine. Its value is also the
// database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the names used in DATABASE_DRIVER.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("sqlstore: unsupported driver %q", name)
}

// DB is a relational repository.Storage.
type DB struct {
	conn    *sql.DB
	dialect Dialect
	refs    repository.ReferenceGenerator
	now     func() time.Time
}

// Option customises a DB.
type Option func(*DB)

// WithClock replaces time.Now for created/submitted timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// WithReferenceGenerator replaces the default refid generator.
func WithReferenceGenerator(g repository.ReferenceGenerator) Option {
	return func(db *DB) { db.refs = g }
}

// Open connects, verifies the connection and runs migrations.
//
//	sqlstore.Open(ctx, sqlstore.Postgres, "postgres://app:secret@db/jobs?sslmode=disable")
//	sqlstore.Open(ctx, sqlstore.SQLite, "data/jobboard.db")
//	sqlstore.Open(ctx, sqlstore.SQLite, ":memory:")
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*DB, error) {
	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s: %w", dialect, err)
	}

	switch dialect {
	case SQLite:
		// Each new connection to ":memory:" is a separate empty database,
		// and sqlite allows one writer anyway.
		conn.SetMaxOpenConns(1)
	case Postgres:
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s: %w", dialect, err)
	}

	if dialect == SQLite {
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlstore: setting WAL mode: %w", err)
		}
	}

	db := New(conn, dialect, opts...)
	if err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}
	return db, nil
}

// New wraps an existing handle without pinging or migrating it.
func New(conn *sql.DB, dialect Dialect, opts ...Option) *DB {
	db := &DB{
		conn:    conn,
		dialect: dialect,
		refs:    refid.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the pool so the session store can share it.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect reports which engine the pool talks to.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// timestamp is UTC at microsecond precision, the resolution of timestamptz.
func (db *DB) timestamp() time.Time {
	return db.now().UTC().Truncate(time.Microsecond)
}

// rebind rewrites ? placeholders for the current dialect.
func (db *DB) rebind(query string) string {
	return Rebind(db.dialect, query)
}

// Rebind rewrites ? placeholders to $n for postgres and leaves sqlite
// queries alone. Queries must not contain a literal '?'.
func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// isUniqueViolation recognises duplicate-key errors from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// conflictField picks which of the candidate columns a unique violation is
// about, by name. Postgres reports the constraint name
// (users_username_key); sqlite reports the column (users.username).
func conflictField(err error, columns ...string) string {
	text := err.Error()
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint != "" {
		text = pqErr.Constraint
	}
	for _, c := range columns {
		if strings.Contains(text, c) {
			return c
		}
	}
	if len(columns) > 0 {
		return columns[0]
	}
	return ""
}
