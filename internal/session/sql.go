package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/jobboard/internal/repository/sqlstore"
)

// SQLBackend keeps sessions in a "sessions" table in the application
// database, so logins survive restarts and are shared between instances.
type SQLBackend struct {
	conn    *sql.DB
	dialect sqlstore.Dialect
	now     func() time.Time
}

var _ Backend = (*SQLBackend)(nil)

// NewSQLBackend creates the sessions table if needed.
func NewSQLBackend(ctx context.Context, db *sqlstore.DB) (*SQLBackend, error) {
	b := &SQLBackend{conn: db.Conn(), dialect: db.Dialect(), now: time.Now}

	ddl := `CREATE TABLE IF NOT EXISTS sessions (
		sid    TEXT PRIMARY KEY,
		sess   TEXT NOT NULL,
		expire DATETIME NOT NULL
	)`
	if b.dialect == sqlstore.Postgres {
		ddl = `CREATE TABLE IF NOT EXISTS sessions (
			sid    TEXT PRIMARY KEY,
			sess   TEXT NOT NULL,
			expire TIMESTAMPTZ NOT NULL
		)`
	}
	if _, err := b.conn.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("session: creating table: %w", err)
	}
	if _, err := b.conn.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expire ON sessions(expire)`); err != nil {
		return nil, fmt.Errorf("session: creating index: %w", err)
	}
	return b, nil
}

func (b *SQLBackend) q(query string) string {
	return sqlstore.Rebind(b.dialect, query)
}

func (b *SQLBackend) Load(ctx context.Context, id string) ([]byte, error) {
	var (
		data    string
		expires time.Time
	)
	err := b.conn.QueryRowContext(ctx,
		b.q(`SELECT sess, expire FROM sessions WHERE sid = ?`), id).Scan(&data, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !b.now().Before(expires) {
		if err := b.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("session: deleting expired %s: %w", id, err)
		}
		return nil, ErrNotFound
	}
	return []byte(data), nil
}

func (b *SQLBackend) Save(ctx context.Context, id string, data []byte, expires time.Time) error {
	_, err := b.conn.ExecContext(ctx, b.q(`
		INSERT INTO sessions (sid, sess, expire) VALUES (?, ?, ?)
		ON CONFLICT (sid) DO UPDATE SET sess = excluded.sess, expire = excluded.expire`),
		id, string(data), expires.UTC())
	return err
}

func (b *SQLBackend) Delete(ctx context.Context, id string) error {
	_, err := b.conn.ExecContext(ctx, b.q(`DELETE FROM sessions WHERE sid = ?`), id)
	return err
}

func (b *SQLBackend) Prune(ctx context.Context) (int64, error) {
	res, err := b.conn.ExecContext(ctx, b.q(`DELETE FROM sessions WHERE expire <= ?`), b.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
