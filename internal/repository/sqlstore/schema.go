package sqlstore

import (
	"context"
	"fmt"
)

// The schema has no foreign keys: a job may name a user that does not exist
// and an application may name a missing job. Ownership is checked by the
// service layer.
//
// applications.status is nullable so rows imported from older exports keep
// working; reads fill in "submitted".

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             BIGSERIAL PRIMARY KEY,
		username       TEXT NOT NULL UNIQUE,
		password       TEXT NOT NULL,
		franchise_name TEXT NOT NULL DEFAULT '',
		franchisee_id  TEXT NOT NULL UNIQUE,
		location       TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS job_listings (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		title        TEXT NOT NULL,
		location     TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		requirements TEXT NOT NULL DEFAULT '',
		type         TEXT NOT NULL,
		department   TEXT,
		pay_range    TEXT,
		benefits     TEXT,
		status       TEXT NOT NULL DEFAULT 'active',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		closing_date TIMESTAMPTZ,
		tags         JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_listings_user_id ON job_listings(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_job_listings_created_at ON job_listings(created_at)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id           BIGSERIAL PRIMARY KEY,
		job_id       BIGINT NOT NULL,
		reference_id TEXT NOT NULL UNIQUE,
		first_name   TEXT NOT NULL,
		last_name    TEXT NOT NULL,
		email        TEXT NOT NULL,
		phone        TEXT NOT NULL DEFAULT '',
		address      TEXT,
		city         TEXT,
		zip          TEXT,
		resume_url   TEXT,
		experience   TEXT,
		education    TEXT,
		cover_letter TEXT,
		availability JSONB,
		shifts       JSONB NOT NULL DEFAULT '[]',
		start_date   TIMESTAMPTZ,
		status       TEXT DEFAULT 'submitted',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		action      TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   BIGINT NOT NULL DEFAULT 0,
		details     JSONB NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id, created_at DESC)`,
}

// AUTOINCREMENT (not just INTEGER PRIMARY KEY) stops sqlite from reusing
// the id of a deleted last row.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		username       TEXT NOT NULL UNIQUE,
		password       TEXT NOT NULL,
		franchise_name TEXT NOT NULL DEFAULT '',
		franchisee_id  TEXT NOT NULL UNIQUE,
		location       TEXT NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS job_listings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL,
		title        TEXT NOT NULL,
		location     TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		requirements TEXT NOT NULL DEFAULT '',
		type         TEXT NOT NULL,
		department   TEXT,
		pay_range    TEXT,
		benefits     TEXT,
		status       TEXT NOT NULL DEFAULT 'active',
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		closing_date DATETIME,
		tags         TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_listings_user_id ON job_listings(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_job_listings_created_at ON job_listings(created_at)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id       INTEGER NOT NULL,
		reference_id TEXT NOT NULL UNIQUE,
		first_name   TEXT NOT NULL,
		last_name    TEXT NOT NULL,
		email        TEXT NOT NULL,
		phone        TEXT NOT NULL DEFAULT '',
		address      TEXT,
		city         TEXT,
		zip          TEXT,
		resume_url   TEXT,
		experience   TEXT,
		education    TEXT,
		cover_letter TEXT,
		availability TEXT,
		shifts       TEXT NOT NULL DEFAULT '[]',
		start_date   DATETIME,
		status       TEXT DEFAULT 'submitted',
		submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL,
		action      TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   INTEGER NOT NULL DEFAULT 0,
		details     TEXT NOT NULL DEFAULT '{}',
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id, created_at DESC)`,
}

// Migrate creates any missing tables and indexes. It is safe to run on
// every start.
func (db *DB) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if db.dialect == Postgres {
		stmts = postgresSchema
	}
	for i, stmt := range stmts {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}
