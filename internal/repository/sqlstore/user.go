package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
)

const userColumns = `id, username, password, franchise_name, franchisee_id, location, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.FranchiseName,
		&u.FranchiseeID, &u.Location, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting user %d: %w", id, err)
	}
	return u, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting user by username: %w", err)
	}
	return u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	createdAt := db.timestamp()
	err := db.conn.QueryRowContext(ctx, db.rebind(`
		INSERT INTO users (username, password, franchise_name, franchisee_id, location, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		user.Username, user.Password, user.FranchiseName, user.FranchiseeID, user.Location, createdAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			if conflictField(err, "username", "franchisee_id") == "franchisee_id" {
				return apperror.Conflict("user", "franchiseeId", user.FranchiseeID)
			}
			return apperror.Conflict("user", "username", user.Username)
		}
		return fmt.Errorf("sqlstore: creating user: %w", err)
	}
	user.CreatedAt = createdAt
	return nil
}
