package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
)

const jobColumns = `id, user_id, title, location, description, requirements, type,
	department, pay_range, benefits, status, created_at, closing_date, tags`

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		j                             model.Job
		department, payRange, benefit sql.NullString
		closing                       sql.NullTime
		tags                          []byte
	)
	if err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Location, &j.Description,
		&j.Requirements, &j.Type, &department, &payRange, &benefit, &j.Status,
		&j.CreatedAt, &closing, &tags); err != nil {
		return nil, err
	}
	j.Department = stringPtr(department)
	j.PayRange = stringPtr(payRange)
	j.Benefits = stringPtr(benefit)
	j.ClosingDate = timePtr(closing)
	j.CreatedAt = j.CreatedAt.UTC()
	j.Tags = decodeStrings(tags)
	return &j, nil
}

func (db *DB) queryJobs(ctx context.Context, query string, args ...any) ([]model.Job, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (db *DB) ListJobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := db.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM job_listings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing jobs: %w", err)
	}
	return jobs, nil
}

func (db *DB) GetJobByID(ctx context.Context, id int64) (*model.Job, error) {
	row := db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT `+jobColumns+` FROM job_listings WHERE id = ?`), id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("job", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting job %d: %w", id, err)
	}
	return j, nil
}

func (db *DB) ListJobsByOwner(ctx context.Context, userID int64) ([]model.Job, error) {
	jobs, err := db.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM job_listings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing jobs for user %d: %w", userID, err)
	}
	return jobs, nil
}

func (db *DB) CreateJob(ctx context.Context, job *model.Job) error {
	if job.Status == "" {
		job.Status = model.JobStatusActive
	}
	job.Tags = model.NormalizeStrings(job.Tags)
	tags, err := encodeJSON(job.Tags)
	if err != nil {
		return fmt.Errorf("sqlstore: creating job: %w", err)
	}
	createdAt := db.timestamp()

	err = db.conn.QueryRowContext(ctx, db.rebind(`
		INSERT INTO job_listings (user_id, title, location, description, requirements, type,
			department, pay_range, benefits, status, created_at, closing_date, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		job.UserID, job.Title, job.Location, job.Description, job.Requirements, string(job.Type),
		nullString(job.Department), nullString(job.PayRange), nullString(job.Benefits),
		string(job.Status), createdAt, nullTime(job.ClosingDate), tags,
	).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating job: %w", err)
	}
	job.CreatedAt = createdAt
	return nil
}

// setClause collects "column = ?" assignments for a partial update.
type setClause struct {
	cols []string
	args []any
}

func (s *setClause) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setClause) String() string {
	return strings.Join(s.cols, ", ")
}

// UpdateJob writes only the columns named by the patch. An empty patch
// reads the current row instead.
func (db *DB) UpdateJob(ctx context.Context, id int64, patch model.JobPatch) (*model.Job, error) {
	if patch.Empty() {
		return db.GetJobByID(ctx, id)
	}

	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Location != nil {
		set.add("location", *patch.Location)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Requirements != nil {
		set.add("requirements", *patch.Requirements)
	}
	if patch.Type != nil {
		set.add("type", string(*patch.Type))
	}
	if patch.Department != nil {
		set.add("department", *patch.Department)
	}
	if patch.PayRange != nil {
		set.add("pay_range", *patch.PayRange)
	}
	if patch.Benefits != nil {
		set.add("benefits", *patch.Benefits)
	}
	if patch.Status != nil {
		set.add("status", string(*patch.Status))
	}
	if patch.ClosingDate != nil {
		set.add("closing_date", patch.ClosingDate.UTC())
	}
	if patch.Tags != nil {
		tags, err := encodeJSON(model.NormalizeStrings(*patch.Tags))
		if err != nil {
			return nil, fmt.Errorf("sqlstore: updating job %d: %w", id, err)
		}
		set.add("tags", tags)
	}

	query := `UPDATE job_listings SET ` + set.String() + ` WHERE id = ? RETURNING ` + jobColumns
	row := db.conn.QueryRowContext(ctx, db.rebind(query), append(set.args, id)...)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("job", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: updating job %d: %w", id, err)
	}
	return j, nil
}

func (db *DB) DeleteJob(ctx context.Context, id int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM job_listings WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("sqlstore: deleting job %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlstore: deleting job %d: %w", id, err)
	}
	return n > 0, nil
}
