package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
)

const applicationColumns = `id, job_id, reference_id, first_name, last_name, email, phone,
	address, city, zip, resume_url, experience, education, cover_letter,
	availability, shifts, start_date, status, submitted_at`

func scanApplication(row rowScanner) (*model.Application, error) {
	var (
		a                                 model.Application
		address, city, zip, resume, cover sql.NullString
		experience, education, status     sql.NullString
		availability, shifts              []byte
		startDate                         sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.JobID, &a.ReferenceID, &a.FirstName, &a.LastName,
		&a.Email, &a.Phone, &address, &city, &zip, &resume, &experience, &education,
		&cover, &availability, &shifts, &startDate, &status, &a.SubmittedAt); err != nil {
		return nil, err
	}
	a.Address = stringPtr(address)
	a.City = stringPtr(city)
	a.Zip = stringPtr(zip)
	a.ResumeURL = stringPtr(resume)
	a.CoverLetter = stringPtr(cover)
	a.Experience = typedPtr[model.Experience](experience)
	a.Education = typedPtr[model.Education](education)
	a.StartDate = timePtr(startDate)
	a.SubmittedAt = a.SubmittedAt.UTC()
	a.Shifts = decodeStrings(shifts)
	a.Status = model.ApplicationStatus(status.String)
	a.NormalizeStatus()

	if len(availability) > 0 && string(availability) != "null" {
		var av model.Availability
		if err := json.Unmarshal(availability, &av); err != nil {
			return nil, fmt.Errorf("decoding availability: %w", err)
		}
		a.Availability = &av
	}
	return &a, nil
}

func (db *DB) queryApplications(ctx context.Context, query string, args ...any) ([]model.Application, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (db *DB) ListApplications(ctx context.Context) ([]model.Application, error) {
	apps, err := db.queryApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing applications: %w", err)
	}
	return apps, nil
}

func (db *DB) GetApplicationByID(ctx context.Context, id int64) (*model.Application, error) {
	row := db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT `+applicationColumns+` FROM applications WHERE id = ?`), id)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("application", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting application %d: %w", id, err)
	}
	return a, nil
}

func (db *DB) ListApplicationsByJob(ctx context.Context, jobID int64) ([]model.Application, error) {
	apps, err := db.queryApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = ? ORDER BY submitted_at DESC, id DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing applications for job %d: %w", jobID, err)
	}
	return apps, nil
}

// ListApplicationsByOwner reads the owner's job IDs first and only touches
// the applications table when there is at least one.
func (db *DB) ListApplicationsByOwner(ctx context.Context, userID int64) ([]model.Application, error) {
	rows, err := db.conn.QueryContext(ctx,
		db.rebind(`SELECT id FROM job_listings WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing job ids for user %d: %w", userID, err)
	}
	var jobIDs []any
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlstore: scanning job id: %w", err)
		}
		jobIDs = append(jobIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: listing job ids for user %d: %w", userID, err)
	}
	if len(jobIDs) == 0 {
		return []model.Application{}, nil
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE job_id IN (` +
		placeholders(len(jobIDs)) + `) ORDER BY submitted_at DESC, id DESC`
	apps, err := db.queryApplications(ctx, query, jobIDs...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing applications for user %d: %w", userID, err)
	}
	return apps, nil
}

func (db *DB) CreateApplication(ctx context.Context, app *model.Application) error {
	// Nothing is written back to app until the insert succeeds.
	ref := app.ReferenceID
	if ref == "" {
		ref = db.refs.Generate()
	}
	shiftList := model.NormalizeStrings(app.Shifts)
	status := app.Status
	if status == "" {
		status = model.StatusSubmitted
	}

	shifts, err := encodeJSON(shiftList)
	if err != nil {
		return fmt.Errorf("sqlstore: creating application: %w", err)
	}
	availability, err := nullJSON(app.Availability)
	if err != nil {
		return fmt.Errorf("sqlstore: creating application: %w", err)
	}
	submittedAt := db.timestamp()

	var id int64
	err = db.conn.QueryRowContext(ctx, db.rebind(`
		INSERT INTO applications (job_id, reference_id, first_name, last_name, email, phone,
			address, city, zip, resume_url, experience, education, cover_letter,
			availability, shifts, start_date, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		app.JobID, ref, app.FirstName, app.LastName, app.Email, app.Phone,
		nullString(app.Address), nullString(app.City), nullString(app.Zip),
		nullString(app.ResumeURL), enumString(app.Experience), enumString(app.Education),
		nullString(app.CoverLetter), availability, shifts, nullTime(app.StartDate),
		string(status), submittedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("application", "referenceId", ref)
		}
		return fmt.Errorf("sqlstore: creating application: %w", err)
	}
	app.ID = id
	app.ReferenceID = ref
	app.Shifts = shiftList
	app.Status = status
	app.SubmittedAt = submittedAt
	return nil
}

// UpdateApplication writes only the columns named by the patch. An empty
// patch reads the current row instead.
func (db *DB) UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (*model.Application, error) {
	if patch.Empty() {
		return db.GetApplicationByID(ctx, id)
	}

	var set setClause
	if patch.FirstName != nil {
		set.add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set.add("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		set.add("email", *patch.Email)
	}
	if patch.Phone != nil {
		set.add("phone", *patch.Phone)
	}
	if patch.Address != nil {
		set.add("address", *patch.Address)
	}
	if patch.City != nil {
		set.add("city", *patch.City)
	}
	if patch.Zip != nil {
		set.add("zip", *patch.Zip)
	}
	if patch.ResumeURL != nil {
		set.add("resume_url", *patch.ResumeURL)
	}
	if patch.Experience != nil {
		set.add("experience", string(*patch.Experience))
	}
	if patch.Education != nil {
		set.add("education", string(*patch.Education))
	}
	if patch.CoverLetter != nil {
		set.add("cover_letter", *patch.CoverLetter)
	}
	if patch.Availability != nil {
		av, err := encodeJSON(patch.Availability)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: updating application %d: %w", id, err)
		}
		set.add("availability", av)
	}
	if patch.Shifts != nil {
		shifts, err := encodeJSON(model.NormalizeStrings(*patch.Shifts))
		if err != nil {
			return nil, fmt.Errorf("sqlstore: updating application %d: %w", id, err)
		}
		set.add("shifts", shifts)
	}
	if patch.StartDate != nil {
		set.add("start_date", patch.StartDate.UTC())
	}
	if patch.Status != nil {
		set.add("status", string(*patch.Status))
	}

	query := `UPDATE applications SET ` + set.String() + ` WHERE id = ? RETURNING ` + applicationColumns
	row := db.conn.QueryRowContext(ctx, db.rebind(query), append(set.args, id)...)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("application", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: updating application %d: %w", id, err)
	}
	return a, nil
}
