// Package repository declares the storage capabilities the rest of the
// application depends on.
//
// Two backends implement Storage:
//
//	memory.Store   maps in process memory, for development and tests
//	sqlstore.DB    database/sql over postgres (lib/pq) or sqlite
//
// The composition root (server.New) builds one and hands it to the services.
// Nothing else imports a concrete backend.
//
// Conventions shared by every implementation:
//   - GetByID and Update return apperror.ErrNotFound for a missing record.
//   - List methods return a non-nil, possibly empty slice, newest first
//     (ties broken by higher ID first).
//   - Create fills in ID and timestamps on the value it is given.
//   - No method checks that a referenced user or job exists.
package repository

import (
	"context"

	"github.com/sakif/jobboard/internal/model"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	// GetUserByUsername is an exact, case-sensitive match.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// CreateUser returns apperror.ErrConflict when the username or
	// franchisee ID is taken.
	CreateUser(ctx context.Context, user *model.User) error
}

type JobRepository interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	GetJobByID(ctx context.Context, id int64) (*model.Job, error)
	ListJobsByOwner(ctx context.Context, userID int64) ([]model.Job, error)
	// CreateJob stamps CreatedAt, defaults Status to active and
	// replaces nil Tags with an empty slice.
	CreateJob(ctx context.Context, job *model.Job) error
	UpdateJob(ctx context.Context, id int64, patch model.JobPatch) (*model.Job, error)
	// DeleteJob reports whether a record existed to remove.
	DeleteJob(ctx context.Context, id int64) (bool, error)
}

type ApplicationRepository interface {
	ListApplications(ctx context.Context) ([]model.Application, error)
	GetApplicationByID(ctx context.Context, id int64) (*model.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID int64) ([]model.Application, error)
	// ListApplicationsByOwner joins through the jobs the user owns.
	// A user with no jobs gets an empty slice without the application
	// store being read.
	ListApplicationsByOwner(ctx context.Context, userID int64) ([]model.Application, error)
	// CreateApplication generates a reference code when none is given,
	// stamps SubmittedAt, defaults Status to submitted and replaces nil
	// Shifts with an empty slice.
	CreateApplication(ctx context.Context, app *model.Application) error
	UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (*model.Application, error)
}

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *model.Activity) error
	// ListActivitiesByUser is ordered by Timestamp, newest first.
	ListActivitiesByUser(ctx context.Context, userID int64) ([]model.Activity, error)
}

// Storage is the facade consumed by the service layer.
type Storage interface {
	UserRepository
	JobRepository
	ApplicationRepository
	ActivityRepository
	Close() error
}

// ReferenceGenerator produces application tracking codes (see package refid).
type ReferenceGenerator interface {
	Generate() string
}
