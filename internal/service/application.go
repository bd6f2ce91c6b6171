package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/notify"
	"github.com/sakif/jobboard/internal/repository"
)

// ApplicationService accepts applications from the public and lets job
// owners review them.
type ApplicationService struct {
	apps       repository.ApplicationRepository
	jobs       *JobService
	activities *ActivityService
	notifier   notify.Notifier
	sanitizer  *Sanitizer
	logger     *slog.Logger
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	jobs *JobService,
	activities *ActivityService,
	notifier notify.Notifier,
	sanitizer *Sanitizer,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:       apps,
		jobs:       jobs,
		activities: activities,
		notifier:   notifier,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

// Submit stores a new application against an active listing and emails
// the applicant. Reference code, status and timestamp are always assigned
// by storage; values supplied by the caller are discarded.
func (s *ApplicationService) Submit(ctx context.Context, in model.Application) (*model.Application, error) {
	if in.JobID <= 0 {
		return nil, apperror.ValidationFailed("jobId", "jobId is required")
	}
	job, err := s.jobs.Get(ctx, in.JobID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ValidationFailed("jobId", "job does not exist")
		}
		return nil, fmt.Errorf("loading job: %w", err)
	}
	if job.Status != model.JobStatusActive {
		return nil, apperror.ValidationFailed("jobId", "this job is no longer accepting applications")
	}

	app := &model.Application{
		JobID:        job.ID,
		FirstName:    s.sanitizer.Plain(in.FirstName),
		LastName:     s.sanitizer.Plain(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		Phone:        s.sanitizer.Plain(in.Phone),
		Address:      s.sanitizer.plainPtr(in.Address),
		City:         s.sanitizer.plainPtr(in.City),
		Zip:          s.sanitizer.plainPtr(in.Zip),
		ResumeURL:    trimPtr(in.ResumeURL),
		Experience:   in.Experience,
		Education:    in.Education,
		CoverLetter:  s.sanitizer.plainPtr(in.CoverLetter),
		Availability: in.Availability,
		Shifts:       cleanTags(in.Shifts),
		StartDate:    in.StartDate,
	}
	if err := validateApplication(app); err != nil {
		return nil, err
	}

	if err := s.apps.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// A reference code collision; the applicant can simply retry.
			return nil, err
		}
		return nil, fmt.Errorf("creating application: %w", err)
	}

	s.logger.Info("application submitted",
		slog.Int64("applicationID", app.ID),
		slog.Int64("jobID", app.JobID),
		slog.String("referenceID", app.ReferenceID),
	)
	if err := s.notifier.ApplicationSubmitted(ctx, app, job); err != nil {
		s.logger.Error("failed to send submission email",
			slog.Int64("applicationID", app.ID),
			slog.String("error", err.Error()),
		)
	}
	return app, nil
}

// ListForOwner returns applications across every listing the user owns.
func (s *ApplicationService) ListForOwner(ctx context.Context, userID int64) ([]model.Application, error) {
	return s.apps.ListApplicationsByOwner(ctx, userID)
}

// ListForJob returns the applications to one listing the user owns.
func (s *ApplicationService) ListForJob(ctx context.Context, userID, jobID int64) ([]model.Application, error) {
	if _, err := s.jobs.GetOwned(ctx, userID, jobID); err != nil {
		return nil, err
	}
	return s.apps.ListApplicationsByJob(ctx, jobID)
}

// Get returns one application if the user owns its listing. An
// application whose listing has been deleted is visible to nobody.
func (s *ApplicationService) Get(ctx context.Context, userID, id int64) (*model.Application, *model.Job, error) {
	app, err := s.apps.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	job, err := s.jobs.GetOwned(ctx, userID, app.JobID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.Forbidden("you do not own this application's job listing")
		}
		return nil, nil, err
	}
	return app, job, nil
}

// UpdateStatus moves an application to a new review status and tells the
// applicant. Any known status may follow any other; the review screen
// decides which transitions it offers.
func (s *ApplicationService) UpdateStatus(ctx context.Context, userID, id int64, status model.ApplicationStatus) (*model.Application, error) {
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", status))
	}
	current, job, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := s.apps.UpdateApplication(ctx, id, model.ApplicationPatch{Status: &status})
	if err != nil {
		return nil, err
	}

	s.activities.Record(ctx, userID, model.ActionUpdatedApplicationStatus, model.EntityApplication, id,
		map[string]any{
			"from":        string(current.Status),
			"to":          string(updated.Status),
			"referenceId": updated.ReferenceID,
		})
	if err := s.notifier.StatusChanged(ctx, updated, job); err != nil {
		s.logger.Error("failed to send status email",
			slog.Int64("applicationID", id),
			slog.String("error", err.Error()),
		)
	}
	return updated, nil
}

// ResumeFile returns the stored resume file name for an application the
// user may see.
func (s *ApplicationService) ResumeFile(ctx context.Context, userID, id int64) (string, error) {
	app, _, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if app.ResumeURL == nil || *app.ResumeURL == "" {
		return "", apperror.NotFound("resume for application", id)
	}
	name := *app.ResumeURL
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name, nil
}

func validateApplication(a *model.Application) error {
	switch {
	case a.FirstName == "":
		return apperror.ValidationFailed("firstName", "first name is required")
	case a.LastName == "":
		return apperror.ValidationFailed("lastName", "last name is required")
	case len(a.FirstName) > MaxShortTextLength || len(a.LastName) > MaxShortTextLength:
		return apperror.ValidationFailed("name", "name is too long")
	case a.Email == "":
		return apperror.ValidationFailed("email", "email is required")
	case a.Experience != nil && !a.Experience.Valid():
		return apperror.ValidationFailed("experience", fmt.Sprintf("unknown experience %q", *a.Experience))
	case a.Education != nil && !a.Education.Valid():
		return apperror.ValidationFailed("education", fmt.Sprintf("unknown education %q", *a.Education))
	case a.CoverLetter != nil && len(*a.CoverLetter) > MaxCoverLetterLength:
		return apperror.ValidationFailed("coverLetter", fmt.Sprintf("cover letter must be %d characters or less", MaxCoverLetterLength))
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return apperror.ValidationFailed("email", "email is not a valid address")
	}
	return nil
}
