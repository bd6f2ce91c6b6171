package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/repository"
)

// JobService manages listings. Anyone may read active listings; only the
// owning franchisee may change or remove one.
type JobService struct {
	jobs       repository.JobRepository
	activities *ActivityService
	sanitizer  *Sanitizer
	logger     *slog.Logger
}

func NewJobService(jobs repository.JobRepository, activities *ActivityService, sanitizer *Sanitizer, logger *slog.Logger) *JobService {
	return &JobService{jobs: jobs, activities: activities, sanitizer: sanitizer, logger: logger}
}

// ListPublic returns active listings, newest first.
func (s *JobService) ListPublic(ctx context.Context) ([]model.Job, error) {
	all, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	active := make([]model.Job, 0, len(all))
	for _, j := range all {
		if j.Status == model.JobStatusActive {
			active = append(active, j)
		}
	}
	return active, nil
}

// ListAll returns every listing regardless of status.
func (s *JobService) ListAll(ctx context.Context) ([]model.Job, error) {
	return s.jobs.ListJobs(ctx)
}

// Get returns a listing in any status.
func (s *JobService) Get(ctx context.Context, id int64) (*model.Job, error) {
	return s.jobs.GetJobByID(ctx, id)
}

// GetPublic returns an active listing. Filled, closed and archived
// listings read as not found to the public.
func (s *JobService) GetPublic(ctx context.Context, id int64) (*model.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusActive {
		return nil, apperror.NotFound("job", id)
	}
	return job, nil
}

// ListMine returns the user's listings in every status.
func (s *JobService) ListMine(ctx context.Context, userID int64) ([]model.Job, error) {
	return s.jobs.ListJobsByOwner(ctx, userID)
}

// GetOwned returns the listing if userID owns it. A listing owned by
// someone else is apperror.ErrForbidden.
func (s *JobService) GetOwned(ctx context.Context, userID, id int64) (*model.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, apperror.Forbidden("you do not own this job listing")
	}
	return job, nil
}

// Create validates, sanitizes and stores a listing owned by userID.
// Any ID, owner or timestamp on the input is ignored.
func (s *JobService) Create(ctx context.Context, userID int64, in model.Job) (*model.Job, error) {
	job := &model.Job{
		UserID:       userID,
		Title:        s.sanitizer.Plain(in.Title),
		Location:     s.sanitizer.Plain(in.Location),
		Description:  s.sanitizer.Rich(in.Description),
		Requirements: s.sanitizer.Rich(in.Requirements),
		Type:         in.Type,
		Department:   s.sanitizer.plainPtr(in.Department),
		PayRange:     s.sanitizer.plainPtr(in.PayRange),
		Benefits:     s.sanitizer.richPtr(in.Benefits),
		Status:       in.Status,
		ClosingDate:  in.ClosingDate,
		Tags:         cleanTags(in.Tags),
	}
	if job.Status == "" {
		job.Status = model.JobStatusActive
	}
	if err := validateJob(job); err != nil {
		return nil, err
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		s.logger.Error("failed to create job",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating job: %w", err)
	}

	s.logger.Info("job created", slog.Int64("jobID", job.ID), slog.Int64("userID", userID))
	s.activities.Record(ctx, userID, model.ActionCreatedJob, model.EntityJob, job.ID,
		map[string]any{"title": job.Title})
	return job, nil
}

// Update applies a partial update to a listing the user owns.
func (s *JobService) Update(ctx context.Context, userID, id int64, patch model.JobPatch) (*model.Job, error) {
	current, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch.Title = s.sanitizer.plainPtr(patch.Title)
	patch.Location = s.sanitizer.plainPtr(patch.Location)
	patch.Description = s.sanitizer.richPtr(patch.Description)
	patch.Requirements = s.sanitizer.richPtr(patch.Requirements)
	patch.Department = s.sanitizer.plainPtr(patch.Department)
	patch.PayRange = s.sanitizer.plainPtr(patch.PayRange)
	patch.Benefits = s.sanitizer.richPtr(patch.Benefits)
	if patch.Tags != nil {
		tags := cleanTags(*patch.Tags)
		patch.Tags = &tags
	}

	// Validate the merged result so a patch cannot, say, blank the title.
	merged := *current
	patch.Apply(&merged)
	if err := validateJob(&merged); err != nil {
		return nil, err
	}

	updated, err := s.jobs.UpdateJob(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.activities.Record(ctx, userID, model.ActionUpdatedJob, model.EntityJob, id,
		map[string]any{"title": updated.Title, "fields": jobPatchFields(patch)})
	return updated, nil
}

// Delete removes a listing the user owns. Its applications are kept.
func (s *JobService) Delete(ctx context.Context, userID, id int64) error {
	job, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	removed, err := s.jobs.DeleteJob(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}
	if !removed {
		return apperror.NotFound("job", id)
	}

	s.logger.Info("job deleted", slog.Int64("jobID", id), slog.Int64("userID", userID))
	s.activities.Record(ctx, userID, model.ActionDeletedJob, model.EntityJob, id,
		map[string]any{"title": job.Title})
	return nil
}

func validateJob(j *model.Job) error {
	switch {
	case j.Title == "":
		return apperror.ValidationFailed("title", "title is required")
	case len(j.Title) > MaxTitleLength:
		return apperror.ValidationFailed("title", fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	case j.Location == "":
		return apperror.ValidationFailed("location", "location is required")
	case len(j.Location) > MaxShortTextLength:
		return apperror.ValidationFailed("location", fmt.Sprintf("location must be %d characters or less", MaxShortTextLength))
	case len(j.Description) > MaxLongTextLength:
		return apperror.ValidationFailed("description", "description is too long")
	case len(j.Requirements) > MaxLongTextLength:
		return apperror.ValidationFailed("requirements", "requirements are too long")
	case !j.Type.Valid():
		return apperror.ValidationFailed("type", fmt.Sprintf("unknown job type %q", j.Type))
	case !j.Status.Valid():
		return apperror.ValidationFailed("status", fmt.Sprintf("unknown job status %q", j.Status))
	case len(j.Tags) > MaxTags:
		return apperror.ValidationFailed("tags", fmt.Sprintf("at most %d tags", MaxTags))
	}
	return nil
}

// jobPatchFields names the fields a patch touches, for the activity feed.
func jobPatchFields(p model.JobPatch) []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.Title != nil, "title")
	add(p.Location != nil, "location")
	add(p.Description != nil, "description")
	add(p.Requirements != nil, "requirements")
	add(p.Type != nil, "type")
	add(p.Department != nil, "department")
	add(p.PayRange != nil, "payRange")
	add(p.Benefits != nil, "benefits")
	add(p.Status != nil, "status")
	add(p.ClosingDate != nil, "closingDate")
	add(p.Tags != nil, "tags")
	return fields
}
