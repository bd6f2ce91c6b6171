package memory

import (
	"context"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
)

func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, *cloneJob(j))
	}
	sortNewestFirst(jobs, jobKey)
	return jobs, nil
}

func (s *Store) GetJobByID(ctx context.Context, id int64) (*model.Job, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, apperror.NotFound("job", id)
	}
	return cloneJob(j), nil
}

// ListJobsByOwner returns every status, not just active listings.
func (s *Store) ListJobsByOwner(ctx context.Context, userID int64) ([]model.Job, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.jobsByOwnerLocked(userID), nil
}

func (s *Store) jobsByOwnerLocked(userID int64) []model.Job {
	jobs := make([]model.Job, 0)
	for _, j := range s.jobs {
		if j.UserID == userID {
			jobs = append(jobs, *cloneJob(j))
		}
	}
	sortNewestFirst(jobs, jobKey)
	return jobs
}

func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	job.ID = s.jobSeq.next()
	job.CreatedAt = s.timestamp()
	if job.Status == "" {
		job.Status = model.JobStatusActive
	}
	job.Tags = model.NormalizeStrings(job.Tags)

	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *Store) UpdateJob(ctx context.Context, id int64, patch model.JobPatch) (*model.Job, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[id]
	if !ok {
		return nil, apperror.NotFound("job", id)
	}

	merged := cloneJob(existing)
	patch.Apply(merged)
	s.jobs[id] = merged
	return cloneJob(merged), nil
}

func (s *Store) DeleteJob(ctx context.Context, id int64) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false, nil
	}
	delete(s.jobs, id)
	return true, nil
}
