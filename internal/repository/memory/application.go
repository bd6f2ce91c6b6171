package memory

import (
	"context"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
)

func (s *Store) ListApplications(ctx context.Context) ([]model.Application, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]model.Application, 0, len(s.applications))
	for _, a := range s.applications {
		apps = append(apps, *cloneApplication(a))
	}
	sortNewestFirst(apps, applicationKey)
	return apps, nil
}

func (s *Store) GetApplicationByID(ctx context.Context, id int64) (*model.Application, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.applications[id]
	if !ok {
		return nil, apperror.NotFound("application", id)
	}
	return cloneApplication(a), nil
}

func (s *Store) ListApplicationsByJob(ctx context.Context, jobID int64) ([]model.Application, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.applicationsForJobsLocked(map[int64]bool{jobID: true}), nil
}

func (s *Store) ListApplicationsByOwner(ctx context.Context, userID int64) ([]model.Application, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make(map[int64]bool)
	for _, j := range s.jobs {
		if j.UserID == userID {
			owned[j.ID] = true
		}
	}
	if len(owned) == 0 {
		return []model.Application{}, nil
	}
	return s.applicationsForJobsLocked(owned), nil
}

func (s *Store) applicationsForJobsLocked(jobIDs map[int64]bool) []model.Application {
	apps := make([]model.Application, 0)
	for _, a := range s.applications {
		if jobIDs[a.JobID] {
			apps = append(apps, *cloneApplication(a))
		}
	}
	sortNewestFirst(apps, applicationKey)
	return apps
}

// CreateApplication rejects a caller-supplied or generated reference code
// that is already in use, as the UNIQUE column does in sqlstore.
func (s *Store) CreateApplication(ctx context.Context, app *model.Application) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := app.ReferenceID
	if ref == "" {
		ref = s.refs.Generate()
	}
	for _, a := range s.applications {
		if a.ReferenceID == ref {
			return apperror.Conflict("application", "referenceId", ref)
		}
	}

	app.ReferenceID = ref
	app.ID = s.applicationSeq.next()
	app.SubmittedAt = s.timestamp()
	app.Shifts = model.NormalizeStrings(app.Shifts)
	app.NormalizeStatus()

	s.applications[app.ID] = cloneApplication(app)
	return nil
}

func (s *Store) UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (*model.Application, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.applications[id]
	if !ok {
		return nil, apperror.NotFound("application", id)
	}

	merged := cloneApplication(existing)
	patch.Apply(merged)
	merged.NormalizeStatus()
	s.applications[id] = merged
	return cloneApplication(merged), nil
}
