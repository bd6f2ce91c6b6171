package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/auth"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/repository"
	"github.com/sakif/jobboard/internal/repository/memory"
)

// =========================================================================
// FAKES
// =========================================================================

// fakeNotifier records what would have been emailed.
type fakeNotifier struct {
	mu        sync.Mutex
	submitted []string
	changed   []model.ApplicationStatus
	err       error
}

func (f *fakeNotifier) ApplicationSubmitted(_ context.Context, app *model.Application, _ *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, app.ReferenceID)
	return f.err
}

func (f *fakeNotifier) StatusChanged(_ context.Context, app *model.Application, _ *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, app.Status)
	return f.err
}

// brokenActivities fails every write.
type brokenActivities struct{}

func (brokenActivities) CreateActivity(context.Context, *model.Activity) error {
	return errors.New("activities table is locked")
}

func (brokenActivities) ListActivitiesByUser(context.Context, int64) ([]model.Activity, error) {
	return nil, errors.New("activities table is locked")
}

// =========================================================================
// FIXTURE
// =========================================================================

type fixture struct {
	store    repository.Storage
	notifier *fakeNotifier
	auth     *AuthService
	jobs     *JobService
	apps     *ApplicationService
	acts     *ActivityService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newFixture wires every service over a fresh memory.Store. Pass an
// ActivityRepository to replace the store's own.
func newFixture(t *testing.T, activities ...repository.ActivityRepository) *fixture {
	t.Helper()
	store := memory.New()
	var actRepo repository.ActivityRepository = store
	if len(activities) > 0 {
		actRepo = activities[0]
	}

	logger := testLogger()
	notifier := &fakeNotifier{}
	sanitizer := NewSanitizer()
	acts := NewActivityService(actRepo, logger)
	jobs := NewJobService(store, acts, sanitizer, logger)

	return &fixture{
		store:    store,
		notifier: notifier,
		auth:     NewAuthService(store, auth.NewPasswordServiceWithCost(4), acts, logger),
		jobs:     jobs,
		apps:     NewApplicationService(store, jobs, acts, notifier, sanitizer, logger),
		acts:     acts,
	}
}

func (f *fixture) register(t *testing.T, username, franchiseeID string) *model.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{
		Username:      username,
		Password:      "password123",
		FranchiseName: "Store " + username,
		FranchiseeID:  franchiseeID,
		Location:      "Dallas, TX",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) createJob(t *testing.T, userID int64, title string) *model.Job {
	t.Helper()
	j, err := f.jobs.Create(context.Background(), userID, model.Job{
		Title:    title,
		Location: "Dallas, TX",
		Type:     model.JobTypePartTime,
	})
	require.NoError(t, err)
	return j
}

func (f *fixture) submit(t *testing.T, jobID int64) *model.Application {
	t.Helper()
	a, err := f.apps.Submit(context.Background(), model.Application{
		JobID:     jobID,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "555-0100",
	})
	require.NoError(t, err)
	return a
}
