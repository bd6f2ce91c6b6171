// Package storagetest is a behavioural test suite every repository.Storage
// backend must pass. Backends call Run from their own _test.go files:
//
//	func TestStorageContract(t *testing.T) {
//		storagetest.Run(t, func(t *testing.T, opts storagetest.Options) repository.Storage {
//			return memory.New(memory.WithClock(opts.Now))
//		})
//	}
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/refid"
	"github.com/sakif/jobboard/internal/repository"
)

// Options are passed to the Factory so the suite controls time and
// reference codes. A nil Refs means "use the backend's default".
type Options struct {
	Now  func() time.Time
	Refs repository.ReferenceGenerator
}

// Factory builds a fresh, empty backend for one subtest.
type Factory func(t *testing.T, opts Options) repository.Storage

// Clock is a fake clock that moves forward one second per reading, giving
// every created record a distinct timestamp.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// fixedRefs always returns the same code.
type fixedRefs string

func (f fixedRefs) Generate() string { return string(f) }

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newStorage(t *testing.T, factory Factory) repository.Storage {
	t.Helper()
	s := factory(t, Options{Now: NewClock(epoch).Now})
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func mustCreateUser(t *testing.T, s repository.Storage, username, franchiseeID string) *model.User {
	t.Helper()
	u := &model.User{
		Username:      username,
		Password:      "$2a$04$hash",
		FranchiseName: "Store " + username,
		FranchiseeID:  franchiseeID,
		Location:      "Dallas, TX",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustCreateJob(t *testing.T, s repository.Storage, userID int64, title string) *model.Job {
	t.Helper()
	j := &model.Job{
		UserID:       userID,
		Title:        title,
		Location:     "Dallas, TX",
		Description:  "Stock shelves and help customers",
		Requirements: "18+",
		Type:         model.JobTypePartTime,
	}
	require.NoError(t, s.CreateJob(context.Background(), j))
	return j
}

func mustCreateApplication(t *testing.T, s repository.Storage, jobID int64, first string) *model.Application {
	t.Helper()
	a := &model.Application{
		JobID:     jobID,
		FirstName: first,
		LastName:  "Doe",
		Email:     first + "@example.com",
		Phone:     "555-0100",
	}
	require.NoError(t, s.CreateApplication(context.Background(), a))
	return a
}

// Run executes the full suite against backends built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, factory) })
	t.Run("Jobs", func(t *testing.T) { testJobs(t, factory) })
	t.Run("Applications", func(t *testing.T) { testApplications(t, factory) })
	t.Run("Activities", func(t *testing.T) { testActivities(t, factory) })
	t.Run("Scenario", func(t *testing.T) { testScenario(t, factory) })
}

func testUsers(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("ids increase", func(t *testing.T) {
		s := newStorage(t, factory)
		a := mustCreateUser(t, s, "acme1", "F-1")
		b := mustCreateUser(t, s, "acme2", "F-2")
		assert.Greater(t, a.ID, int64(0))
		assert.Greater(t, b.ID, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("round trip", func(t *testing.T) {
		s := newStorage(t, factory)
		created := mustCreateUser(t, s, "acme1", "F-1")

		byID, err := s.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, byID)

		byName, err := s.GetUserByUsername(ctx, "acme1")
		require.NoError(t, err)
		assert.Equal(t, created, byName)
	})

	t.Run("username lookup is case sensitive", func(t *testing.T) {
		s := newStorage(t, factory)
		mustCreateUser(t, s, "acme1", "F-1")

		_, err := s.GetUserByUsername(ctx, "ACME1")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		s := newStorage(t, factory)
		_, err := s.GetUserByID(ctx, 999)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		s := newStorage(t, factory)
		mustCreateUser(t, s, "acme1", "F-1")

		err := s.CreateUser(ctx, &model.User{Username: "acme1", FranchiseeID: "F-2", Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("duplicate franchisee id conflicts", func(t *testing.T) {
		s := newStorage(t, factory)
		mustCreateUser(t, s, "acme1", "F-1")

		err := s.CreateUser(ctx, &model.User{Username: "acme2", FranchiseeID: "F-1", Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func testJobs(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("create applies defaults", func(t *testing.T) {
		s := newStorage(t, factory)
		j := mustCreateJob(t, s, 1, "Store Associate")

		assert.Equal(t, int64(1), j.ID)
		assert.Equal(t, model.JobStatusActive, j.Status)
		assert.NotNil(t, j.Tags)
		assert.Empty(t, j.Tags)
		assert.False(t, j.CreatedAt.IsZero())
	})

	t.Run("round trip keeps optional fields and tag order", func(t *testing.T) {
		s := newStorage(t, factory)
		closing := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
		j := &model.Job{
			UserID:       1,
			Title:        "Shift Lead",
			Location:     "Plano, TX",
			Description:  "Run the floor",
			Requirements: "2 years retail",
			Type:         model.JobTypeFullTime,
			Department:   strPtr("Operations"),
			PayRange:     strPtr("$16-$19/hr"),
			Benefits:     strPtr("Health, 401k"),
			ClosingDate:  &closing,
			Tags:         []string{"nights", "leadership", "food"},
		}
		require.NoError(t, s.CreateJob(ctx, j))

		got, err := s.GetJobByID(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, j, got)
	})

	t.Run("ids increase and are not reused after delete", func(t *testing.T) {
		s := newStorage(t, factory)
		a := mustCreateJob(t, s, 1, "A")
		b := mustCreateJob(t, s, 1, "B")
		ok, err := s.DeleteJob(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, ok)

		c := mustCreateJob(t, s, 1, "C")
		assert.Greater(t, b.ID, a.ID)
		assert.Greater(t, c.ID, b.ID)
	})

	t.Run("list all newest first", func(t *testing.T) {
		s := newStorage(t, factory)
		first := mustCreateJob(t, s, 1, "first")
		second := mustCreateJob(t, s, 2, "second")
		third := mustCreateJob(t, s, 1, "third")

		jobs, err := s.ListJobs(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 3)
		assert.Equal(t, []int64{third.ID, second.ID, first.ID}, jobIDs(jobs))
	})

	t.Run("list on empty store is empty not nil", func(t *testing.T) {
		s := newStorage(t, factory)
		jobs, err := s.ListJobs(ctx)
		require.NoError(t, err)
		assert.NotNil(t, jobs)
		assert.Empty(t, jobs)
	})

	t.Run("list by owner includes every status", func(t *testing.T) {
		s := newStorage(t, factory)
		mine := mustCreateJob(t, s, 1, "mine")
		mustCreateJob(t, s, 2, "theirs")
		closed := mustCreateJob(t, s, 1, "mine closed")
		status := model.JobStatusClosed
		_, err := s.UpdateJob(ctx, closed.ID, model.JobPatch{Status: &status})
		require.NoError(t, err)

		jobs, err := s.ListJobsByOwner(ctx, 1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{mine.ID, closed.ID}, jobIDs(jobs))
	})

	t.Run("partial update leaves other fields unchanged", func(t *testing.T) {
		s := newStorage(t, factory)
		j := mustCreateJob(t, s, 1, "Store Associate")

		archived := model.JobStatusArchived
		updated, err := s.UpdateJob(ctx, j.ID, model.JobPatch{Status: &archived})
		require.NoError(t, err)

		want := *j
		want.Status = model.JobStatusArchived
		assert.Equal(t, &want, updated)

		got, err := s.GetJobByID(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, &want, got)
	})

	t.Run("update several fields including tags", func(t *testing.T) {
		s := newStorage(t, factory)
		j := mustCreateJob(t, s, 1, "Cook")

		title := "Line Cook"
		tags := []string{"kitchen", "am"}
		updated, err := s.UpdateJob(ctx, j.ID, model.JobPatch{
			Title:    &title,
			PayRange: strPtr("$15/hr"),
			Tags:     &tags,
		})
		require.NoError(t, err)
		assert.Equal(t, "Line Cook", updated.Title)
		assert.Equal(t, "$15/hr", *updated.PayRange)
		assert.Equal(t, []string{"kitchen", "am"}, updated.Tags)
		assert.Equal(t, j.Description, updated.Description)
		assert.Equal(t, j.CreatedAt, updated.CreatedAt)
	})

	t.Run("empty patch returns current record", func(t *testing.T) {
		s := newStorage(t, factory)
		j := mustCreateJob(t, s, 1, "Cook")

		got, err := s.UpdateJob(ctx, j.ID, model.JobPatch{})
		require.NoError(t, err)
		assert.Equal(t, j, got)
	})

	t.Run("update missing job", func(t *testing.T) {
		s := newStorage(t, factory)
		status := model.JobStatusFilled
		got, err := s.UpdateJob(ctx, 42, model.JobPatch{Status: &status})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("delete then get is absent", func(t *testing.T) {
		s := newStorage(t, factory)
		j := mustCreateJob(t, s, 1, "Cook")

		ok, err := s.DeleteJob(ctx, j.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.GetJobByID(ctx, j.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("delete missing job returns false", func(t *testing.T) {
		s := newStorage(t, factory)
		ok, err := s.DeleteJob(ctx, 77)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func testApplications(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("create generates reference and defaults", func(t *testing.T) {
		s := newStorage(t, factory)
		a := mustCreateApplication(t, s, 1, "jane")

		assert.Equal(t, int64(1), a.ID)
		assert.True(t, refid.Valid(a.ReferenceID), "bad reference %q", a.ReferenceID)
		assert.Equal(t, model.StatusSubmitted, a.Status)
		assert.NotNil(t, a.Shifts)
		assert.Empty(t, a.Shifts)
		assert.False(t, a.SubmittedAt.IsZero())
	})

	t.Run("caller supplied reference is kept", func(t *testing.T) {
		s := newStorage(t, factory)
		a := &model.Application{JobID: 1, ReferenceID: "SEV-2026-ABCDE", FirstName: "x", LastName: "y", Email: "x@y.z", Phone: "1"}
		require.NoError(t, s.CreateApplication(ctx, a))
		assert.Equal(t, "SEV-2026-ABCDE", a.ReferenceID)
	})

	t.Run("duplicate reference conflicts", func(t *testing.T) {
		s := factory(t, Options{Now: NewClock(epoch).Now, Refs: fixedRefs("SEV-2026-SAME1")})
		t.Cleanup(func() { s.Close() })

		mustCreateApplication(t, s, 1, "first")
		second := &model.Application{JobID: 1, FirstName: "second", LastName: "x", Email: "s@x.y", Phone: "1"}
		err := s.CreateApplication(ctx, second)
		assert.ErrorIs(t, err, apperror.ErrConflict)

		// A rejected application keeps the caller's values; the code that
		// was never stored must not leak back.
		assert.Empty(t, second.ReferenceID)
		assert.Zero(t, second.ID)
		assert.True(t, second.SubmittedAt.IsZero())

		all, err := s.ListApplications(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("round trip keeps optional fields", func(t *testing.T) {
		s := newStorage(t, factory)
		exp := model.Experience3To5
		edu := model.EducationBachelor
		start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		a := &model.Application{
			JobID:        3,
			FirstName:    "Jane",
			LastName:     "Doe",
			Email:        "jane@example.com",
			Phone:        "555-0101",
			Address:      strPtr("1 Main St"),
			City:         strPtr("Dallas"),
			Zip:          strPtr("75001"),
			ResumeURL:    strPtr("/uploads/resumes/abc.pdf"),
			Experience:   &exp,
			Education:    &edu,
			CoverLetter:  strPtr("I like people."),
			Availability: &model.Availability{Weekday: true, Morning: true, Night: true},
			Shifts:       []string{"morning", "night"},
			StartDate:    &start,
		}
		require.NoError(t, s.CreateApplication(ctx, a))

		got, err := s.GetApplicationByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	})

	t.Run("list by job returns only that job", func(t *testing.T) {
		s := newStorage(t, factory)
		a1 := mustCreateApplication(t, s, 1, "a")
		mustCreateApplication(t, s, 2, "b")
		a3 := mustCreateApplication(t, s, 1, "c")

		apps, err := s.ListApplicationsByJob(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{a3.ID, a1.ID}, appIDs(apps))
		for _, a := range apps {
			assert.Equal(t, int64(1), a.JobID)
		}
	})

	t.Run("list all newest first", func(t *testing.T) {
		s := newStorage(t, factory)
		a1 := mustCreateApplication(t, s, 1, "a")
		a2 := mustCreateApplication(t, s, 2, "b")

		apps, err := s.ListApplications(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{a2.ID, a1.ID}, appIDs(apps))
	})

	t.Run("list by owner joins through owned jobs", func(t *testing.T) {
		s := newStorage(t, factory)
		owner := mustCreateUser(t, s, "owner", "F-1")
		other := mustCreateUser(t, s, "other", "F-2")
		j1 := mustCreateJob(t, s, owner.ID, "j1")
		j2 := mustCreateJob(t, s, owner.ID, "j2")
		j3 := mustCreateJob(t, s, other.ID, "j3")

		a1 := mustCreateApplication(t, s, j1.ID, "a1")
		a2 := mustCreateApplication(t, s, j2.ID, "a2")
		mustCreateApplication(t, s, j3.ID, "a3")

		apps, err := s.ListApplicationsByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{a1.ID, a2.ID}, appIDs(apps))
	})

	t.Run("list by owner with no jobs is empty", func(t *testing.T) {
		s := newStorage(t, factory)
		mustCreateApplication(t, s, 1, "orphan")

		apps, err := s.ListApplicationsByOwner(ctx, 12345)
		require.NoError(t, err)
		assert.NotNil(t, apps)
		assert.Empty(t, apps)
	})

	t.Run("status update leaves other fields unchanged", func(t *testing.T) {
		s := newStorage(t, factory)
		a := mustCreateApplication(t, s, 1, "jane")

		status := model.StatusInterviewed
		updated, err := s.UpdateApplication(ctx, a.ID, model.ApplicationPatch{Status: &status})
		require.NoError(t, err)

		want := *a
		want.Status = model.StatusInterviewed
		assert.Equal(t, &want, updated)
	})

	t.Run("any status string is accepted", func(t *testing.T) {
		s := newStorage(t, factory)
		a := mustCreateApplication(t, s, 1, "jane")

		status := model.ApplicationStatus("on_hold")
		updated, err := s.UpdateApplication(ctx, a.ID, model.ApplicationPatch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	})

	t.Run("update missing application", func(t *testing.T) {
		s := newStorage(t, factory)
		status := model.StatusRejected
		_, err := s.UpdateApplication(ctx, 9, model.ApplicationPatch{Status: &status})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("missing application", func(t *testing.T) {
		s := newStorage(t, factory)
		_, err := s.GetApplicationByID(ctx, 9)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func testActivities(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("create stamps id and time", func(t *testing.T) {
		s := newStorage(t, factory)
		a := &model.Activity{
			UserID:     1,
			Action:     model.ActionCreatedJob,
			EntityType: model.EntityJob,
			EntityID:   5,
			Details:    map[string]any{"title": "Cook"},
		}
		require.NoError(t, s.CreateActivity(ctx, a))
		assert.Equal(t, int64(1), a.ID)
		assert.False(t, a.Timestamp.IsZero())
	})

	t.Run("list by user newest first", func(t *testing.T) {
		s := newStorage(t, factory)
		var ids []int64
		for _, action := range []string{"a", "b", "c"} {
			act := &model.Activity{UserID: 1, Action: action, EntityType: model.EntityJob, EntityID: 1}
			require.NoError(t, s.CreateActivity(ctx, act))
			ids = append(ids, act.ID)
		}
		require.NoError(t, s.CreateActivity(ctx, &model.Activity{UserID: 2, Action: "x", EntityType: model.EntityJob}))

		got, err := s.ListActivitiesByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].Action, got[1].Action, got[2].Action})
		assert.Equal(t, ids[2], got[0].ID)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].Timestamp.After(got[i-1].Timestamp))
		}
	})

	t.Run("details survive storage", func(t *testing.T) {
		s := newStorage(t, factory)
		act := &model.Activity{
			UserID:     1,
			Action:     model.ActionUpdatedApplicationStatus,
			EntityType: model.EntityApplication,
			EntityID:   3,
			Details:    map[string]any{"from": "submitted", "to": "interviewed"},
		}
		require.NoError(t, s.CreateActivity(ctx, act))

		got, err := s.ListActivitiesByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "submitted", got[0].Details["from"])
		assert.Equal(t, "interviewed", got[0].Details["to"])
	})

	t.Run("nil details stored as empty map", func(t *testing.T) {
		s := newStorage(t, factory)
		require.NoError(t, s.CreateActivity(ctx, &model.Activity{UserID: 4, Action: "x", EntityType: model.EntityUser, EntityID: 4}))

		got, err := s.ListActivitiesByUser(ctx, 4)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.NotNil(t, got[0].Details)
	})
}

// testScenario walks the example flow end to end.
func testScenario(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := newStorage(t, factory)

	user := mustCreateUser(t, s, "acme1", "F-100")
	assert.Equal(t, int64(1), user.ID)

	job := mustCreateJob(t, s, user.ID, "Store Associate")
	assert.Equal(t, int64(1), job.ID)
	assert.Equal(t, model.JobStatusActive, job.Status)
	assert.Equal(t, []string{}, job.Tags)

	app := mustCreateApplication(t, s, job.ID, "Jane")
	assert.Equal(t, int64(1), app.ID)
	assert.Regexp(t, `^SEV-\d{4}-[A-Z0-9]{5}$`, app.ReferenceID)
	assert.Equal(t, model.StatusSubmitted, app.Status)

	status := model.StatusInterviewed
	updated, err := s.UpdateApplication(ctx, app.ID, model.ApplicationPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInterviewed, updated.Status)
	assert.Equal(t, app.ReferenceID, updated.ReferenceID)
	assert.Equal(t, app.FirstName, updated.FirstName)

	apps, err := s.ListApplicationsByJob(ctx, 1)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, updated, &apps[0])
}

func jobIDs(jobs []model.Job) []int64 {
	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return ids
}

func appIDs(apps []model.Application) []int64 {
	ids := make([]int64, len(apps))
	for i, a := range apps {
		ids[i] = a.ID
	}
	return ids
}
