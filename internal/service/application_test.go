package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/refid"
)

func TestSubmit_AssignsReferenceAndNotifies(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, 1, "Cook")

	app, err := f.apps.Submit(context.Background(), model.Application{
		JobID:       job.ID,
		ReferenceID: "SEV-1999-FORGE",
		Status:      model.StatusAccepted,
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		CoverLetter: strPtr(`I <b>love</b> cooking <script>x()</script>`),
	})
	require.NoError(t, err)

	assert.True(t, refid.Valid(app.ReferenceID))
	assert.NotEqual(t, "SEV-1999-FORGE", app.ReferenceID)
	assert.Equal(t, model.StatusSubmitted, app.Status, "applicants cannot choose their status")
	assert.Equal(t, "I love cooking", *app.CoverLetter)
	assert.Equal(t, []string{app.ReferenceID}, f.notifier.submitted)
}

func TestSubmit_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t, 1, "Cook")
	filled := f.createJob(t, 1, "Filled")
	status := model.JobStatusFilled
	_, err := f.jobs.Update(ctx, 1, filled.ID, model.JobPatch{Status: &status})
	require.NoError(t, err)

	badExp := model.Experience("lots")
	tests := []struct {
		name  string
		app   model.Application
		field string
	}{
		{"no job", model.Application{FirstName: "J", LastName: "D", Email: "j@example.com"}, "jobId"},
		{"missing job", model.Application{JobID: 404, FirstName: "J", LastName: "D", Email: "j@example.com"}, "jobId"},
		{"filled job", model.Application{JobID: filled.ID, FirstName: "J", LastName: "D", Email: "j@example.com"}, "jobId"},
		{"no first name", model.Application{JobID: job.ID, LastName: "D", Email: "j@example.com"}, "firstName"},
		{"bad email", model.Application{JobID: job.ID, FirstName: "J", LastName: "D", Email: "not-an-email"}, "email"},
		{"bad experience", model.Application{JobID: job.ID, FirstName: "J", LastName: "D", Email: "j@example.com", Experience: &badExp}, "experience"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.apps.Submit(ctx, tt.app)
			require.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
	assert.Empty(t, f.notifier.submitted)
}

func TestSubmit_SucceedsWhenEmailFails(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("ses throttled")
	job := f.createJob(t, 1, "Cook")

	app := f.submit(t, job.ID)
	assert.NotZero(t, app.ID)
}

func TestListForOwnerAndJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.createJob(t, 1, "Mine")
	theirs := f.createJob(t, 2, "Theirs")
	a1 := f.submit(t, mine.ID)
	f.submit(t, theirs.ID)

	apps, err := f.apps.ListForOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, a1.ID, apps[0].ID)

	none, err := f.apps.ListForOwner(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.apps.ListForJob(ctx, 1, theirs.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	byJob, err := f.apps.ListForJob(ctx, 1, mine.ID)
	require.NoError(t, err)
	assert.Len(t, byJob, 1)
}

func TestGet_OwnershipAndDeletedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t, 1, "Cook")
	app := f.submit(t, job.ID)

	_, _, err := f.apps.Get(ctx, 2, app.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, gotJob, err := f.apps.Get(ctx, 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ReferenceID, got.ReferenceID)
	assert.Equal(t, job.ID, gotJob.ID)

	require.NoError(t, f.jobs.Delete(ctx, 1, job.ID))
	_, _, err = f.apps.Get(ctx, 1, app.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t, 1, "Cook")
	app := f.submit(t, job.ID)

	_, err := f.apps.UpdateStatus(ctx, 1, app.ID, "hired")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.apps.UpdateStatus(ctx, 2, app.ID, model.StatusInterviewed)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := f.apps.UpdateStatus(ctx, 1, app.ID, model.StatusInterviewed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInterviewed, updated.Status)
	assert.Equal(t, app.ReferenceID, updated.ReferenceID)
	assert.Equal(t, []model.ApplicationStatus{model.StatusInterviewed}, f.notifier.changed)

	acts, err := f.acts.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ActionUpdatedApplicationStatus, acts[0].Action)
	assert.Equal(t, "submitted", acts[0].Details["from"])
	assert.Equal(t, "interviewed", acts[0].Details["to"])

	// Setting the same status again is a no-op: no email, no activity.
	_, err = f.apps.UpdateStatus(ctx, 1, app.ID, model.StatusInterviewed)
	require.NoError(t, err)
	assert.Len(t, f.notifier.changed, 1)
}

func TestResumeFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t, 1, "Cook")

	withResume, err := f.apps.Submit(ctx, model.Application{
		JobID: job.ID, FirstName: "J", LastName: "D", Email: "j@example.com",
		ResumeURL: strPtr("/uploads/resumes/cq1v2b3n4m5k6j7h8g9f.pdf"),
	})
	require.NoError(t, err)
	without := f.submit(t, job.ID)

	name, err := f.apps.ResumeFile(ctx, 1, withResume.ID)
	require.NoError(t, err)
	assert.Equal(t, "cq1v2b3n4m5k6j7h8g9f.pdf", name)

	_, err = f.apps.ResumeFile(ctx, 1, without.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
