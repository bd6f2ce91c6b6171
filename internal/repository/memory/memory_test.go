package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/repository"
	"github.com/sakif/jobboard/internal/repository/storagetest"
)

func TestStorageContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, opts storagetest.Options) repository.Storage {
		storeOpts := []Option{WithClock(opts.Now)}
		if opts.Refs != nil {
			storeOpts = append(storeOpts, WithReferenceGenerator(opts.Refs))
		}
		return New(storeOpts...)
	})
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	job := &model.Job{UserID: 1, Title: "Cook", Tags: []string{"kitchen"}}
	require.NoError(t, s.CreateJob(ctx, job))

	// Mutating the caller's value must not reach the store.
	job.Title = "changed"
	job.Tags[0] = "changed"

	got, err := s.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cook", got.Title)
	assert.Equal(t, []string{"kitchen"}, got.Tags)

	// Nor may mutating a returned value.
	got.Tags[0] = "mutated"
	again, err := s.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen"}, again.Tags)
}

func TestLegacyRecordWithoutStatusReadsAsSubmitted(t *testing.T) {
	ctx := context.Background()
	s := New()

	app := &model.Application{JobID: 1, FirstName: "Old"}
	require.NoError(t, s.CreateApplication(ctx, app))

	// Simulate a record loaded from an older export with no status.
	s.mu.Lock()
	s.applications[app.ID].Status = ""
	s.mu.Unlock()

	got, err := s.GetApplicationByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, got.Status)

	list, err := s.ListApplicationsByJob(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.StatusSubmitted, list[0].Status)
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListJobs(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.CreateJob(ctx, &model.Job{}), context.Canceled)
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j := &model.Job{UserID: 1, Title: "x"}
			if err := s.CreateJob(ctx, j); err == nil {
				ids <- j.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestTimestampsAreUTCMicroseconds(t *testing.T) {
	local := time.FixedZone("CST", -6*3600)
	s := New(WithClock(func() time.Time {
		return time.Date(2026, 1, 1, 8, 0, 0, 123456789, local)
	}))

	job := &model.Job{UserID: 1}
	require.NoError(t, s.CreateJob(context.Background(), job))
	assert.Equal(t, time.UTC, job.CreatedAt.Location())
	assert.Equal(t, 123456000, job.CreatedAt.Nanosecond())
}
