// Package memory implements repository.Storage with plain maps.
//
// It is the default backend when no DATABASE_URL is configured and the
// reference the relational backend is tested against (see storagetest).
//
// CONCURRENCY:
// net/http serves every request on its own goroutine, so all maps sit behind
// one sync.RWMutex. Records are copied on the way in and on the way out;
// callers never hold a pointer into the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/refid"
	"github.com/sakif/jobboard/internal/repository"
)

var _ repository.Storage = (*Store)(nil)

// sequence hands out strictly increasing identifiers for one entity kind.
// Deleted identifiers are never reissued. Callers hold Store.mu.
type sequence struct {
	last int64
}

func (s *sequence) next() int64 {
	s.last++
	return s.last
}

// Store is an in-memory repository.Storage.
type Store struct {
	mu sync.RWMutex

	users        map[int64]*model.User
	jobs         map[int64]*model.Job
	applications map[int64]*model.Application
	activities   map[int64]*model.Activity

	userSeq        sequence
	jobSeq         sequence
	applicationSeq sequence
	activitySeq    sequence

	refs repository.ReferenceGenerator
	now  func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithReferenceGenerator replaces the default refid generator.
func WithReferenceGenerator(g repository.ReferenceGenerator) Option {
	return func(s *Store) { s.refs = g }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		users:        make(map[int64]*model.User),
		jobs:         make(map[int64]*model.Job),
		applications: make(map[int64]*model.Application),
		activities:   make(map[int64]*model.Activity),
		refs:         refid.New(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close is a no-op; it exists to satisfy repository.Storage.
func (s *Store) Close() error {
	return nil
}

// timestamp is UTC at microsecond precision, the resolution of a postgres
// timestamptz, so both backends hand back identical values.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// sortNewestFirst orders by t descending, then by id descending.
func sortNewestFirst[T any](items []T, key func(T) (time.Time, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

// ctxErr lets a cancelled request stop before touching the maps.
func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
