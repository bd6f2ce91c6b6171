package memory

import (
	"context"

	"github.com/sakif/jobboard/internal/model"
)

// CreateActivity appends an audit entry. Details are stored as given.
func (s *Store) CreateActivity(ctx context.Context, activity *model.Activity) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	activity.ID = s.activitySeq.next()
	activity.Timestamp = s.timestamp()
	if activity.Details == nil {
		activity.Details = map[string]any{}
	}
	s.activities[activity.ID] = cloneActivity(activity)
	return nil
}

func (s *Store) ListActivitiesByUser(ctx context.Context, userID int64) ([]model.Activity, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Activity, 0)
	for _, a := range s.activities {
		if a.UserID == userID {
			out = append(out, *cloneActivity(a))
		}
	}
	sortNewestFirst(out, activityKey)
	return out, nil
}
