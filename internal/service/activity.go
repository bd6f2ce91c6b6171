package service

import (
	"context"
	"log/slog"

	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/repository"
)

// ActivityService writes and reads the per-user audit feed.
type ActivityService struct {
	repo   repository.ActivityRepository
	logger *slog.Logger
}

func NewActivityService(repo repository.ActivityRepository, logger *slog.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

// Record appends an activity. A failed write is logged and swallowed: the
// operation being audited has already succeeded and must not be reported
// as failed.
func (s *ActivityService) Record(ctx context.Context, userID int64, action, entityType string, entityID int64, details map[string]any) {
	a := &model.Activity{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := s.repo.CreateActivity(ctx, a); err != nil {
		s.logger.Error("failed to record activity",
			slog.Int64("userID", userID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

// ListForUser returns the user's feed, newest first.
func (s *ActivityService) ListForUser(ctx context.Context, userID int64) ([]model.Activity, error) {
	return s.repo.ListActivitiesByUser(ctx, userID)
}
