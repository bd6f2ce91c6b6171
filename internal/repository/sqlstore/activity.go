package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sakif/jobboard/internal/model"
)

func (db *DB) CreateActivity(ctx context.Context, activity *model.Activity) error {
	if activity.Details == nil {
		activity.Details = map[string]any{}
	}
	details, err := encodeJSON(activity.Details)
	if err != nil {
		return fmt.Errorf("sqlstore: creating activity: %w", err)
	}
	ts := db.timestamp()

	err = db.conn.QueryRowContext(ctx, db.rebind(`
		INSERT INTO activities (user_id, action, entity_type, entity_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		activity.UserID, activity.Action, activity.EntityType, activity.EntityID, details, ts,
	).Scan(&activity.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating activity: %w", err)
	}
	activity.Timestamp = ts
	return nil
}

func (db *DB) ListActivitiesByUser(ctx context.Context, userID int64) ([]model.Activity, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(`
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM activities
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing activities for user %d: %w", userID, err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0)
	for rows.Next() {
		var (
			a       model.Activity
			details []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID,
			&details, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning activity: %w", err)
		}
		a.Timestamp = a.Timestamp.UTC()
		a.Details = map[string]any{}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &a.Details); err != nil || a.Details == nil {
				a.Details = map[string]any{}
			}
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: listing activities for user %d: %w", userID, err)
	}
	return activities, nil
}
