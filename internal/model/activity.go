package model

import "time"

// Action codes written by the service layer.
const (
	ActionRegistered               = "registered"
	ActionCreatedJob               = "created_job"
	ActionUpdatedJob               = "updated_job"
	ActionDeletedJob               = "deleted_job"
	ActionUpdatedApplicationStatus = "updated_application_status"
)

// Entity types referenced by activities.
const (
	EntityUser        = "user"
	EntityJob         = "job"
	EntityApplication = "application"
)

// Activity is an append-only audit entry for something a User did.
// EntityID and anything inside Details are informational only.
type Activity struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   int64          `json:"entityId"`
	Details    map[string]any `json:"details"`
	Timestamp  time.Time      `json:"timestamp"`
}
