// Package jobs defines the background task types and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeGrantsRefresh replaces a user's local grant view with the
	// authoritative store state after a committed mutation.
	TaskTypeGrantsRefresh = "grants:refresh_view"
	// TaskTypeProfileWarmup pre-resolves access profiles for staff users so
	// the first grant screen of the day does not pay the resolution cost.
	TaskTypeProfileWarmup = "profiles:warmup"
	// TaskTypeGrantExpiry removes grants whose validity window has lapsed.
	TaskTypeGrantExpiry = "grants:expire_sweep"
)

// GrantsRefreshPayload identifies the user whose view must be refreshed.
type GrantsRefreshPayload struct {
	UserID int64 `json:"user_id"`
}

// NewGrantsRefreshTask constructs an Asynq task for a view refresh.
func NewGrantsRefreshTask(payload GrantsRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeGrantsRefresh, data), nil
}

// NewGrantExpiryTask constructs an Asynq task for an expiry sweep. The sweep
// carries no payload.
func NewGrantExpiryTask() *asynq.Task {
	return asynq.NewTask(TaskTypeGrantExpiry, nil)
}

// ProfileWarmupPayload scopes a warmup run. A zero TenantID warms every
// tenant.
type ProfileWarmupPayload struct {
	TenantID int64 `json:"tenant_id"`
}

// NewProfileWarmupTask constructs an Asynq task for a profile cache warmup.
func NewProfileWarmupTask(payload ProfileWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeProfileWarmup, data), nil
}
