package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/campushq/campus-console/internal/jobs"
)

// ViewRefresher replaces a user's cached grant view with store state.
type ViewRefresher interface {
	RefreshUser(ctx context.Context, userID int64) error
}

// GrantsRefreshJob reconciles local grant views after committed mutations.
type GrantsRefreshJob struct {
	Refresher ViewRefresher
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewGrantsRefreshJob wires dependencies for the refresh handler.
func NewGrantsRefreshJob(refresher ViewRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *GrantsRefreshJob {
	return &GrantsRefreshJob{Refresher: refresher, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeGrantsRefresh tasks.
func (j *GrantsRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Refresher == nil {
		return errors.New("grants refresh: handler not configured")
	}
	var payload GrantsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.UserID <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeGrantsRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Refresher.RefreshUser(ctx, payload.UserID); err != nil {
		if j.Logger != nil {
			j.Logger.Error("grants view refresh", slog.Any("error", err), slog.Int64("user", payload.UserID))
		}
		resultErr = err
		return err
	}
	if j.Logger != nil {
		j.Logger.Debug("grants view refreshed", slog.Int64("user", payload.UserID))
	}
	return nil
}
