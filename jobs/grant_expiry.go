package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/campushq/campus-console/internal/jobs"
)

// ExpiryStore deletes lapsed grants and reports the affected users.
type ExpiryStore interface {
	DeleteExpired(ctx context.Context) ([]int64, error)
}

// RefreshEnqueuer schedules view refreshes for users touched by a sweep.
type RefreshEnqueuer interface {
	EnqueueGrantsRefresh(ctx context.Context, userID int64) error
}

// GrantExpiryJob sweeps grants past their valid_until and queues a view
// refresh for every user that lost one.
type GrantExpiryJob struct {
	Store    ExpiryStore
	Enqueuer RefreshEnqueuer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewGrantExpiryJob wires dependencies for the sweep handler.
func NewGrantExpiryJob(store ExpiryStore, enqueuer RefreshEnqueuer, logger *slog.Logger, metrics *jobmetrics.Metrics) *GrantExpiryJob {
	return &GrantExpiryJob{Store: store, Enqueuer: enqueuer, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeGrantExpiry tasks.
func (j *GrantExpiryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("grant expiry: handler not configured")
	}

	tracker := j.Metrics.Track(TaskTypeGrantExpiry)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	userIDs, err := j.Store.DeleteExpired(ctx)
	if err != nil {
		resultErr = err
		return err
	}
	for _, userID := range userIDs {
		if j.Enqueuer == nil {
			break
		}
		if err := j.Enqueuer.EnqueueGrantsRefresh(ctx, userID); err != nil && j.Logger != nil {
			j.Logger.Warn("enqueue refresh after expiry", slog.Any("error", err), slog.Int64("user", userID))
		}
	}
	if j.Logger != nil {
		j.Logger.Info("grant expiry sweep finished", slog.Int("users", len(userIDs)))
	}
	return nil
}
