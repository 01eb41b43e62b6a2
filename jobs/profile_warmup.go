package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/campushq/campus-console/internal/jobs"
	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/tenants"
	"github.com/campushq/campus-console/internal/users"
)

const warmupPageSize = 500

// StaffLister pages through a tenant's users.
type StaffLister interface {
	List(ctx context.Context, f users.Filter) ([]users.User, int, error)
}

// TenantLister enumerates tenants for a full warmup.
type TenantLister interface {
	List(ctx context.Context) ([]tenants.Tenant, error)
}

// ProfileResolver resolves and caches a user's access profile.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID int64) (*profiles.AccessProfile, error)
}

// ProfileWarmupJob pre-resolves access profiles for active staff so grant
// screens hit a warm cache.
type ProfileWarmupJob struct {
	Users    StaffLister
	Tenants  TenantLister
	Profiles ProfileResolver
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewProfileWarmupJob wires dependencies for the warmup handler.
func NewProfileWarmupJob(userRepo StaffLister, tenantRepo TenantLister, profileSvc ProfileResolver, logger *slog.Logger, metrics *jobmetrics.Metrics) *ProfileWarmupJob {
	return &ProfileWarmupJob{
		Users:    userRepo,
		Tenants:  tenantRepo,
		Profiles: profileSvc,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// Handle processes TaskTypeProfileWarmup tasks.
func (j *ProfileWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Users == nil || j.Profiles == nil {
		return errors.New("profile warmup: handler not configured")
	}
	var payload ProfileWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeProfileWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	tenantIDs := []int64{payload.TenantID}
	if payload.TenantID <= 0 {
		if j.Tenants == nil {
			return asynq.SkipRetry
		}
		list, err := j.Tenants.List(ctx)
		if err != nil {
			resultErr = err
			return err
		}
		tenantIDs = tenantIDs[:0]
		for _, tn := range list {
			tenantIDs = append(tenantIDs, tn.ID)
		}
	}

	staff := users.RoleStaff
	active := true
	warmed := 0
	for _, tenantID := range tenantIDs {
		for page := 1; ; page++ {
			list, total, err := j.Users.List(ctx, users.Filter{
				TenantID: tenantID, Role: &staff, Active: &active,
				Page: page, PageSize: warmupPageSize,
			})
			if err != nil {
				resultErr = err
				return err
			}
			for _, u := range list {
				if u.AccessProfileCode == nil {
					continue
				}
				if _, err := j.Profiles.Resolve(ctx, u.ID); err != nil {
					if j.Logger != nil {
						j.Logger.Warn("profile warmup",
							slog.Any("error", err), slog.Int64("user", u.ID), slog.Int64("tenant", tenantID))
					}
					continue
				}
				warmed++
			}
			if len(list) == 0 || page*warmupPageSize >= total {
				break
			}
		}
	}
	if j.Logger != nil {
		j.Logger.Info("profile warmup finished", slog.Int("warmed", warmed), slog.Int("tenants", len(tenantIDs)))
	}
	return nil
}
