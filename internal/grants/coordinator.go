package grants

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/campushq/campus-console/internal/permission"
)

// RemoteStore is the boundary the coordinator mutates through.
type RemoteStore interface {
	GetUserGrants(ctx context.Context, userID int64) ([]permission.Grant, error)
	UpsertGrants(ctx context.Context, userID int64, moduleIDs []int64, perms permission.Set, assignmentType permission.AssignmentType, assignedBy int64) (int, error)
	DeleteGrant(ctx context.Context, userID, moduleID int64) error
	UpdateGrantPermissions(ctx context.Context, userID, moduleID int64, perms permission.Set) error
}

// RefreshEnqueuer hands the post-commit authoritative refetch to a
// background queue. Optional: without one the coordinator refetches inline.
type RefreshEnqueuer interface {
	EnqueueGrantsRefresh(ctx context.Context, userID int64) error
}

// OutcomeRecorder counts mutation outcomes for monitoring.
type OutcomeRecorder interface {
	MutationOutcome(operation, outcome string)
}

// Coordinator owns the per-user local view of grants and applies mutations
// with optimistic local effect: snapshot, speculative apply, remote call,
// then reconcile or rollback. It is the sole writer of the view; each
// mutation replaces the view wholesale so concurrent readers always see a
// consistent snapshot.
type Coordinator struct {
	store    RemoteStore
	enqueuer RefreshEnqueuer
	metrics  OutcomeRecorder
	logger   *slog.Logger

	mu sync.Mutex
	// versions stamps every view replacement. Reads record the version
	// before fetching and discard their result if it moved, so a slow read
	// can never install pre-mutation state over a newer view.
	views    map[int64]View
	versions map[int64]uint64
	users    map[int64]*userEntry
}

type userEntry struct {
	mu sync.Mutex
	// cancelRefresh aborts the in-flight background refetch of this user's
	// view. Cancelling is fire-and-forget: the fetch may still complete
	// remotely, but its result is discarded.
	cancelRefresh context.CancelFunc
}

// NewCoordinator constructs a Coordinator. enqueuer and metrics may be nil.
func NewCoordinator(store RemoteStore, enqueuer RefreshEnqueuer, metrics OutcomeRecorder, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		enqueuer: enqueuer,
		metrics:  metrics,
		logger:   logger,
		views:    make(map[int64]View),
		versions: make(map[int64]uint64),
		users:    make(map[int64]*userEntry),
	}
}

func (c *Coordinator) entry(userID int64) *userEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.users[userID]
	if !ok {
		e = &userEntry{}
		c.users[userID] = e
	}
	return e
}

func (c *Coordinator) view(userID int64) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[userID]
	return v, ok
}

// HasView reports whether the user's view has been loaded in this process.
func (c *Coordinator) HasView(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.views[userID]
	return ok
}

func (c *Coordinator) replaceView(userID int64, v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[userID] = v
	c.versions[userID]++
}

func (c *Coordinator) viewVersion(userID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[userID]
}

// installFetched stores a fetched view unless the view moved since the
// fetch started, in which case the fetched result is stale and dropped.
func (c *Coordinator) installFetched(userID int64, started uint64, v View) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[userID] != started {
		return false
	}
	c.views[userID] = v
	c.versions[userID]++
	return true
}

// cancelInflight aborts a pending background refetch so a stale result
// cannot overwrite the upcoming speculative apply. Callers hold e.mu.
func (c *Coordinator) cancelInflight(e *userEntry) {
	if e.cancelRefresh != nil {
		e.cancelRefresh()
		e.cancelRefresh = nil
	}
}

// Grants returns the user's grant view, loading it from the store on first
// access.
func (c *Coordinator) Grants(ctx context.Context, userID int64) (View, error) {
	if v, ok := c.view(userID); ok {
		return v.Clone(), nil
	}
	return c.refresh(ctx, userID)
}

// UserStats returns the stats block of the user's view.
func (c *Coordinator) UserStats(ctx context.Context, userID int64) (Stats, error) {
	v, err := c.Grants(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return v.Stats, nil
}

// Assign applies expanded grant intents. The local view reflects the grants
// immediately; the store outcome decides whether that sticks. Partial
// acceptance across a bulk upsert is reported, not flattened into
// succeeded-or-failed.
func (c *Coordinator) Assign(ctx context.Context, userID, actorID int64, intents []Intent) (MutationResult, error) {
	if len(intents) == 0 {
		return MutationResult{State: StateIdle}, nil
	}

	e := c.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	c.cancelInflight(e)
	snapshot, err := c.snapshotLocked(ctx, userID)
	if err != nil {
		return MutationResult{State: StateRolledBack}, err
	}

	speculative := snapshot.Clone()
	for _, intent := range intents {
		for _, m := range intent.Modules {
			speculative.Grants = upsertLocal(speculative.Grants, permission.Grant{
				UserID:       userID,
				ModuleID:     m.ID,
				ModuleName:   m.Name,
				CategoryCode: m.CategoryCode,
				CategoryName: m.CategoryName,
				Type:         intent.Type,
				Permissions:  intent.Permissions,
				AssignedBy:   actorID,
				Provisional:  true,
			})
		}
	}
	speculative.Stats = computeStats(speculative.Grants)
	c.replaceView(userID, speculative)

	requested := 0
	accepted := 0
	for _, intent := range intents {
		requested += len(intent.ModuleIDs)
		n, err := c.store.UpsertGrants(ctx, userID, intent.ModuleIDs, intent.Permissions, intent.Type, actorID)
		if err != nil {
			c.replaceView(userID, snapshot)
			if accepted > 0 {
				// Earlier intents already landed remotely; the snapshot no
				// longer matches the store, so reconcile with what stuck.
				c.afterCommitLocked(ctx, e, userID)
			}
			c.record("assign", StateRolledBack)
			return MutationResult{State: StateRolledBack}, fmt.Errorf("upsert grants: %w", err)
		}
		accepted += n
	}

	c.afterCommitLocked(ctx, e, userID)
	c.record("assign", StateCommitted)
	return MutationResult{State: StateCommitted, Assigned: accepted, Failed: requested - accepted}, nil
}

// Revoke removes one grant, optimistically dropping it from the view first.
func (c *Coordinator) Revoke(ctx context.Context, userID, moduleID int64) (MutationResult, error) {
	e := c.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	c.cancelInflight(e)
	snapshot, err := c.snapshotLocked(ctx, userID)
	if err != nil {
		return MutationResult{State: StateRolledBack}, err
	}

	speculative := snapshot.Clone()
	speculative.Grants = removeLocal(speculative.Grants, moduleID)
	speculative.Stats = computeStats(speculative.Grants)
	c.replaceView(userID, speculative)

	if err := c.store.DeleteGrant(ctx, userID, moduleID); err != nil {
		c.replaceView(userID, snapshot)
		c.record("revoke", StateRolledBack)
		return MutationResult{State: StateRolledBack}, err
	}

	c.afterCommitLocked(ctx, e, userID)
	c.record("revoke", StateCommitted)
	return MutationResult{State: StateCommitted, Assigned: 0, Failed: 0}, nil
}

// EditPermissions updates the permission bits of one grant. The set is
// normalized first so the stored record satisfies delete ⇒ write ⇒ read.
func (c *Coordinator) EditPermissions(ctx context.Context, userID, moduleID int64, perms permission.Set) (MutationResult, error) {
	perms = perms.Normalize()

	e := c.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	c.cancelInflight(e)
	snapshot, err := c.snapshotLocked(ctx, userID)
	if err != nil {
		return MutationResult{State: StateRolledBack}, err
	}

	speculative := snapshot.Clone()
	for i := range speculative.Grants {
		if speculative.Grants[i].ModuleID == moduleID {
			speculative.Grants[i].Permissions = perms
			speculative.Grants[i].Provisional = true
		}
	}
	c.replaceView(userID, speculative)

	if err := c.store.UpdateGrantPermissions(ctx, userID, moduleID, perms); err != nil {
		c.replaceView(userID, snapshot)
		c.record("edit_permissions", StateRolledBack)
		return MutationResult{State: StateRolledBack}, err
	}

	c.afterCommitLocked(ctx, e, userID)
	c.record("edit_permissions", StateCommitted)
	return MutationResult{State: StateCommitted}, nil
}

// RefreshUser replaces the user's view with the authoritative store state.
// Invoked by the background worker after commits.
func (c *Coordinator) RefreshUser(ctx context.Context, userID int64) error {
	e := c.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := c.refresh(ctx, userID)
	return err
}

// snapshotLocked returns the current view, loading it first when the user
// has never been read. The snapshot is what rollback restores verbatim.
func (c *Coordinator) snapshotLocked(ctx context.Context, userID int64) (View, error) {
	if v, ok := c.view(userID); ok {
		return v.Clone(), nil
	}
	return c.refresh(ctx, userID)
}

func (c *Coordinator) refresh(ctx context.Context, userID int64) (View, error) {
	started := c.viewVersion(userID)
	grantList, err := c.store.GetUserGrants(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("load grants: %w", err)
	}
	v := View{Grants: grantList, Stats: computeStats(grantList)}
	if !c.installFetched(userID, started, v) {
		// A mutation replaced the view while this read was in flight; its
		// result is newer than what the store returned.
		cur, _ := c.view(userID)
		return cur.Clone(), nil
	}
	return v.Clone(), nil
}

// afterCommitLocked schedules the authoritative refetch that replaces
// speculative records with server-confirmed ones. With a queue configured
// the refetch runs in the worker; otherwise a cancellable goroutine does it.
// Callers hold e.mu.
func (c *Coordinator) afterCommitLocked(ctx context.Context, e *userEntry, userID int64) {
	if c.enqueuer != nil {
		if err := c.enqueuer.EnqueueGrantsRefresh(ctx, userID); err == nil {
			return
		} else if c.logger != nil {
			c.logger.Warn("enqueue grants refresh, falling back to inline",
				slog.Any("error", err), slog.Int64("user", userID))
		}
	}

	refreshCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancelRefresh = cancel
	go func() {
		defer cancel()
		grantList, err := c.store.GetUserGrants(refreshCtx, userID)

		e.mu.Lock()
		defer e.mu.Unlock()
		// Discard the result if a newer mutation cancelled this refetch:
		// its speculative view is fresher than whatever was read.
		if refreshCtx.Err() != nil {
			return
		}
		e.cancelRefresh = nil
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("background grants refresh", slog.Any("error", err), slog.Int64("user", userID))
			}
			return
		}
		c.replaceView(userID, View{Grants: grantList, Stats: computeStats(grantList)})
	}()
}

func (c *Coordinator) record(operation string, state MutationState) {
	if c.metrics != nil {
		c.metrics.MutationOutcome(operation, string(state))
	}
}

func upsertLocal(grantList []permission.Grant, g permission.Grant) []permission.Grant {
	for i := range grantList {
		if grantList[i].ModuleID == g.ModuleID {
			grantList[i] = g
			return grantList
		}
	}
	return append(grantList, g)
}

func removeLocal(grantList []permission.Grant, moduleID int64) []permission.Grant {
	out := grantList[:0]
	for _, g := range grantList {
		if g.ModuleID != moduleID {
			out = append(out, g)
		}
	}
	return out
}
