package grants

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// viewChangedChannel carries the IDs of users whose persisted grants changed
// outside the local process.
const viewChangedChannel = "grants:view_changed"

// Notifier propagates grant changes across processes over Redis pub/sub. The
// worker publishes after store-side changes; each API process listens and
// reloads the affected view.
type Notifier struct {
	client *redis.Client
	logger *slog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(client *redis.Client, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, logger: logger}
}

// RefreshUser publishes a change notification for the user. The name matches
// the worker-side refresh contract: publishing is how a process without its
// own view cache refreshes everyone else's.
func (n *Notifier) RefreshUser(ctx context.Context, userID int64) error {
	return n.client.Publish(ctx, viewChangedChannel, strconv.FormatInt(userID, 10)).Err()
}

// Listen subscribes to change notifications and reloads the affected user's
// view until the context is cancelled. Intended to run as a goroutine.
func (n *Notifier) Listen(ctx context.Context, coordinator *Coordinator) {
	sub := n.client.Subscribe(ctx, viewChangedChannel)
	defer func() {
		if err := sub.Close(); err != nil && n.logger != nil {
			n.logger.Warn("close grants subscription", slog.Any("error", err))
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil || userID <= 0 {
				continue
			}
			if !coordinator.HasView(userID) {
				continue
			}
			if err := coordinator.RefreshUser(ctx, userID); err != nil && n.logger != nil {
				n.logger.Warn("refresh view from notification", slog.Any("error", err), slog.Int64("user", userID))
			}
		}
	}
}
