package watch

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	dom "github.com/Shuvo-2525/duedateuk/internal/domain"
)

const channelPrefix = "companies:changed:"

// Snapshot is one full view of a user's company list. Err is set when the
// backing query failed; the stream stays open so a later change can recover.
type Snapshot struct {
	Companies []dom.Company
	Err       error
}

// Lister produces the current company list for a user.
type Lister interface {
	List(ctx context.Context, userID int64) ([]dom.Company, error)
}

// Notifier publishes change events consumed by Hub watchers.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier returns a new Notifier.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// CompaniesChanged signals that the user's company set changed.
func (n *Notifier) CompaniesChanged(ctx context.Context, userID int64) {
	_ = n.rdb.Publish(ctx, channelKey(userID), "1").Err()
}

// Hub turns Redis change events into per-user snapshot streams.
type Hub struct {
	rdb    *redis.Client
	lister Lister
}

// NewHub returns a new Hub.
func NewHub(rdb *redis.Client, lister Lister) *Hub {
	return &Hub{rdb: rdb, lister: lister}
}

// Watch streams the user's company list: one snapshot immediately, then a
// fresh one after every change event. Every snapshot is the full list, so
// cancelling and re-watching can never duplicate records. The channel is
// closed when ctx is cancelled; cancelling is the only way to unsubscribe.
func (h *Hub) Watch(ctx context.Context, userID int64) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	sub := h.rdb.Subscribe(ctx, channelKey(userID))

	go func() {
		defer close(out)
		defer func() {
			_ = sub.Close()
		}()

		send := func() bool {
			list, err := h.lister.List(ctx, userID)
			select {
			case out <- Snapshot{Companies: list, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}
		events := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				if !send() {
					return
				}
			}
		}
	}()

	return out
}

func channelKey(userID int64) string {
	return channelPrefix + strconv.FormatInt(userID, 10)
}
