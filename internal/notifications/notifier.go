package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"tradepost/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// PurchaseChannel is the Redis channel carrying events for one purchase.
func PurchaseChannel(purchaseID uint) string {
	return fmt.Sprintf("tradepost:events:%d", purchaseID)
}

// ErrUnavailable is returned by Subscribe when no Redis client is configured.
var ErrUnavailable = errors.New("notifications: redis unavailable")

// Notifier publishes events into Redis pub/sub channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends evt to its purchase channel. A nil client makes this a no-op.
func (n *Notifier) Publish(ctx context.Context, evt Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, PurchaseChannel(evt.PurchaseID), payload).Err()
}

// Subscribe listens on the channel of one purchase until ctx is cancelled
// and calls onEvent for each decoded event. It returns once the
// subscription is confirmed, so events published afterwards are not missed.
func (n *Notifier) Subscribe(ctx context.Context, purchaseID uint, onEvent func(Event)) error {
	if n.rdb == nil {
		return ErrUnavailable
	}
	sub := n.rdb.Subscribe(ctx, PurchaseChannel(purchaseID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					middleware.Logger.Warn("dropping malformed event", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onEvent(evt)
				}()
			}
		}
	}()

	return nil
}
