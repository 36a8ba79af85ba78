// Package notifications publishes marketplace events to subscribers.
package notifications

import (
	"context"
	"log/slog"
	"time"

	"tradepost/internal/middleware"
	"tradepost/internal/observability"

	"github.com/google/uuid"
)

// Event types emitted by the purchase workflow.
const (
	EventPurchaseStarted   = "purchase.started"
	EventMessageCreated    = "message.created"
	EventPurchaseCompleted = "purchase.completed"
)

// Event is the payload delivered to subscribers.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	PurchaseID uint      `json:"purchase_id"`
	ItemID     uint      `json:"item_id"`
	ActorID    uint      `json:"actor_id"`
	MessageID  uint      `json:"message_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType string, purchaseID, itemID, actorID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		PurchaseID: purchaseID,
		ItemID:     itemID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Subscriber delivers the events of one purchase until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, purchaseID uint, onEvent func(Event)) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Dispatch publishes evt and logs failures instead of returning them; the
// request that produced the event has already committed.
func Dispatch(ctx context.Context, pub Publisher, evt Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		observability.MarketplaceEvents.WithLabelValues(evt.Type, "error").Inc()
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("event_type", evt.Type),
			slog.Uint64("purchase_id", uint64(evt.PurchaseID)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.MarketplaceEvents.WithLabelValues(evt.Type, "published").Inc()
}
