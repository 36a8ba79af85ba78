package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Subject returns the NATS subject for an event type.
func Subject(eventType string) string {
	return "tradepost.events." + eventType
}

// NATSPublisher publishes events to NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

// ConnectNATS dials the server at url.
func ConnectNATS(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("tradepost"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(_ context.Context, evt Event) error {
	if p == nil || p.conn == nil {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.conn.Publish(Subject(evt.Type), payload)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
