package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	SubjectOrderCreated       = "orders.created"
	SubjectOrderStatusChanged = "orders.status_changed"
)

// OrderEvent is the JSON body published for every order lifecycle change.
type OrderEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	TableID    string    `json:"tableId"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"totalCents,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, evt OrderEvent) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("tableorder"))
	if err != nil {
		return nil, fmt.Errorf("events: failed to connect to NATS: %w", err)
	}
	log.Info().Str("url", conn.ConnectedUrl()).Msg("events: connected to NATS")
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, evt OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(evt)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("events: failed to publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages before closing the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("events: failed to drain NATS connection: %w", err)
	}
	return nil
}

func Encode(evt OrderEvent) ([]byte, error) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("events: failed to encode order event: %w", err)
	}
	return data, nil
}

// Noop discards events; used when NATS_URL is empty.
type Noop struct{}

func (Noop) Publish(context.Context, string, OrderEvent) error { return nil }

func (Noop) Close() error { return nil }
