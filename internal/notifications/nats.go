package notifications

import (
	"context"
	"fmt"

	"firenet/internal/observability"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// NatsSubject returns the subject an event type is published on.
func NatsSubject(eventType string) string {
	return "posts." + eventType
}

// NatsPublisher forwards post events to NATS with the trace context in the
// message headers.
type NatsPublisher struct {
	nc *nats.Conn
}

// NewNatsPublisher wraps an established connection. nc may be nil.
func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

func (p *NatsPublisher) Publish(ctx context.Context, ev Event) error {
	if p.nc == nil {
		return nil
	}
	data, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: NatsSubject(ev.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if err := p.nc.PublishMsg(msg); err != nil {
		observability.EventsPublished.WithLabelValues("nats", "error").Inc()
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	observability.EventsPublished.WithLabelValues("nats", "ok").Inc()
	return nil
}
