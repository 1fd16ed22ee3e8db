package notifications

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"firenet/internal/observability"

	"github.com/redis/go-redis/v9"
)

// FeedChannel is the Redis channel every API instance publishes post events to.
const FeedChannel = "feed:events"

// Notifier publishes post events into Redis so that every API instance can
// forward them to its own feed clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends the event to FeedChannel.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if n.rdb == nil {
		return nil
	}
	data, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, FeedChannel, data).Err(); err != nil {
		observability.EventsPublished.WithLabelValues("redis", "error").Inc()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	observability.EventsPublished.WithLabelValues("redis", "ok").Inc()
	return nil
}

// StartFeedSubscriber subscribes to FeedChannel and calls onMessage for each
// payload until ctx is cancelled.
func (n *Notifier) StartFeedSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, FeedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", FeedChannel, err)
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
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in FeedSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
