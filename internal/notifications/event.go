// Package notifications delivers post events to live feed clients and
// external subscribers.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
)

// Post event types.
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventCommentCreated = "comment_created"
)

// Event is the message fanned out after a successful post mutation.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Encode renders the event as JSON.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers an event to one sink.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout publishes every event to each of its publishers and joins the failures.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
