package company

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// EventType names a company lifecycle event.
type EventType string

// Company lifecycle events.
const (
	EventCreateCompany EventType = "CREATE_COMPANY"
	EventUpdateCompany EventType = "UPDATE_COMPANY"
	EventDeleteCompany EventType = "DELETE_COMPANY"
)

// ErrUnknownEventType is returned when publishing an event with no known type.
var ErrUnknownEventType = errors.New("company: unknown event type")

// Valid reports whether t is one of the lifecycle events.
func (t EventType) Valid() bool {
	switch t {
	case EventCreateCompany, EventUpdateCompany, EventDeleteCompany:
		return true
	}
	return false
}

// Event carries the company affected by a lifecycle change.
type Event struct {
	Type       EventType `json:"type"`
	Company    Company   `json:"company"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, c Company) Event {
	return Event{Type: t, Company: c, OccurredAt: time.Now().UTC()}
}

// EventPublisher publishes company lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Subscriber reacts to published company events.
type Subscriber interface {
	HandleCompanyEvent(ctx context.Context, evt Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, evt Event) error

// HandleCompanyEvent calls f.
func (f SubscriberFunc) HandleCompanyEvent(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

type subscription struct {
	name  string
	types map[EventType]struct{}
	sub   Subscriber
}

func (s subscription) matches(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Dispatcher is an in-process observer list. Subscribers run synchronously in
// registration order; their failures are logged and never reach the publisher.
type Dispatcher struct {
	logger *slog.Logger
	mu     sync.RWMutex
	subs   []subscription
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe registers sub for the given types, or for every type when none are given.
func (d *Dispatcher) Subscribe(name string, sub Subscriber, types ...EventType) {
	s := subscription{name: name, sub: sub}
	if len(types) > 0 {
		s.types = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			s.types[t] = struct{}{}
		}
	}
	d.mu.Lock()
	d.subs = append(d.subs, s)
	d.mu.Unlock()
}

// Publish delivers evt to every matching subscriber.
func (d *Dispatcher) Publish(ctx context.Context, evt Event) error {
	if !evt.Type.Valid() {
		return ErrUnknownEventType
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.RLock()
	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()

	for _, s := range subs {
		if !s.matches(evt.Type) {
			continue
		}
		if err := s.sub.HandleCompanyEvent(ctx, evt); err != nil {
			d.logger.Warn("company event subscriber failed",
				slog.String("subscriber", s.name),
				slog.String("event", string(evt.Type)),
				slog.Int64("company_id", evt.Company.ID),
				slog.Any("error", err))
		}
	}
	return nil
}
