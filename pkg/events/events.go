// Package events provides a synchronous publish/subscribe bus for observing
// tooling operations.
//
// Handlers are registered per event name and invoked in order when the
// event is published. Publishing collects one result per handler; a handler
// that fails or panics contributes a nil result and the failure is logged,
// so one broken observer never takes down the publisher.
//
//	bus := events.NewBus(logger)
//	sub := bus.Subscribe("extract", func(e events.Event) (any, error) {
//	    fmt.Println("extracting", e.Args[0])
//	    return nil, nil
//	})
//	bus.Publish("extract", "dist.tar.gz")
//	bus.Unsubscribe("extract", sub)
package events

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	// ErrNoSubscribers is returned when unsubscribing from an event that has
	// no subscriber list.
	ErrNoSubscribers = errors.New("no subscribers for event")

	// ErrUnknownSubscription is returned when the subscription is not
	// registered for the event.
	ErrUnknownSubscription = errors.New("unknown subscription")
)

// Event carries the name and arguments of one published event.
type Event struct {
	Name string
	Args []any
}

// Handler processes one event. The returned value is collected into the
// publisher's result slice.
type Handler func(e Event) (any, error)

// Subscription identifies one registered handler. Function values are not
// comparable in Go, so removal goes through the subscription token instead
// of the handler itself.
type Subscription struct {
	ID    string
	Event string
}

type subscriber struct {
	id      string
	handler Handler
}

// Bus is a synchronous publish/subscribe hub. It is safe for concurrent
// use by multiple goroutines; handlers run on the publishing goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscriber
	logger *log.Logger
}

// NewBus creates an event bus. Handler failures are reported through
// logger; pass nil to discard them.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bus{
		subs:   make(map[string][]subscriber),
		logger: logger,
	}
}

// Subscribe registers a handler for event, after any existing handlers.
func (b *Bus) Subscribe(event string, h Handler) Subscription {
	sub := subscriber{id: uuid.NewString(), handler: h}

	b.mu.Lock()
	b.subs[event] = append(b.subs[event], sub)
	b.mu.Unlock()

	return Subscription{ID: sub.id, Event: event}
}

// SubscribeFront registers a handler for event, before any existing
// handlers.
func (b *Bus) SubscribeFront(event string, h Handler) Subscription {
	sub := subscriber{id: uuid.NewString(), handler: h}

	b.mu.Lock()
	b.subs[event] = slices.Insert(b.subs[event], 0, sub)
	b.mu.Unlock()

	return Subscription{ID: sub.id, Event: event}
}

// Unsubscribe removes a previously registered handler. It returns
// [ErrNoSubscribers] if the event has no subscriber list at all, and
// [ErrUnknownSubscription] if the subscription is not in the list.
func (b *Bus) Unsubscribe(event string, sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subs[event]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSubscribers, event)
	}
	for i, s := range subs {
		if s.id == sub.ID {
			b.subs[event] = slices.Delete(subs, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSubscription, sub.ID)
}

// Publish invokes the handlers registered for event in order, passing args.
// Each handler contributes one entry to the result slice; a failed or
// panicking handler contributes nil. Publishing an event with no handlers
// returns an empty slice.
func (b *Bus) Publish(event string, args ...any) []any {
	b.mu.RLock()
	subs := slices.Clone(b.subs[event])
	b.mu.RUnlock()

	results := make([]any, 0, len(subs))
	for _, sub := range subs {
		results = append(results, b.invoke(sub, Event{Name: event, Args: args}))
	}
	return results
}

// Subscribers returns the subscriptions registered for event, in the order
// their handlers will run. Unknown events yield an empty slice.
func (b *Bus) Subscribers(event string) []Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make([]Subscription, 0, len(b.subs[event]))
	for _, s := range b.subs[event] {
		subs = append(subs, Subscription{ID: s.id, Event: event})
	}
	return subs
}

func (b *Bus) invoke(sub subscriber, e Event) (result any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", e.Name, "panic", r)
			result = nil
		}
	}()

	v, err := sub.handler(e)
	if err != nil {
		b.logger.Error("event handler failed", "event", e.Name, "error", err)
		return nil
	}
	return v
}
