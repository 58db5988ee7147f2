// Package bus implements the synchronous, depth-first publish/subscribe
// message bus agents and components use to talk to each other within a
// single tick. There is no parallelism in the simulation core, so the
// bus carries no mutex: Publish runs subscriber callbacks inline, on the
// publisher's own goroutine, and a callback that itself publishes
// recurses straight back into Publish.
package bus

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/internal/logging"
	"github.com/leixiaohui-1974/CHS-SDK/internal/observability"
)

// Topic names a channel on the bus, e.g. "gate.opening" or "reservoir.level".
type Topic string

// Handler receives a published Message. A Handler must not block.
type Handler func(msg *Message)

// Handle identifies one subscription, returned by Subscribe and required
// by Unsubscribe.
type Handle struct {
	id    uuid.UUID
	topic Topic
}

// DefaultMaxCascadeDepth is the default ceiling on synchronous publish
// recursion before Publish reports CascadeDepthExceeded.
const DefaultMaxCascadeDepth = 64

type subscription struct {
	id      uuid.UUID
	handler Handler
}

// MessageBus is a synchronous, single-threaded publish/subscribe router.
// The zero value is not usable; construct with New.
type MessageBus struct {
	// MaxCascadeDepth bounds how many nested Publish calls (a handler
	// that publishes, whose subscriber publishes, ...) are allowed before
	// Publish returns a CascadeDepthExceeded fault. Zero means use
	// DefaultMaxCascadeDepth.
	MaxCascadeDepth int

	Logger   logging.Logger
	Metrics  *observability.HarnessCollector
	Recorder diag.Recorder

	subscribers map[Topic][]subscription
	depth       int
	tick        int
	cascadeErr  *diag.Fault
}

// New constructs an empty MessageBus.
func New() *MessageBus {
	return &MessageBus{
		MaxCascadeDepth: DefaultMaxCascadeDepth,
		Logger:          logging.Noop(),
		Recorder:        diag.NoopRecorder{},
		subscribers:     make(map[Topic][]subscription),
	}
}

// SetTick records the current simulation tick so published messages and
// faults are annotated with it.
func (b *MessageBus) SetTick(tick int) {
	b.tick = tick
}

// Subscribe registers handler on topic and returns a Handle for later
// Unsubscribe. Subscribing the same (topic, handler) pair twice is a
// no-op: the existing Handle is returned. Handler identity is compared
// via its function pointer, which reliably matches the same bound
// method or package-level function handed in twice, but will not
// deduplicate two independently allocated closures with identical
// bodies.
func (b *MessageBus) Subscribe(topic Topic, handler Handler) Handle {
	if b.subscribers == nil {
		b.subscribers = make(map[Topic][]subscription)
	}
	ptr := reflect.ValueOf(handler).Pointer()
	for _, sub := range b.subscribers[topic] {
		if reflect.ValueOf(sub.handler).Pointer() == ptr {
			return Handle{id: sub.id, topic: topic}
		}
	}
	sub := subscription{id: uuid.New(), handler: handler}
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	return Handle{id: sub.id, topic: topic}
}

// Unsubscribe removes the subscription identified by h. It is a no-op if
// the handle is unknown or was already removed.
func (b *MessageBus) Unsubscribe(h Handle) {
	subs := b.subscribers[h.topic]
	for i, sub := range subs {
		if sub.id == h.id {
			b.subscribers[h.topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers msg to every handler currently subscribed to topic.
// Subscribers are snapshotted before delivery begins, so a handler that
// subscribes or unsubscribes during Publish never affects the current
// delivery round. A handler that panics is recovered and recorded as a
// HandlerFault; delivery continues with the remaining subscribers.
//
// Publish tracks cascade depth: a handler that itself calls Publish
// recurses into this method. If the nesting exceeds MaxCascadeDepth,
// Publish returns a CascadeDepthExceeded fault without invoking any more
// handlers: every enclosing Publish of the same cascade stops delivering
// and returns that fault too, including the outermost call, even when an
// intermediate handler ignores the error.
func (b *MessageBus) Publish(topic Topic, msg *Message) error {
	max := b.MaxCascadeDepth
	if max <= 0 {
		max = DefaultMaxCascadeDepth
	}
	if b.depth >= max {
		fault := diag.New(diag.CascadeDepthExceeded,
			fmt.Sprintf("publish cascade exceeded max depth %d", max)).
			WithTick(b.tick).WithTopic(string(topic))
		if b.cascadeErr == nil {
			b.cascadeErr = fault
		}
		return fault
	}

	msg.Topic = string(topic)
	msg.Tick = b.tick

	b.depth++
	if b.Metrics != nil {
		b.Metrics.SetCascadeDepth(b.depth)
	}
	defer func() { b.depth-- }()

	subs := append([]subscription(nil), b.subscribers[topic]...)
	for _, sub := range subs {
		if b.cascadeErr != nil {
			break
		}
		b.dispatch(topic, sub, msg)
	}
	if b.cascadeErr != nil {
		fault := b.cascadeErr
		if b.depth == 1 {
			b.cascadeErr = nil
		}
		return fault
	}
	return nil
}

func (b *MessageBus) dispatch(topic Topic, sub subscription, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			fault := diag.New(diag.HandlerFault, fmt.Sprintf("subscriber panicked: %v", r)).
				WithTick(b.tick).WithTopic(string(topic))
			b.Recorder.Record(fault)
			if b.Metrics != nil {
				b.Metrics.IncHandlerFaults()
			}
			if b.Logger != nil {
				b.Logger.Warn(context.Background(), "bus handler fault",
					logging.String("topic", string(topic)),
					logging.String("error", fault.Error()))
			}
		}
	}()
	sub.handler(msg)
}
