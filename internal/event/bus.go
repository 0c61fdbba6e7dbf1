package event

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
)

// Handler receives events of one payload type.
type Handler[T any] func(Event[T])

// PanicHandler is told about handler panics. The panic is recovered and
// delivery continues with the next subscriber.
type PanicHandler func(err error, stack []byte)

// BusConfig configures a Bus.
type BusConfig struct {
	// PanicHandler is called with ErrHandlerPanic wrapped around the panic value.
	PanicHandler PanicHandler
}

// BusOption configures a Bus.
type BusOption func(*BusConfig)

// WithPanicHandler sets the callback used for recovered handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *BusConfig) {
		c.PanicHandler = h
	}
}

// Stats counts bus activity.
type Stats struct {
	Published uint64
	Delivered uint64
	Panicked  uint64
}

// Bus delivers events of payload type T synchronously, in priority order,
// on the publisher's goroutine. Publish returns after every subscriber has
// run.
type Bus[T any] struct {
	source string
	config BusConfig

	mu   sync.Mutex
	subs []*entry[T]

	seq       atomic.Uint64
	delivered atomic.Uint64
	panicked  atomic.Uint64
}

type entry[T any] struct {
	sub     *Subscription
	handler Handler[T]
	filter  func(Event[T]) bool
}

// NewBus creates a bus whose events carry source in their metadata.
func NewBus[T any](source string, opts ...BusOption) *Bus[T] {
	b := &Bus[T]{source: source}
	for _, opt := range opts {
		opt(&b.config)
	}
	return b
}

// Subscribe registers h. The returned subscription controls delivery.
func (b *Bus[T]) Subscribe(h Handler[T], opts ...SubscriptionOption) (*Subscription, error) {
	return b.SubscribeFiltered(h, nil, opts...)
}

// SubscribeFiltered registers h for the events accepted by filter.
func (b *Bus[T]) SubscribeFiltered(h Handler[T], filter func(Event[T]) bool, opts ...SubscriptionOption) (*Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	cfg := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sub := newSubscription(cfg)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, &entry[T]{
		sub:     sub,
		handler: h,
		filter:  filter,
	})
	slices.SortStableFunc(b.subs, func(x, y *entry[T]) int {
		return int(x.sub.config.Priority) - int(y.sub.config.Priority)
	})
	return sub, nil
}

// Publish wraps payload in an Event and delivers it.
func (b *Bus[T]) Publish(payload T) Event[T] {
	ev := NewEvent(payload, b.source)
	ev.Metadata.Sequence = b.seq.Add(1)

	b.mu.Lock()
	snapshot := slices.Clone(b.subs)
	b.mu.Unlock()

	for _, e := range snapshot {
		if !e.sub.IsActive() {
			continue
		}
		if e.filter != nil && !e.filter(ev) {
			continue
		}
		if e.sub.config.Once && !e.sub.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled)) {
			continue
		}
		b.deliver(e, ev)
	}
	b.prune()
	return ev
}

func (b *Bus[T]) deliver(e *entry[T], ev Event[T]) {
	defer func() {
		if r := recover(); r != nil {
			b.panicked.Add(1)
			if b.config.PanicHandler != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				b.config.PanicHandler(fmt.Errorf("%w: %v", ErrHandlerPanic, r), buf[:n])
			}
		}
	}()
	e.handler(ev)
	b.delivered.Add(1)
}

// prune drops cancelled subscriptions.
func (b *Bus[T]) prune() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(e *entry[T]) bool {
		return e.sub.State() == SubscriptionStateCancelled
	})
}

// Len returns the number of live subscriptions.
func (b *Bus[T]) Len() int {
	b.prune()
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Stats returns delivery counters.
func (b *Bus[T]) Stats() Stats {
	return Stats{
		Published: b.seq.Load(),
		Delivered: b.delivered.Load(),
		Panicked:  b.panicked.Load(),
	}
}
