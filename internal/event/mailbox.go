package event

import "sync"

// Latest is a single-slot mailbox. Put overwrites any value that has not
// been taken yet, so a slow consumer only ever sees the newest value.
// It is safe for concurrent use.
type Latest[T any] struct {
	mu      sync.Mutex
	value   T
	full    bool
	ready   chan struct{}
	dropped uint64
}

// NewLatest creates an empty mailbox.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ready: make(chan struct{}, 1)}
}

// Put stores v, replacing any pending value.
func (l *Latest[T]) Put(v T) {
	l.mu.Lock()
	if l.full {
		l.dropped++
	}
	l.value = v
	l.full = true
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// Take removes and returns the pending value, if any.
func (l *Latest[T]) Take() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.value, l.full
	var zero T
	l.value = zero
	l.full = false
	return v, ok
}

// Ready is signalled after Put. A receive does not guarantee a value is
// still pending; call Take.
func (l *Latest[T]) Ready() <-chan struct{} {
	return l.ready
}

// Dropped returns how many values were overwritten before being taken.
func (l *Latest[T]) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
