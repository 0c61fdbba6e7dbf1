package event

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Priority determines handler execution order. Lower values run first.
type Priority int

const (
	// PriorityCritical is for core engine handlers that must run first.
	PriorityCritical Priority = 0

	// PriorityHigh is for derived state such as id bookkeeping.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority for observers such as renderers.
	PriorityNormal Priority = 200

	// PriorityLow is for metrics and logging handlers that run last.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means the subscription is temporarily not receiving events.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Once indicates the subscription should auto-cancel after the first event.
	Once bool
}

// DefaultSubscriptionConfig returns a default subscription configuration.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{Priority: PriorityNormal}
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithOnce sets the subscription to auto-cancel after the first event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// Subscription controls delivery to one handler.
type Subscription struct {
	id     string
	config SubscriptionConfig
	state  atomic.Int32
}

func newSubscription(cfg SubscriptionConfig) *Subscription {
	return &Subscription{id: uuid.NewString(), config: cfg}
}

// ID returns the subscription ID.
func (s *Subscription) ID() string { return s.id }

// State returns the current subscription state.
func (s *Subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive returns true if the subscription is active.
func (s *Subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// Pause temporarily stops event delivery.
func (s *Subscription) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

// Resume restarts event delivery.
func (s *Subscription) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

// Cancel permanently cancels the subscription.
func (s *Subscription) Cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}
