package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/dispatcher/handlers/system"
	"github.com/dshills/vecstorm/internal/engine/store"
	"github.com/dshills/vecstorm/internal/event"
)

// subscriptionManager manages event bus subscriptions for the application.
type subscriptionManager struct {
	mu            sync.Mutex
	subscriptions []*event.Subscription
	app           *Application
}

// newSubscriptionManager creates a new subscription manager.
func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app}
}

// setupSubscriptions registers all event subscriptions.
func (sm *subscriptionManager) setupSubscriptions() error {
	// Store and command events -> renderer dirty regions and overlay
	if err := sm.app.renderer.Subscribe(sm.app.store.Events(), sm.app.manager.Events()); err != nil {
		return err
	}

	// Command results -> macro vec.result()
	sub, err := sm.app.manager.Events().Subscribe(sm.app.macros.HandleCommandEvent)
	if err != nil {
		return err
	}
	sm.add(sub)

	// Command results -> status line
	sub, err = sm.app.manager.Events().Subscribe(sm.handleCommandEvent, event.WithPriority(event.PriorityLow))
	if err != nil {
		return err
	}
	sm.add(sub)

	// Store changes -> debug log
	sub, err = sm.app.store.Events().Subscribe(sm.handleStoreEvent, event.WithPriority(event.PriorityLow))
	if err != nil {
		return err
	}
	sm.add(sub)
	return nil
}

func (sm *subscriptionManager) add(sub *event.Subscription) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.subscriptions = append(sm.subscriptions, sub)
}

// cancelAll cancels every subscription.
func (sm *subscriptionManager) cancelAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, sub := range sm.subscriptions {
		sub.Cancel()
	}
	sm.subscriptions = nil
}

// handleCommandEvent reports how commands ended on the status line.
func (sm *subscriptionManager) handleCommandEvent(ev event.Event[dispatcher.Event]) {
	p := ev.Payload
	switch p.Kind {
	case dispatcher.CommandFailed:
		sm.app.message = p.Err.Error()
	case dispatcher.CommandEnd:
		sm.app.message = resultMessage(p)
	}
}

func (sm *subscriptionManager) handleStoreEvent(ev event.Event[store.Event]) {
	sm.app.logger.Debug("app: %s %d entities", ev.Payload.Kind, len(ev.Payload.Entities))
}

// resultMessage describes the data a command ended with.
func resultMessage(p dispatcher.Event) string {
	kind, _ := p.Data["event"].(string)
	switch kind {
	case system.EventHelp:
		names, _ := p.Data["commands"].([]string)
		return "Commands: " + strings.Join(names, " ")
	case system.EventIndex:
		return fmt.Sprintf("Index: height %v, %v nodes, %v items", p.Data["height"], p.Data["nodes"], p.Data["items"])
	case system.EventSave:
		return fmt.Sprintf("Saved %v entities as %q", p.Data["count"], p.Data["name"])
	case system.EventOpen:
		return fmt.Sprintf("Opened %q: %v entities", p.Data["name"], p.Data["count"])
	}
	return ""
}
